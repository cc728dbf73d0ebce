package appointment

import "time"

// DateLayout is the wire and storage format of Appointment.Date.
const DateLayout = "2006-01-02"

// TimeSlots is the fixed set of bookable slots, in display order.
var TimeSlots = []string{"09:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}

func validSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"userId,omitempty" bson:"userId,omitempty"`
	CustomerName string    `json:"customerName" bson:"customerName"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone" bson:"phone"`
	VehicleMake  string    `json:"vehicleMake" bson:"vehicleMake"`
	VehicleModel string    `json:"vehicleModel" bson:"vehicleModel"`
	VehicleYear  int       `json:"vehicleYear,omitempty" bson:"vehicleYear,omitempty"`
	LicensePlate string    `json:"licensePlate,omitempty" bson:"licensePlate,omitempty"`
	Services     []string  `json:"services" bson:"services"`
	Date         string    `json:"date" bson:"date"`
	TimeSlot     string    `json:"timeSlot" bson:"timeSlot"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty"`
	Approved     bool      `json:"approved" bson:"approved"`
	Deleted      bool      `json:"deleted" bson:"deleted"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// BookingInput carries the writable fields of an Appointment. On update, nil fields are left unchanged.
type BookingInput struct {
	UserID       string
	CustomerName *string
	Email        *string
	Phone        *string
	VehicleMake  *string
	VehicleModel *string
	VehicleYear  *int
	LicensePlate *string
	Services     []string
	Date         *string
	TimeSlot     *string
	Notes        *string
}

type ListFilter struct {
	IncludeDeleted bool
	Date           string
}
