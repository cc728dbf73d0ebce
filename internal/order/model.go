package order

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s belongs to the closed status enumeration. Any valid status may follow any other.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCreditCard     PaymentMethod = "credit_card"
	MethodDebitCard      PaymentMethod = "debit_card"
	MethodPayPal         PaymentMethod = "paypal"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodCashOnDelivery:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"

	// PaymentAwaiting is reported, never stored, for orders without payment details.
	PaymentAwaiting PaymentStatus = "awaiting_payment"
)

type CustomerInfo struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
}

type Item struct {
	PartID   string  `json:"partId" bson:"partId"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Price    float64 `json:"price" bson:"price"`
}

type PaymentDetails struct {
	Method        PaymentMethod `json:"method" bson:"method"`
	TransactionID string        `json:"transactionId" bson:"transactionId"`
	Status        PaymentStatus `json:"status" bson:"status"`
	Timestamp     time.Time     `json:"timestamp" bson:"timestamp"`
}

type Order struct {
	ID             string          `json:"id" bson:"_id"`
	UserID         string          `json:"userId,omitempty" bson:"userId,omitempty"`
	CustomerInfo   CustomerInfo    `json:"customerInfo" bson:"customerInfo"`
	Items          []Item          `json:"items" bson:"items"`
	TotalAmount    float64         `json:"totalAmount" bson:"totalAmount"`
	Status         Status          `json:"status" bson:"status"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty" bson:"paymentDetails,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
}

// PaymentState is the derived payment status of o.
func (o *Order) PaymentState() PaymentStatus {
	if o.PaymentDetails == nil || o.PaymentDetails.Status == "" {
		return PaymentAwaiting
	}
	return o.PaymentDetails.Status
}

// CreateOrderInput is the caller-supplied part of a new order. Nil pointers mean the field was absent.
type CreateOrderInput struct {
	UserID       string
	CustomerInfo *CustomerInfo
	Items        []ItemInput
	TotalAmount  *float64
}

// ItemInput omits Price to take the part's current price.
type ItemInput struct {
	PartID   string
	Quantity int
	Price    *float64
}

// UpdateOrderInput replaces the customer snapshot. Status changes go through UpdateOrderStatus.
// A non-empty RequesterID limits the update to orders placed by that user.
type UpdateOrderInput struct {
	CustomerInfo *CustomerInfo
	RequesterID  string
}

// ListScope restricts listings to one user's orders when UserID is set.
type ListScope struct {
	UserID string
}
