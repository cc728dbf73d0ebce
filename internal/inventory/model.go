package inventory

import "time"

// Part is a stocked spare part. Orders reference parts by ID and snapshot the price.
type Part struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Brand       string    `json:"brand" bson:"brand"`
	ModelNumber string    `json:"modelNumber" bson:"modelNumber"`
	Quantity    int       `json:"quantity" bson:"quantity"`
	Price       float64   `json:"price" bson:"price"`
	Color       string    `json:"color,omitempty" bson:"color,omitempty"`
	Dimensions  string    `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// PartInput carries the writable fields of a Part. Nil fields are left unchanged on update.
type PartInput struct {
	Name        *string
	Brand       *string
	ModelNumber *string
	Quantity    *int
	Price       *float64
	Color       *string
	Dimensions  *string
	ImageURL    *string
}
