package servicepackage

import "time"

// Package is a priced bundle of garage services shown in the booking catalogue.
type Package struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Description     string    `json:"description,omitempty" bson:"description,omitempty"`
	Price           float64   `json:"price" bson:"price"`
	Services        []string  `json:"services" bson:"services"`
	DurationMinutes int       `json:"durationMinutes,omitempty" bson:"durationMinutes,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
}

type PackageInput struct {
	Name            *string
	Description     *string
	Price           *float64
	Services        []string
	DurationMinutes *int
	ImageURL        *string
}
