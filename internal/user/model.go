package user

import "time"

// User is a registered customer or administrator. PasswordHash is persisted with the document and never
// leaves the service boundary; handlers respond with their own DTO.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash string    `json:"passwordHash" bson:"passwordHash"`
	Role         string    `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Token string
	User  *User
}
