package model

import "time"

// Selection is a class placed in a student's cart, waiting for payment.
type Selection struct {
	ID              string    `json:"_id"`
	ClassID         string    `json:"classId"`
	ClassName       string    `json:"className"`
	ClassImage      string    `json:"classImage,omitempty"`
	InstructorName  string    `json:"instructorName,omitempty"`
	InstructorEmail string    `json:"instructorEmail,omitempty"`
	Price           float64   `json:"price"`
	Email           string    `json:"email"`
	CreatedAt       time.Time `json:"createdAt"`
}
