package model

import "time"

type ClassStatus string

const (
	ClassStatusPending  ClassStatus = "pending"
	ClassStatusApproved ClassStatus = "approved"
	ClassStatusDenied   ClassStatus = "denied"
)

type Class struct {
	ID              string      `json:"_id"`
	ClassName       string      `json:"className"`
	ClassImage      string      `json:"classImage,omitempty"`
	InstructorName  string      `json:"instructorName,omitempty"`
	InstructorEmail string      `json:"instructorEmail"`
	AvailableSeats  int         `json:"availableSeats"`
	Price           float64     `json:"price"`
	Status          ClassStatus `json:"status"`
	Enrolled        int         `json:"enrolled"`
	CreatedAt       time.Time   `json:"createdAt"`
}
