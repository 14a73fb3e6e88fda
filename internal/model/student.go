package model

import "time"

// Student is a roster entry. SID is the 4-digit identifier printed on receipts
// and never changes once issued.
type Student struct {
	SID          string    `json:"sid"`
	StudentName  string    `json:"studentName"`
	StudentGrade string    `json:"studentGrade"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateStudentRequest is the payload for adding a student to the roster.
type CreateStudentRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	SID   string `json:"sid" binding:"required,sid"`
	Grade string `json:"grade" binding:"required,min=1,max=20"`
}
