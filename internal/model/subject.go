package model

import (
	"time"

	"github.com/stemsi/feedesk-backend/internal/money"
)

// Subject is a billable course with its current monthly fee.
type Subject struct {
	SubjectCode string      `json:"subjectCode"`
	SubjectName string      `json:"subjectName"`
	Fee         money.Money `json:"fee"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CreateSubjectRequest is the payload for adding a subject to the catalog.
// SubjectFee is kept as raw text so a malformed value is reported as
// INVALID_FEE_FORMAT instead of a generic binding error.
type CreateSubjectRequest struct {
	SubjectCode string   `json:"subjectCode" binding:"required,min=1,max=20"`
	SubjectName string   `json:"subjectName" binding:"required,min=1,max=100"`
	SubjectFee  RawMoney `json:"subjectFee" binding:"required"`
}

// UpdateSubjectFeeRequest is the payload for changing a subject's fee.
type UpdateSubjectFeeRequest struct {
	Fee RawMoney `json:"fee" binding:"required"`
}
