package model

import (
	"time"

	"github.com/stemsi/feedesk-backend/internal/money"
)

// SelectedSubject is a snapshot of a subject's fee at the moment it was put on
// a receipt. Later fee edits or deletions never reach it.
type SelectedSubject struct {
	SubjectCode string      `json:"subjectCode"`
	SubjectName string      `json:"subjectName"`
	Fee         money.Money `json:"fee"`
}

// SelectedSubjectInput is a selection line as submitted by a client.
// Name and fee are only used for previews; issuance re-reads the catalog.
type SelectedSubjectInput struct {
	SubjectCode string   `json:"subjectCode" binding:"required"`
	SubjectName string   `json:"subjectName"`
	Fee         RawMoney `json:"fee"`
}

// FeeRecord is an issued receipt.
type FeeRecord struct {
	ReceiptNumber string            `json:"receiptNumber"`
	StudentID     string            `json:"studentId"`
	StudentName   string            `json:"studentName"`
	MonthYear     string            `json:"monthYear"`
	TotalAmount   money.Money       `json:"totalAmount"`
	Items         []SelectedSubject `json:"items"`
	IssuedAt      time.Time         `json:"issuedAt"`
}

// FeeRecordFilter narrows receipt listings and exports. Empty fields match all.
type FeeRecordFilter struct {
	StudentID string
	MonthYear string
}

// IssueFeeRecordRequest is the payload for POST /fee-records.
// Subjects may be given as objects or as a flat list of codes. TotalAmount is
// optional; when present it must agree with the server-side total.
type IssueFeeRecordRequest struct {
	StudentID    string                 `json:"studentId" binding:"required"`
	MonthYear    string                 `json:"monthYear" binding:"required,monthyear"`
	Subjects     []SelectedSubjectInput `json:"subjects" binding:"omitempty,dive"`
	SubjectCodes []string               `json:"subjectCodes"`
	TotalAmount  *RawMoney              `json:"totalAmount"`
}

// PreviewFeeRequest is the payload for POST /fee-records/preview.
type PreviewFeeRequest struct {
	Subjects []SelectedSubjectInput `json:"subjects" binding:"omitempty,dive"`
}
