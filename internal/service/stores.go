package service

import (
	"context"

	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/money"
)

// StudentStore is the roster half of the catalog store.
type StudentStore interface {
	GetBySID(ctx context.Context, sid string) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, sid string) error
}

// SubjectStore is the fee catalog half of the catalog store.
type SubjectStore interface {
	Create(ctx context.Context, s *model.Subject) error
	GetByCode(ctx context.Context, code string) (*model.Subject, error)
	GetByCodes(ctx context.Context, codes []string) ([]model.Subject, error)
	GetAll(ctx context.Context) ([]model.Subject, error)
	UpdateFee(ctx context.Context, code string, fee money.Money) (*model.Subject, error)
	Delete(ctx context.Context, code string) error
}

// FeeRecordStore persists issued receipts.
type FeeRecordStore interface {
	Insert(ctx context.Context, rec *model.FeeRecord, prefix string) error
	FindByReceiptNumber(ctx context.Context, number string) (*model.FeeRecord, error)
	List(ctx context.Context, f model.FeeRecordFilter) ([]model.FeeRecord, error)
}
