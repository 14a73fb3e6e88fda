package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/fee"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/money"
	"github.com/stemsi/feedesk-backend/internal/repository"
)

// ReceiptConfig tunes receipt numbering.
type ReceiptConfig struct {
	Prefix          string
	MaxRetries      int
	AvailableMonths int
}

// IssueReceiptInput is what a clerk submits to charge a student for a month.
// Only subject codes are trusted; names and fees come from the catalog.
type IssueReceiptInput struct {
	StudentID     string
	MonthYear     string
	SubjectCodes  []string
	ExpectedTotal *money.Money
}

// ReceiptService issues and reads fee receipts.
type ReceiptService struct {
	students StudentStore
	subjects SubjectStore
	records  FeeRecordStore
	cfg      ReceiptConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(students StudentStore, subjects SubjectStore, records FeeRecordStore, cfg ReceiptConfig, log zerolog.Logger) *ReceiptService {
	if cfg.Prefix == "" {
		cfg.Prefix = "REC"
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &ReceiptService{
		students: students,
		subjects: subjects,
		records:  records,
		cfg:      cfg,
		log:      log.With().Str("component", "receipt_service").Logger(),
		now:      time.Now,
	}
}

// IssueReceipt validates the selection against the catalog, recomputes the
// total and persists the receipt under a fresh receipt number.
// Nothing is written unless every check passes.
func (s *ReceiptService) IssueReceipt(ctx context.Context, in IssueReceiptInput) (*model.FeeRecord, error) {
	studentID := strings.TrimSpace(in.StudentID)
	if studentID == "" {
		return nil, invalid("studentId", "student is required")
	}
	// An unknown student is reported before any other problem with the request.
	student, err := s.students.GetBySID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
		}
		s.log.Error().Err(err).Str("student_id", studentID).Msg("student lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	monthYear := strings.TrimSpace(in.MonthYear)
	if monthYear == "" {
		return nil, invalid("monthYear", "month is required")
	}
	if _, err := model.ParseMonthYear(monthYear); err != nil {
		return nil, invalid("monthYear", err.Error())
	}

	codes := dedupeCodes(in.SubjectCodes)
	if len(codes) == 0 {
		return nil, invalid("subjects", "select at least one subject")
	}

	items, err := s.resolveSubjects(ctx, codes)
	if err != nil {
		return nil, err
	}

	total := fee.ComputeTotal(items)
	if in.ExpectedTotal != nil && !in.ExpectedTotal.Equal(total) {
		return nil, fmt.Errorf("%w: expected %s, computed %s", ErrTotalMismatch, in.ExpectedTotal, total)
	}

	rec := &model.FeeRecord{
		StudentID:   student.SID,
		StudentName: student.StudentName,
		MonthYear:   monthYear,
		TotalAmount: total,
		Items:       items,
	}
	if err := s.persist(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("receipt_number", rec.ReceiptNumber).
		Str("student_id", rec.StudentID).
		Str("month_year", rec.MonthYear).
		Str("total", rec.TotalAmount.String()).
		Msg("receipt issued")
	return rec, nil
}

// resolveSubjects snapshots the catalog entries in the order they were selected.
func (s *ReceiptService) resolveSubjects(ctx context.Context, codes []string) ([]model.SelectedSubject, error) {
	found, err := s.subjects.GetByCodes(ctx, codes)
	if err != nil {
		s.log.Error().Err(err).Strs("codes", codes).Msg("subject lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	byCode := make(map[string]model.Subject, len(found))
	for _, sub := range found {
		byCode[sub.SubjectCode] = sub
	}

	items := make([]model.SelectedSubject, 0, len(codes))
	for _, code := range codes {
		sub, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, code)
		}
		items = append(items, model.SelectedSubject{
			SubjectCode: sub.SubjectCode,
			SubjectName: sub.SubjectName,
			Fee:         sub.Fee,
		})
	}
	return items, nil
}

// persist inserts rec, retrying when the receipt number is already taken.
func (s *ReceiptService) persist(ctx context.Context, rec *model.FeeRecord) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		rec.IssuedAt = s.now().UTC()
		err := s.records.Insert(ctx, rec, s.cfg.Prefix)
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, repository.ErrDuplicateKey) {
			break
		}
		s.log.Warn().Int("attempt", attempt).Msg("receipt number collision, retrying")
	}

	s.log.Error().Err(lastErr).Str("student_id", rec.StudentID).Msg("failed to persist receipt")
	return fmt.Errorf("%w: %v", ErrPersistence, lastErr)
}

// GetReceipt loads one issued receipt.
func (s *ReceiptService) GetReceipt(ctx context.Context, number string) (*model.FeeRecord, error) {
	rec, err := s.records.FindByReceiptNumber(ctx, strings.TrimSpace(number))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReceiptNotFound
	}
	return rec, err
}

// ListReceipts returns receipts newest first.
func (s *ReceiptService) ListReceipts(ctx context.Context, f model.FeeRecordFilter) ([]model.FeeRecord, error) {
	f.StudentID = strings.TrimSpace(f.StudentID)
	f.MonthYear = strings.TrimSpace(f.MonthYear)
	records, err := s.records.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.FeeRecord{}
	}
	return records, nil
}

// Preview totals a client-side selection without touching storage.
func (s *ReceiptService) Preview(raw []model.SelectedSubjectInput) (money.Money, error) {
	return fee.Preview(raw)
}

// AvailableMonths lists the billing months a clerk may pick from.
func (s *ReceiptService) AvailableMonths() []string {
	return model.RecentMonths(s.now(), s.cfg.AvailableMonths)
}

func dedupeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
