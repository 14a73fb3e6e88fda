// Package memrepo holds in-memory stores with the same contract as the
// PostgreSQL repositories. Tests use them in place of a database.
package memrepo

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/money"
	"github.com/stemsi/feedesk-backend/internal/repository"
)

// Students is an in-memory roster.
type Students struct {
	mu    sync.Mutex
	rows  map[string]model.Student
	Lists int
}

func NewStudents(students ...model.Student) *Students {
	f := &Students{rows: map[string]model.Student{}}
	for _, s := range students {
		f.rows[s.SID] = s
	}
	return f
}

func (f *Students) GetBySID(_ context.Context, sid string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[sid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *Students) List(_ context.Context) ([]model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lists++
	out := make([]model.Student, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (f *Students) Create(_ context.Context, s *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[s.SID]; ok {
		return repository.ErrDuplicateKey
	}
	f.rows[s.SID] = *s
	return nil
}

func (f *Students) Delete(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[sid]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, sid)
	return nil
}

// Subjects is an in-memory fee catalog.
type Subjects struct {
	mu   sync.Mutex
	rows map[string]model.Subject
}

func NewSubjects(subjects ...model.Subject) *Subjects {
	f := &Subjects{rows: map[string]model.Subject{}}
	for _, s := range subjects {
		f.rows[s.SubjectCode] = s
	}
	return f
}

func (f *Subjects) Create(_ context.Context, s *model.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[s.SubjectCode]; ok {
		return repository.ErrDuplicateKey
	}
	f.rows[s.SubjectCode] = *s
	return nil
}

func (f *Subjects) GetByCode(_ context.Context, code string) (*model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *Subjects) GetByCodes(_ context.Context, codes []string) ([]model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Subject
	for _, c := range codes {
		if s, ok := f.rows[c]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Subjects) GetAll(_ context.Context) ([]model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Subject, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}

func (f *Subjects) UpdateFee(_ context.Context, code string, fee money.Money) (*model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Fee = fee
	f.rows[code] = s
	return &s, nil
}

func (f *Subjects) Delete(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[code]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, code)
	return nil
}

// Records numbers receipts per month like the receipt_sequences table.
// FailNext errors are returned, in order, before any insert succeeds.
type Records struct {
	mu       sync.Mutex
	seq      map[string]int64
	Rows     []model.FeeRecord
	FailNext []error
	Inserts  int
}

func NewRecords() *Records {
	return &Records{seq: map[string]int64{}}
}

func (f *Records) Insert(_ context.Context, rec *model.FeeRecord, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inserts++
	if len(f.FailNext) > 0 {
		err := f.FailNext[0]
		f.FailNext = f.FailNext[1:]
		return err
	}
	period := rec.IssuedAt.Format("200601")
	next := f.seq[period] + 1
	number := repository.ReceiptNumber(prefix, rec.IssuedAt, next)
	for _, r := range f.Rows {
		if r.ReceiptNumber == number {
			// Same recovery as the SQL store: skip past the highest number in use.
			f.seq[period] = f.highest(prefix, rec.IssuedAt)
			return repository.ErrDuplicateKey
		}
	}
	f.seq[period] = next
	rec.ReceiptNumber = number

	stored := *rec
	stored.Items = append([]model.SelectedSubject(nil), rec.Items...)
	f.Rows = append(f.Rows, stored)
	return nil
}

// SetSequence overwrites the counter for a YYYYMM period.
func (f *Records) SetSequence(period string, last int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq[period] = last
}

// highest returns the largest numeric suffix issued under prefix for the month.
func (f *Records) highest(prefix string, issuedAt time.Time) int64 {
	stem := prefix + "-" + issuedAt.Format("200601") + "-"
	var max int64
	for _, r := range f.Rows {
		if !strings.HasPrefix(r.ReceiptNumber, stem) {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimPrefix(r.ReceiptNumber, stem), 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

func (f *Records) FindByReceiptNumber(_ context.Context, number string) (*model.FeeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Rows {
		if r.ReceiptNumber == number {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *Records) List(_ context.Context, filter model.FeeRecordFilter) ([]model.FeeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FeeRecord
	for i := len(f.Rows) - 1; i >= 0; i-- {
		r := f.Rows[i]
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.MonthYear != "" && r.MonthYear != filter.MonthYear {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
