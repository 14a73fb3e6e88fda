package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feedesk-backend/internal/model"
)

// FeeRecordRepository persists issued receipts and their line items.
type FeeRecordRepository struct {
	pool *pgxpool.Pool
}

// NewFeeRecordRepository creates a new FeeRecordRepository.
func NewFeeRecordRepository(pool *pgxpool.Pool) *FeeRecordRepository {
	return &FeeRecordRepository{pool: pool}
}

// ReceiptNumber formats the canonical receipt identifier, e.g. REC-202503-000042.
func ReceiptNumber(prefix string, issuedAt time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, issuedAt.Format("200601"), seq)
}

// Insert assigns the next receipt number for the issuance month and writes the
// record with its items in one transaction. rec.IssuedAt must be set.
// A clash on receipt_number returns ErrDuplicateKey with nothing written; the
// month's counter is first moved past the highest number already issued so
// the next attempt gets a free one.
func (r *FeeRecordRepository) Insert(ctx context.Context, rec *model.FeeRecord, prefix string) error {
	err := r.insert(ctx, rec, prefix)
	if errors.Is(err, ErrDuplicateKey) {
		if syncErr := r.resyncSequence(ctx, prefix, rec.IssuedAt); syncErr != nil {
			return fmt.Errorf("resync receipt sequence: %w", syncErr)
		}
	}
	return err
}

// resyncSequence raises the counter for the month to the largest suffix in use
// under prefix. It runs outside the failed transaction so the change sticks.
func (r *FeeRecordRepository) resyncSequence(ctx context.Context, prefix string, issuedAt time.Time) error {
	period := issuedAt.Format("200601")
	stem := prefix + "-" + period + "-"
	_, err := r.pool.Exec(ctx,
		`INSERT INTO receipt_sequences (period, last_value)
		 SELECT $1::text, COALESCE(MAX(substr(receipt_number, length($2::text) + 1)::bigint), 0)
		 FROM fee_records
		 WHERE left(receipt_number, length($2::text)) = $2::text
		   AND substr(receipt_number, length($2::text) + 1) ~ '^[0-9]{1,18}$'
		 ON CONFLICT (period) DO UPDATE
		 SET last_value = GREATEST(receipt_sequences.last_value, EXCLUDED.last_value)`,
		period, stem,
	)
	return err
}

func (r *FeeRecordRepository) insert(ctx context.Context, rec *model.FeeRecord, prefix string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// The sequence row stays locked until commit, serializing issuers per month.
	var seq int64
	err = tx.QueryRow(ctx,
		`INSERT INTO receipt_sequences (period, last_value) VALUES ($1, 1)
		 ON CONFLICT (period) DO UPDATE SET last_value = receipt_sequences.last_value + 1
		 RETURNING last_value`,
		rec.IssuedAt.Format("200601"),
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("next receipt sequence: %w", err)
	}
	number := ReceiptNumber(prefix, rec.IssuedAt, seq)

	_, err = tx.Exec(ctx,
		`INSERT INTO fee_records (receipt_number, student_id, student_name, month_year, total_amount, issued_at)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6)`,
		number, rec.StudentID, rec.StudentName, rec.MonthYear, rec.TotalAmount.String(), rec.IssuedAt,
	)
	if err != nil {
		return translate(err)
	}

	batch := &pgx.Batch{}
	for i, item := range rec.Items {
		batch.Queue(
			`INSERT INTO fee_record_items (receipt_number, line_no, subject_code, subject_name, fee)
			 VALUES ($1, $2, $3, $4, $5::numeric)`,
			number, i+1, item.SubjectCode, item.SubjectName, item.Fee.String(),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return translate(err)
	}
	rec.ReceiptNumber = number
	return nil
}

// FindByReceiptNumber loads one receipt with its items.
func (r *FeeRecordRepository) FindByReceiptNumber(ctx context.Context, number string) (*model.FeeRecord, error) {
	records, err := r.list(ctx, `WHERE receipt_number = $1`, number)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return &records[0], nil
}

// List returns receipts matching the filter, newest first.
func (r *FeeRecordRepository) List(ctx context.Context, f model.FeeRecordFilter) ([]model.FeeRecord, error) {
	where := ""
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		if where == "" {
			where = "WHERE "
		} else {
			where += " AND "
		}
		where += cond + " = $" + strconv.Itoa(len(args))
	}
	if f.StudentID != "" {
		add("student_id", f.StudentID)
	}
	if f.MonthYear != "" {
		add("month_year", f.MonthYear)
	}
	return r.list(ctx, where, args...)
}

func (r *FeeRecordRepository) list(ctx context.Context, where string, args ...any) ([]model.FeeRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT receipt_number, student_id, student_name, month_year, total_amount::text, issued_at
		 FROM fee_records `+where+` ORDER BY issued_at DESC, receipt_number DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		records []model.FeeRecord
		numbers []string
	)
	for rows.Next() {
		var (
			rec   model.FeeRecord
			total string
		)
		if err := rows.Scan(&rec.ReceiptNumber, &rec.StudentID, &rec.StudentName, &rec.MonthYear, &total, &rec.IssuedAt); err != nil {
			return nil, err
		}
		if rec.TotalAmount, err = parseAmount(total); err != nil {
			return nil, err
		}
		records = append(records, rec)
		numbers = append(numbers, rec.ReceiptNumber)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	items, err := r.itemsFor(ctx, numbers)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Items = items[records[i].ReceiptNumber]
	}
	return records, nil
}

func (r *FeeRecordRepository) itemsFor(ctx context.Context, numbers []string) (map[string][]model.SelectedSubject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT receipt_number, subject_code, subject_name, fee::text
		 FROM fee_record_items WHERE receipt_number = ANY($1) ORDER BY receipt_number, line_no`, numbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]model.SelectedSubject, len(numbers))
	for rows.Next() {
		var (
			number, fee string
			item        model.SelectedSubject
		)
		if err := rows.Scan(&number, &item.SubjectCode, &item.SubjectName, &fee); err != nil {
			return nil, err
		}
		if item.Fee, err = parseAmount(fee); err != nil {
			return nil, err
		}
		items[number] = append(items[number], item)
	}
	return items, rows.Err()
}
