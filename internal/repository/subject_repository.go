package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/money"
)

const subjectColumns = `subject_code, subject_name, fee::text, created_at, updated_at`

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func scanSubject(row pgx.Row) (*model.Subject, error) {
	var (
		s   model.Subject
		fee string
	)
	if err := row.Scan(&s.SubjectCode, &s.SubjectName, &fee, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	amount, err := parseAmount(fee)
	if err != nil {
		return nil, err
	}
	s.Fee = amount
	return &s, nil
}

func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (subject_code, subject_name, fee) VALUES ($1, $2, $3::numeric)
		 RETURNING created_at, updated_at`,
		s.SubjectCode, s.SubjectName, s.Fee.String()).Scan(&s.CreatedAt, &s.UpdatedAt)
	return translate(err)
}

func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*model.Subject, error) {
	return scanSubject(r.pool.QueryRow(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE subject_code = $1`, code))
}

// GetByCodes resolves several subjects in one round trip. Unknown codes are
// simply absent from the result.
func (r *SubjectRepository) GetByCodes(ctx context.Context, codes []string) ([]model.Subject, error) {
	return r.query(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE subject_code = ANY($1) ORDER BY subject_code ASC`, codes)
}

func (r *SubjectRepository) GetAll(ctx context.Context) ([]model.Subject, error) {
	return r.query(ctx, `SELECT `+subjectColumns+` FROM subjects ORDER BY subject_code ASC`)
}

func (r *SubjectRepository) query(ctx context.Context, sql string, args ...any) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, *s)
	}
	return subjects, rows.Err()
}

// UpdateFee changes the fee and returns the updated row.
func (r *SubjectRepository) UpdateFee(ctx context.Context, code string, fee money.Money) (*model.Subject, error) {
	return scanSubject(r.pool.QueryRow(ctx,
		`UPDATE subjects SET fee = $1::numeric, updated_at = NOW() WHERE subject_code = $2
		 RETURNING `+subjectColumns,
		fee.String(), code))
}

func (r *SubjectRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE subject_code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
