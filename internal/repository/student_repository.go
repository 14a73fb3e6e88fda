package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feedesk-backend/internal/model"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetBySID retrieves a student by their 4-digit identifier.
func (r *StudentRepository) GetBySID(ctx context.Context, sid string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT sid, student_name, student_grade, created_at FROM students WHERE sid = $1`, sid,
	).Scan(&s.SID, &s.StudentName, &s.StudentGrade, &s.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// List retrieves the whole roster ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sid, student_name, student_grade, created_at FROM students ORDER BY student_name ASC, sid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.SID, &s.StudentName, &s.StudentGrade, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new student. A taken SID yields ErrDuplicateKey and leaves
// the existing row untouched.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (sid, student_name, student_grade)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		s.SID, s.StudentName, s.StudentGrade,
	).Scan(&s.CreatedAt)
	return translate(err)
}

// Delete removes a student by SID.
func (r *StudentRepository) Delete(ctx context.Context, sid string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE sid = $1`, sid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
