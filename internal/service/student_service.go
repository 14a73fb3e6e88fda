package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/cache"
	"github.com/stemsi/feedesk-backend/internal/config"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/repository"
)

// StudentService handles roster business logic.
type StudentService struct {
	studentRepo StudentStore
	cache       cache.Store
	cacheTTL    time.Duration
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService. store may be nil to disable caching.
func NewStudentService(studentRepo StudentStore, store cache.Store, cacheTTL time.Duration, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		cache:       store,
		cacheTTL:    cacheTTL,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// GetBySID retrieves a student straight from the store.
func (s *StudentService) GetBySID(ctx context.Context, sid string) (*model.Student, error) {
	st, err := s.studentRepo.GetBySID(ctx, strings.TrimSpace(sid))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	return st, err
}

// List returns the roster ordered by name.
func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	return cachedList(ctx, s.cache, config.CacheKey.StudentListKey(), s.cacheTTL, s.log, s.studentRepo.List)
}

// Create adds a student. A SID already on the roster fails with ErrDuplicateKey.
func (s *StudentService) Create(ctx context.Context, student *model.Student) error {
	student.SID = strings.TrimSpace(student.SID)
	student.StudentName = strings.TrimSpace(student.StudentName)
	student.StudentGrade = strings.TrimSpace(student.StudentGrade)

	switch {
	case student.StudentName == "":
		return invalid("name", "name is required")
	case student.StudentGrade == "":
		return invalid("grade", "grade is required")
	case !isSID(student.SID):
		return invalid("sid", "sid must be exactly 4 digits")
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return fmt.Errorf("%w: student %s already exists", ErrDuplicateKey, student.SID)
		}
		s.log.Error().Err(err).Str("sid", student.SID).Msg("failed to create student")
		return err
	}

	invalidate(ctx, s.cache, s.log, config.CacheKey.StudentListKey())
	s.log.Info().Str("sid", student.SID).Msg("student added")
	return nil
}

// Delete removes a student. Issued receipts keep their snapshot of the student.
func (s *StudentService) Delete(ctx context.Context, sid string) error {
	if err := s.studentRepo.Delete(ctx, strings.TrimSpace(sid)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStudentNotFound
		}
		s.log.Error().Err(err).Str("sid", sid).Msg("failed to delete student")
		return err
	}
	invalidate(ctx, s.cache, s.log, config.CacheKey.StudentListKey())
	return nil
}

func isSID(sid string) bool {
	if len(sid) != 4 {
		return false
	}
	for _, r := range sid {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
