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
	"github.com/stemsi/feedesk-backend/internal/money"
	"github.com/stemsi/feedesk-backend/internal/repository"
)

type SubjectService struct {
	subjectRepo SubjectStore
	cache       cache.Store
	cacheTTL    time.Duration
	log         zerolog.Logger
}

func NewSubjectService(subjectRepo SubjectStore, store cache.Store, cacheTTL time.Duration, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		cache:       store,
		cacheTTL:    cacheTTL,
		log:         log.With().Str("component", "subject_service").Logger(),
	}
}

func (s *SubjectService) GetAll(ctx context.Context) ([]model.Subject, error) {
	return cachedList(ctx, s.cache, config.CacheKey.SubjectListKey(), s.cacheTTL, s.log, s.subjectRepo.GetAll)
}

func (s *SubjectService) GetByCode(ctx context.Context, code string) (*model.Subject, error) {
	sub, err := s.subjectRepo.GetByCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSubjectNotFound
	}
	return sub, err
}

// Create adds a subject. The fee may be any numeric text; it is stored rounded to cents.
func (s *SubjectService) Create(ctx context.Context, code, name string, fee model.RawMoney) (*model.Subject, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, invalid("subjectCode", "subject code is required")
	}
	if name == "" {
		return nil, invalid("subjectName", "subject name is required")
	}
	amount, err := money.Parse(fee.String())
	if err != nil {
		return nil, err
	}

	sub := &model.Subject{SubjectCode: code, SubjectName: name, Fee: amount}
	if err := s.subjectRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: subject %s already exists", ErrDuplicateKey, code)
		}
		s.log.Error().Err(err).Str("subject_code", code).Msg("failed to create subject")
		return nil, err
	}

	invalidate(ctx, s.cache, s.log, config.CacheKey.SubjectListKey())
	return sub, nil
}

// UpdateFee changes the fee of an existing subject. Receipts already issued
// keep the fee they were issued with.
func (s *SubjectService) UpdateFee(ctx context.Context, code string, fee model.RawMoney) (*model.Subject, error) {
	amount, err := money.Parse(fee.String())
	if err != nil {
		return nil, err
	}

	sub, err := s.subjectRepo.UpdateFee(ctx, strings.TrimSpace(code), amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.log.Error().Err(err).Str("subject_code", code).Msg("failed to update fee")
		return nil, err
	}

	invalidate(ctx, s.cache, s.log, config.CacheKey.SubjectListKey())
	s.log.Info().Str("subject_code", sub.SubjectCode).Str("fee", sub.Fee.String()).Msg("subject fee updated")
	return sub, nil
}

func (s *SubjectService) Delete(ctx context.Context, code string) error {
	if err := s.subjectRepo.Delete(ctx, strings.TrimSpace(code)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSubjectNotFound
		}
		s.log.Error().Err(err).Str("subject_code", code).Msg("failed to delete subject")
		return err
	}
	invalidate(ctx, s.cache, s.log, config.CacheKey.SubjectListKey())
	return nil
}
