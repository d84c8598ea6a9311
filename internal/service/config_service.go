package service

import (
	"context"
	"fmt"

	"chapter-quiz-service/internal/models"
)

// ConfigStore is the slice of config storage the resolver needs. A nil config
// with a nil error means the chapter has no active config.
type ConfigStore interface {
	FindActiveByChapter(ctx context.Context, chapterID string) (*models.QuizConfig, error)
	Upsert(ctx context.Context, cfg *models.QuizConfig) error
}

type ConfigService struct {
	Store ConfigStore
}

func NewConfigService(store ConfigStore) *ConfigService {
	return &ConfigService{Store: store}
}

// Resolve loads and validates the chapter's active config. Pure read; callers
// decide whether ErrConfigNotFound means failure or falling back to the
// documented default.
func (s *ConfigService) Resolve(ctx context.Context, chapterID string) (*models.QuizConfig, error) {
	cfg, err := s.Store.FindActiveByChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: chapter %s", ErrConfigNotFound, chapterID)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Put validates and stores the chapter's config, replacing any existing one.
func (s *ConfigService) Put(ctx context.Context, cfg *models.QuizConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.IsActive = true
	return s.Store.Upsert(ctx, cfg)
}
