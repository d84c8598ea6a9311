package repository

import (
	"context"
	"errors"

	"chapter-quiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ConfigRepository struct {
	Col *mongo.Collection
}

func NewConfigRepository(db *mongo.Database) *ConfigRepository {
	return &ConfigRepository{Col: db.Collection("quiz_configs")}
}

// FindActiveByChapter returns the chapter's active config, or (nil, nil) when
// none exists.
func (r *ConfigRepository) FindActiveByChapter(ctx context.Context, chapterID string) (*models.QuizConfig, error) {
	var cfg models.QuizConfig
	err := r.Col.FindOne(ctx, bson.M{"chapter_id": chapterID, "is_active": true}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert replaces the chapter's config, keeping at most one record per chapter.
func (r *ConfigRepository) Upsert(ctx context.Context, cfg *models.QuizConfig) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.Col.ReplaceOne(ctx, bson.M{"chapter_id": cfg.ChapterID}, cfg, opts)
	return err
}
