package service

import (
	"context"

	"chapter-quiz-service/internal/models"

	"github.com/google/uuid"
)

type QuestionStore interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
	FindActiveByChapter(ctx context.Context, chapterID string, difficulty models.Difficulty) ([]models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, id string, question *models.Question) error
	Deactivate(ctx context.Context, id string) error
}

type QuestionService struct {
	Store QuestionStore
}

func NewQuestionService(store QuestionStore) *QuestionService {
	return &QuestionService{Store: store}
}

func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return s.Store.FindByID(ctx, id)
}

func (s *QuestionService) ListQuestions(ctx context.Context, chapterID string, difficulty models.Difficulty) ([]models.Question, error) {
	return s.Store.FindActiveByChapter(ctx, chapterID, difficulty)
}

func (s *QuestionService) CreateQuestion(ctx context.Context, question *models.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	question.IsActive = true
	return s.Store.Create(ctx, question)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, question *models.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}
	question.ID = id
	return s.Store.Update(ctx, id, question)
}

// DeleteQuestion soft-deletes: the question stops being selectable but stays
// intact inside existing session snapshots.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id string) error {
	return s.Store.Deactivate(ctx, id)
}
