package selection

import (
	"context"

	"chapter-quiz-service/internal/models"
)

// QuestionSource is the slice of the question bank the selector needs.
type QuestionSource interface {
	FindActiveByChapter(ctx context.Context, chapterID string, difficulty models.Difficulty) ([]models.Question, error)
}

// Result is the ordered question set for a new attempt. Underfilled is set
// when the chapter's pools could not satisfy the configured count; a short
// quiz is returned instead of an error so the user is never blocked.
type Result struct {
	Questions   []models.Question
	Underfilled bool
}
