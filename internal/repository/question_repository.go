package repository

import (
	"context"

	"chapter-quiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// FindActiveByChapter returns the chapter's active questions for one
// difficulty, or for all difficulties when difficulty is empty.
func (r *QuestionRepository) FindActiveByChapter(ctx context.Context, chapterID string, difficulty models.Difficulty) ([]models.Question, error) {
	filter := bson.M{"chapter_id": chapterID, "is_active": true}
	if difficulty != "" {
		filter["difficulty"] = difficulty
	}
	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var questions []models.Question
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	_, err := r.Col.InsertOne(ctx, question)
	return err
}

func (r *QuestionRepository) Update(ctx context.Context, id string, question *models.Question) error {
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": id}, question)
	return err
}

// Deactivate soft-deletes a question; sessions already holding a snapshot of it
// are unaffected.
func (r *QuestionRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": false}})
	return err
}
