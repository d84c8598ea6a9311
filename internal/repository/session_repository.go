package repository

import (
	"context"
	"errors"

	"chapter-quiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrSessionConflict means a concurrent writer updated the session between our
// read and write. The engine surfaces it instead of retrying.
var ErrSessionConflict = errors.New("session was modified concurrently")

type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions")}
}

// FindByID returns (nil, nil) when the session does not exist.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.QuizSession, error) {
	var session models.QuizSession
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.QuizSession) error {
	_, err := r.Col.InsertOne(ctx, session)
	return err
}

// Update replaces the session only if nobody else wrote it since it was read.
// The version filter plus increment is the per-session mutual exclusion the
// engine's ordering guarantees rely on.
func (r *SessionRepository) Update(ctx context.Context, session *models.QuizSession) error {
	readVersion := session.Version
	session.Version++
	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": session.ID, "version": readVersion}, session)
	if err != nil {
		session.Version = readVersion
		return err
	}
	if res.MatchedCount == 0 {
		session.Version = readVersion
		return ErrSessionConflict
	}
	return nil
}

// FindInProgress returns the user's open session for a chapter, or (nil, nil).
// At most one exists at a time.
func (r *SessionRepository) FindInProgress(ctx context.Context, userID, chapterID string) (*models.QuizSession, error) {
	var session models.QuizSession
	err := r.Col.FindOne(ctx, bson.M{
		"user_id":    userID,
		"chapter_id": chapterID,
		"status":     models.StatusInProgress,
	}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CountFinished counts COMPLETED and EXPIRED attempts for the limiter.
func (r *SessionRepository) CountFinished(ctx context.Context, userID, chapterID string) (int, error) {
	n, err := r.Col.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"chapter_id": chapterID,
		"status":     bson.M{"$in": []models.SessionStatus{models.StatusCompleted, models.StatusExpired}},
	})
	return int(n), err
}

// FindFinishedByUser lists a user's finished attempts for a chapter, newest first.
func (r *SessionRepository) FindFinishedByUser(ctx context.Context, userID, chapterID string) ([]models.QuizSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{
		"user_id":    userID,
		"chapter_id": chapterID,
		"status":     bson.M{"$in": []models.SessionStatus{models.StatusCompleted, models.StatusExpired}},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var sessions []models.QuizSession
	for cur.Next(ctx) {
		var s models.QuizSession
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, cur.Err()
}
