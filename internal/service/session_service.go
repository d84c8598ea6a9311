package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"chapter-quiz-service/internal/grading"
	"chapter-quiz-service/internal/models"
	"chapter-quiz-service/internal/selection"

	"github.com/google/uuid"
)

// SessionStore persists attempts. Update must be atomic per session; the Mongo
// implementation enforces that with a version-checked replace.
type SessionStore interface {
	Create(ctx context.Context, session *models.QuizSession) error
	FindByID(ctx context.Context, id string) (*models.QuizSession, error)
	Update(ctx context.Context, session *models.QuizSession) error
	FindInProgress(ctx context.Context, userID, chapterID string) (*models.QuizSession, error)
	CountFinished(ctx context.Context, userID, chapterID string) (int, error)
	FindFinishedByUser(ctx context.Context, userID, chapterID string) ([]models.QuizSession, error)
}

// ConfigResolver yields the chapter's validated config (ErrConfigNotFound when
// none is authored).
type ConfigResolver interface {
	Resolve(ctx context.Context, chapterID string) (*models.QuizConfig, error)
}

// QuestionSelector assembles the question set for a new attempt.
type QuestionSelector interface {
	Select(ctx context.Context, chapterID string, config *models.QuizConfig) (*selection.Result, error)
}

// EventPublisher feeds downstream consumers (XP/gamification reacts to
// completion events). A nil publisher disables publishing.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// SessionService owns the attempt lifecycle: one IN_PROGRESS session per
// user/chapter, lazy expiry on every touch, scoring exactly once on the way
// out of IN_PROGRESS.
type SessionService struct {
	Store    SessionStore
	Configs  ConfigResolver
	Selector QuestionSelector
	Events   EventPublisher
}

func NewSessionService(store SessionStore, configs ConfigResolver, selector QuestionSelector, events EventPublisher) *SessionService {
	return &SessionService{
		Store:    store,
		Configs:  configs,
		Selector: selector,
		Events:   events,
	}
}

// StartQuiz creates a new attempt: gate on the existing-session and attempt
// limits, resolve the config, snapshot a fresh question selection.
func (s *SessionService) StartQuiz(ctx context.Context, userID, chapterID string) (*models.QuizSession, error) {
	existing, err := s.Store.FindInProgress(ctx, userID, chapterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// A timed-out session must not block new attempts forever, so expire
		// it here before deciding.
		expired, err := s.expireIfTimedOut(ctx, existing)
		if err != nil {
			return nil, err
		}
		if !expired {
			return nil, fmt.Errorf("%w: session %s", ErrSessionAlreadyInProgress, existing.ID)
		}
	}

	config, err := s.Configs.Resolve(ctx, chapterID)
	if errors.Is(err, ErrConfigNotFound) {
		config = models.DefaultQuizConfig(chapterID)
		log.Printf("chapter %s has no quiz config, using %s", chapterID, models.DefaultConfigVersion)
	} else if err != nil {
		return nil, err
	}

	if config.MaxAttempts > 0 {
		finished, err := s.Store.CountFinished(ctx, userID, chapterID)
		if err != nil {
			return nil, err
		}
		if finished >= config.MaxAttempts {
			return nil, fmt.Errorf("%w: %d of %d used", ErrAttemptLimitExceeded, finished, config.MaxAttempts)
		}
	}

	selected, err := s.Selector.Select(ctx, chapterID, config)
	if err != nil {
		return nil, err
	}

	session := &models.QuizSession{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		ChapterID:              chapterID,
		Questions:              selected.Questions,
		Answers:                map[string]models.SubmittedAnswer{},
		Status:                 models.StatusInProgress,
		StartedAt:              time.Now(),
		TimeLimitMinutes:       config.TimeLimitMinutes,
		PassingScorePercentage: config.PassingScorePercentage,
		ConfigVersion:          config.Version,
		Underfilled:            selected.Underfilled,
	}
	if err := s.Store.Create(ctx, session); err != nil {
		return nil, err
	}

	s.publish("quiz.session.started", map[string]interface{}{
		"session_id":  session.ID,
		"user_id":     userID,
		"chapter_id":  chapterID,
		"questions":   len(session.Questions),
		"underfilled": session.Underfilled,
	})
	return session, nil
}

// GetSession loads a session, expiring it first if its time limit has passed.
func (s *SessionService) GetSession(ctx context.Context, id string) (*models.QuizSession, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.expireIfTimedOut(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitAnswer records an answer, overwriting any prior one for the question.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, questionID string, answer models.SubmittedAnswer) (*models.QuizSession, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.expireIfTimedOut(ctx, session); err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionNotActive, sessionID, session.Status)
	}
	if session.QuestionByID(questionID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	session.Answers[questionID] = answer
	if err := s.Store.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CompleteQuiz finalizes an attempt. Scores are computed exactly once; a
// second call on a finished session fails instead of rescoring.
func (s *SessionService) CompleteQuiz(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.expireIfTimedOut(ctx, session); err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionAlreadyFinished, sessionID, session.Status)
	}

	if err := s.finalize(ctx, session, models.StatusCompleted); err != nil {
		return nil, err
	}
	s.publishFinished("quiz.session.completed", session)
	return session, nil
}

// GetHistory lists the user's finished attempts for a chapter, newest first.
func (s *SessionService) GetHistory(ctx context.Context, userID, chapterID string) ([]models.QuizSession, error) {
	return s.Store.FindFinishedByUser(ctx, userID, chapterID)
}

func (s *SessionService) load(ctx context.Context, id string) (*models.QuizSession, error) {
	session, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// expireIfTimedOut transitions an over-limit session to EXPIRED, scoring
// whatever answers exist. Invoked lazily on every read and mutation so the
// engine stays correct without a background timer.
func (s *SessionService) expireIfTimedOut(ctx context.Context, session *models.QuizSession) (bool, error) {
	if session.IsTerminal() || !session.TimedOut(time.Now()) {
		return false, nil
	}
	if err := s.finalize(ctx, session, models.StatusExpired); err != nil {
		return false, err
	}
	s.publishFinished("quiz.session.expired", session)
	return true, nil
}

// finalize scores the session and moves it to its terminal status.
func (s *SessionService) finalize(ctx context.Context, session *models.QuizSession, status models.SessionStatus) error {
	result, err := grading.Score(session)
	if err != nil {
		return err
	}
	now := time.Now()
	session.Status = status
	session.CompletedAt = &now
	session.Result = result
	return s.Store.Update(ctx, session)
}

func (s *SessionService) publishFinished(eventType string, session *models.QuizSession) {
	payload := map[string]interface{}{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"chapter_id": session.ChapterID,
	}
	if session.Result != nil {
		payload["score"] = session.Result.Score
		payload["total_points"] = session.Result.TotalPoints
		payload["percentage"] = session.Result.Percentage
		payload["passed"] = session.Result.Passed
	}
	s.publish(eventType, payload)
}

func (s *SessionService) publish(eventType string, payload interface{}) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(eventType, payload); err != nil {
		log.Printf("Failed to publish %s: %v", eventType, err)
	}
}
