package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"chapter-quiz-service/internal/models"
	"chapter-quiz-service/internal/selection"
)

// memSessionStore emulates the Mongo repository: reads and writes exchange
// copies, so forgetting an Update shows up as a stale read.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.QuizSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*models.QuizSession{}}
}

func cloneSession(s *models.QuizSession) *models.QuizSession {
	c := *s
	c.Answers = make(map[string]models.SubmittedAnswer, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.Questions = append([]models.Question(nil), s.Questions...)
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		c.CompletedAt = &at
	}
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	return &c
}

func (m *memSessionStore) Create(_ context.Context, session *models.QuizSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *memSessionStore) FindByID(_ context.Context, id string) (*models.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (m *memSessionStore) Update(_ context.Context, session *models.QuizSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; !ok {
		return errors.New("update of unknown session")
	}
	session.Version++
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *memSessionStore) FindInProgress(_ context.Context, userID, chapterID string) (*models.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.ChapterID == chapterID && s.Status == models.StatusInProgress {
			return cloneSession(s), nil
		}
	}
	return nil, nil
}

func (m *memSessionStore) CountFinished(_ context.Context, userID, chapterID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.ChapterID == chapterID && s.Status != models.StatusInProgress {
			count++
		}
	}
	return count, nil
}

func (m *memSessionStore) FindFinishedByUser(_ context.Context, userID, chapterID string) ([]models.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.QuizSession
	for _, s := range m.sessions {
		if s.UserID == userID && s.ChapterID == chapterID && s.Status != models.StatusInProgress {
			out = append(out, *cloneSession(s))
		}
	}
	return out, nil
}

// backdate shifts a stored session's start time, simulating elapsed wall time.
func (m *memSessionStore) backdate(id string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id].StartedAt = m.sessions[id].StartedAt.Add(-d)
}

func (m *memSessionStore) stored(id string) *models.QuizSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSession(m.sessions[id])
}

type stubResolver struct {
	cfg *models.QuizConfig
	err error
}

func (r *stubResolver) Resolve(_ context.Context, chapterID string) (*models.QuizConfig, error) {
	if r.err != nil {
		return nil, r.err
	}
	cfg := *r.cfg
	cfg.ChapterID = chapterID
	return &cfg, nil
}

type memQuestionSource struct {
	questions []models.Question
}

func (s *memQuestionSource) FindActiveByChapter(_ context.Context, _ string, difficulty models.Difficulty) ([]models.Question, error) {
	var out []models.Question
	for _, q := range s.questions {
		if q.Difficulty == difficulty {
			out = append(out, q)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) has(eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == eventType {
			return true
		}
	}
	return false
}

func easyPool(n int) []models.Question {
	pool := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, models.Question{
			ID:         fmt.Sprintf("q%d", i),
			ChapterID:  "ch1",
			Type:       models.TypeTrueFalse,
			Difficulty: models.DifficultyEasy,
			Points:     1,
			IsActive:   true,
			Options:    models.QuestionOptions{TrueFalse: &models.TrueFalseOptions{CorrectAnswer: true}},
		})
	}
	return pool
}

func easyConfig(questions int) *models.QuizConfig {
	return &models.QuizConfig{
		QuestionsPerQuiz:       questions,
		EasyPct:                100,
		MediumPct:              0,
		HardPct:                0,
		PassingScorePercentage: 70,
	}
}

type fixture struct {
	svc    *SessionService
	store  *memSessionStore
	events *recordingPublisher
}

func newFixture(cfg *models.QuizConfig, cfgErr error, supply int) *fixture {
	store := newMemSessionStore()
	events := &recordingPublisher{}
	svc := NewSessionService(
		store,
		&stubResolver{cfg: cfg, err: cfgErr},
		selection.NewSelector(&memQuestionSource{questions: easyPool(supply)}),
		events,
	)
	return &fixture{svc: svc, store: store, events: events}
}

func boolPtr(b bool) *bool { return &b }

func TestStartQuizCreatesSnapshotSession(t *testing.T) {
	f := newFixture(easyConfig(4), nil, 8)

	session, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.Status != models.StatusInProgress {
		t.Errorf("Expected IN_PROGRESS, got %s", session.Status)
	}
	if len(session.Questions) != 4 {
		t.Errorf("Expected 4 snapshot questions, got %d", len(session.Questions))
	}
	if len(session.Answers) != 0 {
		t.Errorf("Expected empty answers, got %d", len(session.Answers))
	}
	if session.Underfilled {
		t.Error("Supply of 8 for 4 slots must not be underfilled")
	}
	if !f.events.has("quiz.session.started") {
		t.Error("Expected quiz.session.started event")
	}
}

func TestStartQuizFallsBackToDefaultConfig(t *testing.T) {
	f := newFixture(nil, ErrConfigNotFound, 12)

	session, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if err != nil {
		t.Fatalf("Expected default-config fallback, got %v", err)
	}
	if session.ConfigVersion != models.DefaultConfigVersion {
		t.Errorf("Expected session tagged %s, got %q", models.DefaultConfigVersion, session.ConfigVersion)
	}
	if session.PassingScorePercentage != 70 {
		t.Errorf("Expected default passing threshold, got %d", session.PassingScorePercentage)
	}
}

func TestStartQuizRejectsSecondInProgress(t *testing.T) {
	f := newFixture(easyConfig(2), nil, 4)

	if _, err := f.svc.StartQuiz(context.Background(), "u1", "ch1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if !errors.Is(err, ErrSessionAlreadyInProgress) {
		t.Fatalf("Expected ErrSessionAlreadyInProgress, got %v", err)
	}
}

func TestStartQuizExpiresStaleSessionFirst(t *testing.T) {
	cfg := easyConfig(2)
	limit := 1
	cfg.TimeLimitMinutes = &limit
	f := newFixture(cfg, nil, 4)

	first, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f.store.backdate(first.ID, 2*time.Minute)

	second, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if err != nil {
		t.Fatalf("Expected stale session to be expired, got %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("Expected a fresh session")
	}

	old := f.store.stored(first.ID)
	if old.Status != models.StatusExpired {
		t.Errorf("Expected first session EXPIRED, got %s", old.Status)
	}
	if old.Result == nil || old.CompletedAt == nil {
		t.Error("Expired session must be scored and stamped")
	}
	if !f.events.has("quiz.session.expired") {
		t.Error("Expected quiz.session.expired event")
	}
}

func TestStartQuizEnforcesAttemptLimit(t *testing.T) {
	cfg := easyConfig(2)
	cfg.MaxAttempts = 2
	f := newFixture(cfg, nil, 4)

	// Two finished attempts already on record.
	for i := 0; i < 2; i++ {
		now := time.Now()
		f.store.Create(context.Background(), &models.QuizSession{
			ID:          fmt.Sprintf("old-%d", i),
			UserID:      "u1",
			ChapterID:   "ch1",
			Status:      models.StatusCompleted,
			StartedAt:   now.Add(-time.Hour),
			CompletedAt: &now,
			Answers:     map[string]models.SubmittedAnswer{},
		})
	}

	_, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if !errors.Is(err, ErrAttemptLimitExceeded) {
		t.Fatalf("Expected ErrAttemptLimitExceeded, got %v", err)
	}

	// Unlimited config ignores the history.
	cfg.MaxAttempts = 0
	if _, err := f.svc.StartQuiz(context.Background(), "u1", "ch1"); err != nil {
		t.Fatalf("Expected unlimited attempts to allow a start, got %v", err)
	}
}

func TestSubmitAnswerLastWriteWins(t *testing.T) {
	f := newFixture(easyConfig(2), nil, 4)
	session, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	qid := session.Questions[0].ID

	if _, err := f.svc.SubmitAnswer(context.Background(), session.ID, qid, models.SubmittedAnswer{Selected: boolPtr(false)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := f.svc.SubmitAnswer(context.Background(), session.ID, qid, models.SubmittedAnswer{Selected: boolPtr(true)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stored := f.store.stored(session.ID)
	if len(stored.Answers) != 1 {
		t.Fatalf("Expected 1 recorded answer, got %d", len(stored.Answers))
	}
	if got := stored.Answers[qid].Selected; got == nil || !*got {
		t.Error("Expected the second submission to win")
	}
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	f := newFixture(easyConfig(2), nil, 4)
	session, _ := f.svc.StartQuiz(context.Background(), "u1", "ch1")

	_, err := f.svc.SubmitAnswer(context.Background(), session.ID, "not-in-session", models.SubmittedAnswer{Selected: boolPtr(true)})
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("Expected ErrUnknownQuestion, got %v", err)
	}
}

func TestSubmitAnswerExpiresTimedOutSessionFirst(t *testing.T) {
	cfg := easyConfig(2)
	limit := 1
	cfg.TimeLimitMinutes = &limit
	f := newFixture(cfg, nil, 4)

	session, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	qid := session.Questions[0].ID
	if _, err := f.svc.SubmitAnswer(context.Background(), session.ID, qid, models.SubmittedAnswer{Selected: boolPtr(true)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	f.store.backdate(session.ID, 2*time.Minute)

	_, err = f.svc.SubmitAnswer(context.Background(), session.ID, session.Questions[1].ID, models.SubmittedAnswer{Selected: boolPtr(true)})
	if !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("Expected ErrSessionNotActive after expiry, got %v", err)
	}

	stored := f.store.stored(session.ID)
	if stored.Status != models.StatusExpired {
		t.Fatalf("Expected EXPIRED, got %s", stored.Status)
	}
	// Timed-out sessions keep the partial score, they are not zeroed.
	if stored.Result == nil || stored.Result.Score != 1 || stored.Result.TotalPoints != 2 {
		t.Errorf("Expected partial score 1/2, got %+v", stored.Result)
	}
}

func TestCompleteQuizScoresOnce(t *testing.T) {
	f := newFixture(easyConfig(2), nil, 4)
	session, err := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, q := range session.Questions {
		if _, err := f.svc.SubmitAnswer(context.Background(), session.ID, q.ID, models.SubmittedAnswer{Selected: boolPtr(true)}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	done, err := f.svc.CompleteQuiz(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if done.Status != models.StatusCompleted || done.CompletedAt == nil {
		t.Fatalf("Expected COMPLETED with timestamp, got %s", done.Status)
	}
	if done.Result == nil || done.Result.Percentage != 100.0 || !done.Result.Passed {
		t.Fatalf("Expected a perfect passing score, got %+v", done.Result)
	}
	if !f.events.has("quiz.session.completed") {
		t.Error("Expected quiz.session.completed event")
	}

	// Second completion fails and never rescores.
	_, err = f.svc.CompleteQuiz(context.Background(), session.ID)
	if !errors.Is(err, ErrSessionAlreadyFinished) {
		t.Fatalf("Expected ErrSessionAlreadyFinished, got %v", err)
	}
	stored := f.store.stored(session.ID)
	if *stored.Result != *done.Result {
		t.Errorf("Score changed after finalization: %+v vs %+v", stored.Result, done.Result)
	}
	if !stored.CompletedAt.Equal(*done.CompletedAt) {
		t.Error("completedAt changed after finalization")
	}
}

func TestGetSessionLazilyExpires(t *testing.T) {
	cfg := easyConfig(2)
	limit := 1
	cfg.TimeLimitMinutes = &limit
	f := newFixture(cfg, nil, 4)

	session, _ := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	f.store.backdate(session.ID, 90*time.Second)

	got, err := f.svc.GetSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Status != models.StatusExpired {
		t.Errorf("Expected read to expire the session, got %s", got.Status)
	}
	if got.Result == nil {
		t.Error("Expired session must carry a result")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	f := newFixture(easyConfig(2), nil, 4)

	_, err := f.svc.GetSession(context.Background(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetHistoryListsOnlyFinished(t *testing.T) {
	f := newFixture(easyConfig(2), nil, 4)

	session, _ := f.svc.StartQuiz(context.Background(), "u1", "ch1")
	if _, err := f.svc.CompleteQuiz(context.Background(), session.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, _ := f.svc.StartQuiz(context.Background(), "u1", "ch1")

	history, err := f.svc.GetHistory(context.Background(), "u1", "ch1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 finished attempt, got %d", len(history))
	}
	if history[0].ID == second.ID {
		t.Error("In-progress session must not appear in history")
	}
}
