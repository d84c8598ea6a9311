package models

import (
	"sort"
	"time"
)

type SessionStatus string

const (
	StatusInProgress SessionStatus = "IN_PROGRESS"
	StatusCompleted  SessionStatus = "COMPLETED"
	StatusExpired    SessionStatus = "EXPIRED"
)

// SessionResult holds the final score fields, set exactly once when the
// session leaves IN_PROGRESS.
type SessionResult struct {
	Score       int     `bson:"score" json:"score"`
	TotalPoints int     `bson:"total_points" json:"total_points"`
	Percentage  float64 `bson:"percentage" json:"percentage"`
	Passed      bool    `bson:"passed" json:"passed"`
}

// QuizSession is one attempt. Questions is an immutable snapshot captured at
// start time; later edits to the question bank never touch an in-flight session.
type QuizSession struct {
	ID                     string                     `bson:"_id,omitempty" json:"id"`
	UserID                 string                     `bson:"user_id" json:"user_id"`
	ChapterID              string                     `bson:"chapter_id" json:"chapter_id"`
	Questions              []Question                 `bson:"questions" json:"questions"`
	Answers                map[string]SubmittedAnswer `bson:"answers" json:"answers"`
	Status                 SessionStatus              `bson:"status" json:"status"`
	StartedAt              time.Time                  `bson:"started_at" json:"started_at"`
	CompletedAt            *time.Time                 `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	TimeLimitMinutes       *int                       `bson:"time_limit_minutes,omitempty" json:"time_limit_minutes,omitempty"`
	PassingScorePercentage int                        `bson:"passing_score_percentage" json:"passing_score_percentage"`
	ConfigVersion          string                     `bson:"config_version,omitempty" json:"config_version,omitempty"`
	Underfilled            bool                       `bson:"underfilled" json:"underfilled"`
	Result                 *SessionResult             `bson:"result,omitempty" json:"result,omitempty"`

	// Version backs the storage layer's optimistic per-session locking.
	Version int64 `bson:"version" json:"-"`
}

func (s *QuizSession) IsTerminal() bool {
	return s.Status != StatusInProgress
}

// TimedOut reports whether the session's time limit has elapsed at now.
// Sessions without a limit never time out.
func (s *QuizSession) TimedOut(now time.Time) bool {
	if s.TimeLimitMinutes == nil {
		return false
	}
	return now.Sub(s.StartedAt) >= time.Duration(*s.TimeLimitMinutes)*time.Minute
}

func (s *QuizSession) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// RedactedQuestion is the client-safe projection of a snapshot question: the
// answer key never leaves the server while the session is in progress.
type RedactedQuestion struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	Type       QuestionType `json:"type"`
	Difficulty Difficulty   `json:"difficulty"`
	Points     int          `json:"points"`
	Choices    []Option     `json:"choices,omitempty"`
	Lefts      []string     `json:"lefts,omitempty"`
	Rights     []string     `json:"rights,omitempty"`
	Items      []Option     `json:"items,omitempty"`
}

// SessionView is what handlers return. Questions carries the redacted
// projection while IN_PROGRESS and the full snapshot once terminal.
type SessionView struct {
	ID                     string                     `json:"id"`
	UserID                 string                     `json:"user_id"`
	ChapterID              string                     `json:"chapter_id"`
	Status                 SessionStatus              `json:"status"`
	StartedAt              time.Time                  `json:"started_at"`
	CompletedAt            *time.Time                 `json:"completed_at,omitempty"`
	TimeLimitMinutes       *int                       `json:"time_limit_minutes,omitempty"`
	PassingScorePercentage int                        `json:"passing_score_percentage"`
	Underfilled            bool                       `json:"underfilled"`
	Answers                map[string]SubmittedAnswer `json:"answers"`
	Result                 *SessionResult             `json:"result,omitempty"`
	Questions              []RedactedQuestion         `json:"questions,omitempty"`
	FullQuestions          []Question                 `json:"full_questions,omitempty"`
}

func (s *QuizSession) View() SessionView {
	v := SessionView{
		ID:                     s.ID,
		UserID:                 s.UserID,
		ChapterID:              s.ChapterID,
		Status:                 s.Status,
		StartedAt:              s.StartedAt,
		CompletedAt:            s.CompletedAt,
		TimeLimitMinutes:       s.TimeLimitMinutes,
		PassingScorePercentage: s.PassingScorePercentage,
		Underfilled:            s.Underfilled,
		Answers:                s.Answers,
		Result:                 s.Result,
	}
	if s.IsTerminal() {
		v.FullQuestions = s.Questions
		return v
	}
	v.Questions = make([]RedactedQuestion, 0, len(s.Questions))
	for i := range s.Questions {
		v.Questions = append(v.Questions, redactQuestion(&s.Questions[i]))
	}
	return v
}

func redactQuestion(q *Question) RedactedQuestion {
	r := RedactedQuestion{
		ID:         q.ID,
		Content:    q.Content,
		Type:       q.Type,
		Difficulty: q.Difficulty,
		Points:     q.Points,
	}
	switch q.Type {
	case TypeMultipleChoice:
		if q.Options.MultipleChoice != nil {
			r.Choices = q.Options.MultipleChoice.Choices
		}
	case TypeMultipleAnswer:
		if q.Options.MultipleAnswer != nil {
			r.Choices = q.Options.MultipleAnswer.Choices
		}
	case TypeMatching:
		if q.Options.Matching != nil {
			for _, p := range q.Options.Matching.Pairs {
				r.Lefts = append(r.Lefts, p.Left)
				r.Rights = append(r.Rights, p.Right)
			}
			// Sorted rights so the column order carries no pairing information.
			sort.Strings(r.Rights)
		}
	case TypeOrdering:
		if q.Options.Ordering != nil {
			r.Items = append(r.Items, q.Options.Ordering.Items...)
			// Sorted by id so the presented order never leaks the canonical one.
			sort.Slice(r.Items, func(i, j int) bool { return r.Items[i].ID < r.Items[j].ID })
		}
	}
	return r
}
