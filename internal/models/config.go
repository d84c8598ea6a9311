package models

import "fmt"

// DefaultConfigVersion tags sessions started from the built-in default config so
// results stay attributable when no authored config existed for the chapter.
const DefaultConfigVersion = "default-v1"

type QuizConfig struct {
	ID                     string `bson:"_id,omitempty" json:"id"`
	ChapterID              string `bson:"chapter_id" json:"chapter_id"`
	QuestionsPerQuiz       int    `bson:"questions_per_quiz" json:"questions_per_quiz"`
	EasyPct                int    `bson:"easy_pct" json:"easy_pct"`
	MediumPct              int    `bson:"medium_pct" json:"medium_pct"`
	HardPct                int    `bson:"hard_pct" json:"hard_pct"`
	TimeLimitMinutes       *int   `bson:"time_limit_minutes,omitempty" json:"time_limit_minutes,omitempty"`
	PassingScorePercentage int    `bson:"passing_score_percentage" json:"passing_score_percentage"`
	ShuffleQuestions       bool   `bson:"shuffle_questions" json:"shuffle_questions"`
	ShuffleOptions         bool   `bson:"shuffle_options" json:"shuffle_options"`
	MaxAttempts            int    `bson:"max_attempts" json:"max_attempts"` // 0 = unlimited
	IsActive               bool   `bson:"is_active" json:"is_active"`
	Version                string `bson:"version,omitempty" json:"version,omitempty"`
}

// DefaultQuizConfig is the documented fallback used when a chapter has no
// authored config: 10 questions, 40/40/20 split, 70% to pass, no time limit,
// unlimited attempts.
func DefaultQuizConfig(chapterID string) *QuizConfig {
	return &QuizConfig{
		ChapterID:              chapterID,
		QuestionsPerQuiz:       10,
		EasyPct:                40,
		MediumPct:              40,
		HardPct:                20,
		PassingScorePercentage: 70,
		ShuffleQuestions:       true,
		ShuffleOptions:         true,
		MaxAttempts:            0,
		IsActive:               true,
		Version:                DefaultConfigVersion,
	}
}

func (c *QuizConfig) PctFor(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return c.EasyPct
	case DifficultyMedium:
		return c.MediumPct
	case DifficultyHard:
		return c.HardPct
	}
	return 0
}

func (c *QuizConfig) Validate() error {
	if c.QuestionsPerQuiz <= 0 {
		return fmt.Errorf("questions_per_quiz must be > 0, got %d", c.QuestionsPerQuiz)
	}
	if sum := c.EasyPct + c.MediumPct + c.HardPct; sum != 100 {
		return fmt.Errorf("difficulty percentages must sum to 100, got %d", sum)
	}
	if c.EasyPct < 0 || c.MediumPct < 0 || c.HardPct < 0 {
		return fmt.Errorf("difficulty percentages must not be negative")
	}
	if c.PassingScorePercentage < 0 || c.PassingScorePercentage > 100 {
		return fmt.Errorf("passing_score_percentage must be in [0,100], got %d", c.PassingScorePercentage)
	}
	if c.TimeLimitMinutes != nil && *c.TimeLimitMinutes <= 0 {
		return fmt.Errorf("time_limit_minutes must be > 0 when set, got %d", *c.TimeLimitMinutes)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}
	return nil
}
