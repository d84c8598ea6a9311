package models

import "fmt"

type QuestionType string

const (
	TypeTrueFalse      QuestionType = "TRUE_FALSE"
	TypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TypeMultipleAnswer QuestionType = "MULTIPLE_ANSWER"
	TypeMatching       QuestionType = "MATCHING"
	TypeOrdering       QuestionType = "ORDERING"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Difficulties lists the levels in selection order (shortfall cascades left to right).
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

type Option struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text"`
}

type MatchPair struct {
	Left  string `bson:"left" json:"left"`
	Right string `bson:"right" json:"right"`
}

type TrueFalseOptions struct {
	CorrectAnswer bool `bson:"correct_answer" json:"correct_answer"`
}

type MultipleChoiceOptions struct {
	Choices       []Option `bson:"choices" json:"choices"`
	CorrectAnswer string   `bson:"correct_answer" json:"correct_answer"`
}

type MultipleAnswerOptions struct {
	Choices        []Option `bson:"choices" json:"choices"`
	CorrectAnswers []string `bson:"correct_answers" json:"correct_answers"`
}

type MatchingOptions struct {
	Pairs []MatchPair `bson:"pairs" json:"pairs"`
}

// OrderingOptions holds the items in their canonical (correct) order.
type OrderingOptions struct {
	Items []Option `bson:"items" json:"items"`
}

// QuestionOptions is a union keyed by Question.Type: exactly one variant is set.
type QuestionOptions struct {
	TrueFalse      *TrueFalseOptions      `bson:"true_false,omitempty" json:"true_false,omitempty"`
	MultipleChoice *MultipleChoiceOptions `bson:"multiple_choice,omitempty" json:"multiple_choice,omitempty"`
	MultipleAnswer *MultipleAnswerOptions `bson:"multiple_answer,omitempty" json:"multiple_answer,omitempty"`
	Matching       *MatchingOptions       `bson:"matching,omitempty" json:"matching,omitempty"`
	Ordering       *OrderingOptions       `bson:"ordering,omitempty" json:"ordering,omitempty"`
}

type Question struct {
	ID         string          `bson:"_id,omitempty" json:"id"`
	ChapterID  string          `bson:"chapter_id" json:"chapter_id"`
	Content    string          `bson:"content" json:"content"`
	Type       QuestionType    `bson:"type" json:"type"`
	Difficulty Difficulty      `bson:"difficulty" json:"difficulty"`
	Points     int             `bson:"points" json:"points"`
	Options    QuestionOptions `bson:"options" json:"options"`
	IsActive   bool            `bson:"is_active" json:"is_active"`
}

// Validate checks that the options payload matches the declared type and that
// the variant itself is answerable.
func (q *Question) Validate() error {
	if q.Points < 1 {
		return fmt.Errorf("question points must be >= 1, got %d", q.Points)
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}

	switch q.Type {
	case TypeTrueFalse:
		if q.Options.TrueFalse == nil {
			return fmt.Errorf("TRUE_FALSE question missing true_false options")
		}
	case TypeMultipleChoice:
		o := q.Options.MultipleChoice
		if o == nil || len(o.Choices) < 2 {
			return fmt.Errorf("MULTIPLE_CHOICE question needs at least 2 choices")
		}
		if !hasOption(o.Choices, o.CorrectAnswer) {
			return fmt.Errorf("MULTIPLE_CHOICE correct_answer %q is not a choice", o.CorrectAnswer)
		}
	case TypeMultipleAnswer:
		o := q.Options.MultipleAnswer
		if o == nil || len(o.Choices) < 2 || len(o.CorrectAnswers) == 0 {
			return fmt.Errorf("MULTIPLE_ANSWER question needs choices and correct_answers")
		}
		for _, id := range o.CorrectAnswers {
			if !hasOption(o.Choices, id) {
				return fmt.Errorf("MULTIPLE_ANSWER correct answer %q is not a choice", id)
			}
		}
	case TypeMatching:
		if q.Options.Matching == nil || len(q.Options.Matching.Pairs) == 0 {
			return fmt.Errorf("MATCHING question needs at least one pair")
		}
	case TypeOrdering:
		if q.Options.Ordering == nil || len(q.Options.Ordering.Items) < 2 {
			return fmt.Errorf("ORDERING question needs at least 2 items")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}

func hasOption(choices []Option, id string) bool {
	for _, c := range choices {
		if c.ID == id {
			return true
		}
	}
	return false
}
