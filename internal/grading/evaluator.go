package grading

import (
	"errors"
	"fmt"

	"chapter-quiz-service/internal/models"
)

// ErrUnsupportedQuestionType flags authored content the engine cannot score.
// It is a data-integrity failure and must reach operators, never be silently
// scored as incorrect.
var ErrUnsupportedQuestionType = errors.New("unsupported question type")

type Evaluation struct {
	Correct       bool `json:"correct"`
	PointsAwarded int  `json:"points_awarded"`
}

// Evaluate checks one submitted answer against the question snapshot. A nil
// answer (unanswered) is incorrect. All types are all-or-nothing: full points
// when correct, zero otherwise.
func Evaluate(q *models.Question, answer *models.SubmittedAnswer) (Evaluation, error) {
	correct, err := isCorrect(q, answer)
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{Correct: correct}
	if correct {
		ev.PointsAwarded = q.Points
	}
	return ev, nil
}

func isCorrect(q *models.Question, answer *models.SubmittedAnswer) (bool, error) {
	switch q.Type {
	case models.TypeTrueFalse:
		o := q.Options.TrueFalse
		if o == nil {
			return false, fmt.Errorf("%w: question %s has no true_false options", ErrUnsupportedQuestionType, q.ID)
		}
		if answer == nil || answer.Selected == nil {
			return false, nil
		}
		return *answer.Selected == o.CorrectAnswer, nil

	case models.TypeMultipleChoice:
		o := q.Options.MultipleChoice
		if o == nil {
			return false, fmt.Errorf("%w: question %s has no multiple_choice options", ErrUnsupportedQuestionType, q.ID)
		}
		if answer == nil || answer.OptionID == "" {
			return false, nil
		}
		return answer.OptionID == o.CorrectAnswer, nil

	case models.TypeMultipleAnswer:
		o := q.Options.MultipleAnswer
		if o == nil {
			return false, fmt.Errorf("%w: question %s has no multiple_answer options", ErrUnsupportedQuestionType, q.ID)
		}
		if answer == nil {
			return false, nil
		}
		return sameSet(answer.OptionIDs, o.CorrectAnswers), nil

	case models.TypeMatching:
		o := q.Options.Matching
		if o == nil {
			return false, fmt.Errorf("%w: question %s has no matching options", ErrUnsupportedQuestionType, q.ID)
		}
		if answer == nil {
			return false, nil
		}
		if len(answer.Matches) != len(o.Pairs) {
			return false, nil
		}
		for _, p := range o.Pairs {
			if answer.Matches[p.Left] != p.Right {
				return false, nil
			}
		}
		return true, nil

	case models.TypeOrdering:
		o := q.Options.Ordering
		if o == nil {
			return false, fmt.Errorf("%w: question %s has no ordering options", ErrUnsupportedQuestionType, q.ID)
		}
		if answer == nil || len(answer.Ordering) != len(o.Items) {
			return false, nil
		}
		for i, item := range o.Items {
			if answer.Ordering[i] != item.ID {
				return false, nil
			}
		}
		return true, nil
	}
	return false, fmt.Errorf("%w: %q on question %s", ErrUnsupportedQuestionType, q.Type, q.ID)
}

// sameSet compares two id slices as sets: order irrelevant, duplicates and
// extras both disqualify.
func sameSet(submitted, correct []string) bool {
	want := make(map[string]bool, len(correct))
	for _, id := range correct {
		want[id] = true
	}
	seen := make(map[string]bool, len(submitted))
	for _, id := range submitted {
		if !want[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return len(seen) == len(want)
}
