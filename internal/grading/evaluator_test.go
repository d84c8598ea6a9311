package grading

import (
	"errors"
	"testing"

	"chapter-quiz-service/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func trueFalseQuestion(correct bool) *models.Question {
	return &models.Question{
		ID:     "tf1",
		Type:   models.TypeTrueFalse,
		Points: 2,
		Options: models.QuestionOptions{
			TrueFalse: &models.TrueFalseOptions{CorrectAnswer: correct},
		},
	}
}

func multiAnswerQuestion() *models.Question {
	return &models.Question{
		ID:     "ma1",
		Type:   models.TypeMultipleAnswer,
		Points: 3,
		Options: models.QuestionOptions{
			MultipleAnswer: &models.MultipleAnswerOptions{
				Choices:        []models.Option{{ID: "a"}, {ID: "b"}, {ID: "c"}},
				CorrectAnswers: []string{"a", "b"},
			},
		},
	}
}

func TestEvaluateTrueFalse(t *testing.T) {
	q := trueFalseQuestion(true)

	testCases := []struct {
		name        string
		answer      *models.SubmittedAnswer
		wantCorrect bool
	}{
		{"correct", &models.SubmittedAnswer{Selected: boolPtr(true)}, true},
		{"wrong", &models.SubmittedAnswer{Selected: boolPtr(false)}, false},
		{"missing value", &models.SubmittedAnswer{}, false},
		{"unanswered", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Evaluate(q, tc.answer)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ev.Correct != tc.wantCorrect {
				t.Errorf("Expected correct=%v, got %v", tc.wantCorrect, ev.Correct)
			}
			wantPoints := 0
			if tc.wantCorrect {
				wantPoints = q.Points
			}
			if ev.PointsAwarded != wantPoints {
				t.Errorf("Expected %d points, got %d", wantPoints, ev.PointsAwarded)
			}
		})
	}
}

func TestEvaluateMultipleChoice(t *testing.T) {
	q := &models.Question{
		ID:     "mc1",
		Type:   models.TypeMultipleChoice,
		Points: 1,
		Options: models.QuestionOptions{
			MultipleChoice: &models.MultipleChoiceOptions{
				Choices:       []models.Option{{ID: "a"}, {ID: "b"}},
				CorrectAnswer: "b",
			},
		},
	}

	ev, err := Evaluate(q, &models.SubmittedAnswer{OptionID: "b"})
	if err != nil || !ev.Correct || ev.PointsAwarded != 1 {
		t.Errorf("Expected full credit for correct option, got %+v, %v", ev, err)
	}
	ev, err = Evaluate(q, &models.SubmittedAnswer{OptionID: "a"})
	if err != nil || ev.Correct || ev.PointsAwarded != 0 {
		t.Errorf("Expected zero for wrong option, got %+v, %v", ev, err)
	}
}

func TestEvaluateMultipleAnswerSetSemantics(t *testing.T) {
	q := multiAnswerQuestion()

	testCases := []struct {
		name        string
		ids         []string
		wantCorrect bool
	}{
		{"exact", []string{"a", "b"}, true},
		{"order independent", []string{"b", "a"}, true},
		{"omission", []string{"a"}, false},
		{"extra", []string{"a", "b", "c"}, false},
		{"duplicates", []string{"a", "a"}, false},
		{"empty", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Evaluate(q, &models.SubmittedAnswer{OptionIDs: tc.ids})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ev.Correct != tc.wantCorrect {
				t.Errorf("Expected correct=%v for %v, got %v", tc.wantCorrect, tc.ids, ev.Correct)
			}
		})
	}
}

func TestEvaluateMatchingAllOrNothing(t *testing.T) {
	q := &models.Question{
		ID:     "m1",
		Type:   models.TypeMatching,
		Points: 4,
		Options: models.QuestionOptions{
			Matching: &models.MatchingOptions{Pairs: []models.MatchPair{
				{Left: "cat", Right: "meow"},
				{Left: "dog", Right: "woof"},
			}},
		},
	}

	ev, err := Evaluate(q, &models.SubmittedAnswer{Matches: map[string]string{"cat": "meow", "dog": "woof"}})
	if err != nil || !ev.Correct || ev.PointsAwarded != 4 {
		t.Errorf("Expected full credit for all pairs matched, got %+v, %v", ev, err)
	}

	// One pair right earns nothing: no partial credit.
	ev, err = Evaluate(q, &models.SubmittedAnswer{Matches: map[string]string{"cat": "meow", "dog": "meow"}})
	if err != nil || ev.Correct || ev.PointsAwarded != 0 {
		t.Errorf("Expected zero for a partial match, got %+v, %v", ev, err)
	}

	ev, err = Evaluate(q, &models.SubmittedAnswer{Matches: map[string]string{"cat": "meow"}})
	if err != nil || ev.Correct {
		t.Errorf("Expected incomplete mapping to be incorrect, got %+v, %v", ev, err)
	}
}

func TestEvaluateOrdering(t *testing.T) {
	q := &models.Question{
		ID:     "o1",
		Type:   models.TypeOrdering,
		Points: 2,
		Options: models.QuestionOptions{
			Ordering: &models.OrderingOptions{Items: []models.Option{
				{ID: "first"}, {ID: "second"}, {ID: "third"},
			}},
		},
	}

	ev, err := Evaluate(q, &models.SubmittedAnswer{Ordering: []string{"first", "second", "third"}})
	if err != nil || !ev.Correct {
		t.Errorf("Expected canonical order to be correct, got %+v, %v", ev, err)
	}
	ev, err = Evaluate(q, &models.SubmittedAnswer{Ordering: []string{"second", "first", "third"}})
	if err != nil || ev.Correct {
		t.Errorf("Expected swapped order to be incorrect, got %+v, %v", ev, err)
	}
	ev, err = Evaluate(q, &models.SubmittedAnswer{Ordering: []string{"first", "second"}})
	if err != nil || ev.Correct {
		t.Errorf("Expected short sequence to be incorrect, got %+v, %v", ev, err)
	}
}

func TestEvaluateUnsupportedType(t *testing.T) {
	q := &models.Question{ID: "x1", Type: "ESSAY", Points: 1}

	_, err := Evaluate(q, nil)
	if !errors.Is(err, ErrUnsupportedQuestionType) {
		t.Fatalf("Expected ErrUnsupportedQuestionType, got %v", err)
	}
}

func TestEvaluateMissingOptionsVariant(t *testing.T) {
	// Declared MATCHING but carrying no matching payload: schema mismatch,
	// must error rather than quietly score zero.
	q := &models.Question{ID: "m2", Type: models.TypeMatching, Points: 1}

	_, err := Evaluate(q, &models.SubmittedAnswer{Matches: map[string]string{"a": "b"}})
	if !errors.Is(err, ErrUnsupportedQuestionType) {
		t.Fatalf("Expected ErrUnsupportedQuestionType, got %v", err)
	}
}
