package grading

import (
	"math"

	"chapter-quiz-service/internal/models"
)

// Score evaluates every question in the session's snapshot and aggregates the
// final verdict. Unanswered questions score zero but still count toward the
// total, and the pass threshold comes from the config captured at start time.
func Score(session *models.QuizSession) (*models.SessionResult, error) {
	result := &models.SessionResult{}
	for i := range session.Questions {
		q := &session.Questions[i]
		result.TotalPoints += q.Points

		var answer *models.SubmittedAnswer
		if a, ok := session.Answers[q.ID]; ok {
			answer = &a
		}
		ev, err := Evaluate(q, answer)
		if err != nil {
			return nil, err
		}
		result.Score += ev.PointsAwarded
	}

	if result.TotalPoints > 0 {
		result.Percentage = roundOneDecimal(100 * float64(result.Score) / float64(result.TotalPoints))
		result.Passed = result.Percentage >= float64(session.PassingScorePercentage)
	}
	return result, nil
}

func roundOneDecimal(x float64) float64 {
	return math.Round(x*10) / 10
}
