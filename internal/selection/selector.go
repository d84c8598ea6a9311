package selection

import (
	"context"
	"math"
	"math/rand"

	"chapter-quiz-service/internal/models"
)

// Selector builds the question set for a new attempt: target counts per
// difficulty from the config's percentage split, uniform draws without
// replacement, and a shortfall cascade when a pool runs dry.
type Selector struct {
	source QuestionSource
}

func NewSelector(source QuestionSource) *Selector {
	return &Selector{source: source}
}

// Select draws config.QuestionsPerQuiz questions for the chapter. Each call
// draws fresh; selection is intentionally not repeatable.
func (s *Selector) Select(ctx context.Context, chapterID string, config *models.QuizConfig) (*Result, error) {
	pools := make(map[models.Difficulty][]models.Question, len(models.Difficulties))
	for _, d := range models.Difficulties {
		pool, err := s.source.FindActiveByChapter(ctx, chapterID, d)
		if err != nil {
			return nil, err
		}
		pools[d] = pool
	}

	targets := targetCounts(config)

	// First pass: draw up to the target from each difficulty's own pool.
	picked := make(map[models.Difficulty][]models.Question, len(models.Difficulties))
	total := 0
	for _, d := range models.Difficulties {
		take := targets[d]
		if take > len(pools[d]) {
			take = len(pools[d])
		}
		picked[d], pools[d] = draw(pools[d], take)
		total += take
	}

	// Cascade: a short bucket refills from the next-larger difficulty with
	// remaining supply, falling back to smaller ones only once the larger
	// pools are drained.
	for di, d := range models.Difficulties {
		deficit := targets[d] - len(picked[d])
		for _, si := range cascadeSources(di) {
			if deficit == 0 {
				break
			}
			src := models.Difficulties[si]
			take := deficit
			if take > len(pools[src]) {
				take = len(pools[src])
			}
			var extra []models.Question
			extra, pools[src] = draw(pools[src], take)
			picked[src] = append(picked[src], extra...)
			total += take
			deficit -= take
		}
	}

	questions := make([]models.Question, 0, total)
	for _, d := range models.Difficulties {
		questions = append(questions, picked[d]...)
	}

	if config.ShuffleQuestions {
		rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}
	if config.ShuffleOptions {
		for i := range questions {
			shuffleChoices(&questions[i])
		}
	}

	return &Result{
		Questions:   questions,
		Underfilled: total < config.QuestionsPerQuiz,
	}, nil
}

// cascadeSources lists the buckets a shortfall at index i draws from: the
// larger difficulties in ascending order, then the smaller ones nearest first.
func cascadeSources(i int) []int {
	order := make([]int, 0, len(models.Difficulties)-1)
	for j := i + 1; j < len(models.Difficulties); j++ {
		order = append(order, j)
	}
	for j := i - 1; j >= 0; j-- {
		order = append(order, j)
	}
	return order
}

// targetCounts rounds each difficulty's share and settles the rounding
// remainder on the largest bucket so the three counts sum exactly.
func targetCounts(config *models.QuizConfig) map[models.Difficulty]int {
	counts := make(map[models.Difficulty]int, len(models.Difficulties))
	allocated := 0
	largest := models.Difficulties[0]
	for _, d := range models.Difficulties {
		pct := config.PctFor(d)
		counts[d] = int(math.Round(float64(config.QuestionsPerQuiz) * float64(pct) / 100))
		allocated += counts[d]
		if pct > config.PctFor(largest) {
			largest = d
		}
	}
	counts[largest] += config.QuestionsPerQuiz - allocated
	return counts
}

// draw takes count questions uniformly without replacement, returning the
// drawn questions and the remaining pool. The top-level rand functions are
// safe for concurrent selectors.
func draw(pool []models.Question, count int) ([]models.Question, []models.Question) {
	if count >= len(pool) {
		return pool, nil
	}
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:count], pool[count:]
}

// shuffleChoices randomizes choice order for choice-based questions. The
// shuffled order is what gets snapshotted, so one attempt renders stably.
func shuffleChoices(q *models.Question) {
	switch q.Type {
	case models.TypeMultipleChoice:
		if o := q.Options.MultipleChoice; o != nil {
			shuffled := make([]models.Option, len(o.Choices))
			copy(shuffled, o.Choices)
			rand.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			q.Options.MultipleChoice = &models.MultipleChoiceOptions{
				Choices:       shuffled,
				CorrectAnswer: o.CorrectAnswer,
			}
		}
	case models.TypeMultipleAnswer:
		if o := q.Options.MultipleAnswer; o != nil {
			shuffled := make([]models.Option, len(o.Choices))
			copy(shuffled, o.Choices)
			rand.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			q.Options.MultipleAnswer = &models.MultipleAnswerOptions{
				Choices:        shuffled,
				CorrectAnswers: o.CorrectAnswers,
			}
		}
	}
}
