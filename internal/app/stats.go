package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"timed-quiz-service/internal/domain"
)

const recentAttempts = 5

var scoreBands = []domain.ScoreBand{
	{Label: "90-100", Min: 90, Max: 100},
	{Label: "80-89", Min: 80, Max: 89},
	{Label: "70-79", Min: 70, Max: 79},
	{Label: "60-69", Min: 60, Max: 69},
	{Label: "below-60", Min: 0, Max: 59},
}

// Results lists stored attempts, all of them when quizID is empty.
func (s *QuizService) Results(ctx context.Context, quizID string) ([]domain.AttemptRecord, error) {
	return s.store.ListResults(ctx, quizID)
}

// QuizStats aggregates the attempts of quizID, or of every quiz when quizID is empty.
func (s *QuizService) QuizStats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	if quizID != "" {
		if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
			return domain.QuizStats{}, err
		}
	}
	results, err := s.store.ListResults(ctx, quizID)
	if err != nil {
		return domain.QuizStats{}, fmt.Errorf("list results: %w", err)
	}
	stats := Summarize(results)
	stats.QuizID = quizID
	return stats, nil
}

// Summarize computes count, one-decimal average, extremes and score bands.
func Summarize(results []domain.AttemptRecord) domain.QuizStats {
	stats := domain.QuizStats{Bands: make([]domain.ScoreBand, len(scoreBands))}
	copy(stats.Bands, scoreBands)
	if len(results) == 0 {
		return stats
	}

	stats.Attempts = len(results)
	stats.Lowest = results[0].Percentage
	for _, r := range results {
		if r.Percentage > stats.Highest {
			stats.Highest = r.Percentage
		}
		if r.Percentage < stats.Lowest {
			stats.Lowest = r.Percentage
		}
		if r.Passed {
			stats.Passed++
		}
		for i := range stats.Bands {
			if r.Percentage >= stats.Bands[i].Min && r.Percentage <= stats.Bands[i].Max {
				stats.Bands[i].Count++
				break
			}
		}
	}
	stats.Average = averagePercentage(results)
	return stats
}

func averagePercentage(results []domain.AttemptRecord) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(decimal.NewFromInt(int64(r.Percentage)))
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(len(results)))).Round(1).Float64()
	return avg
}

// Dashboard summarises every quiz and the most recent attempts.
func (s *QuizService) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	quizzes, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("list quizzes: %w", err)
	}
	results, err := s.store.ListResults(ctx, "")
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("list results: %w", err)
	}

	dash := domain.Dashboard{
		TotalQuizzes: len(quizzes),
		AverageScore: averagePercentage(results),
		Recent:       mostRecent(results, recentAttempts),
	}
	for _, q := range quizzes {
		dash.TotalQuestions += len(q.Questions)
	}
	return dash, nil
}

func mostRecent(results []domain.AttemptRecord, n int) []domain.AttemptRecord {
	sorted := make([]domain.AttemptRecord, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Export returns every quiz and result.
func (s *QuizService) Export(ctx context.Context) (domain.Snapshot, error) {
	quizzes, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list quizzes: %w", err)
	}
	results, err := s.store.ListResults(ctx, "")
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list results: %w", err)
	}
	return domain.Snapshot{Quizzes: quizzes, Results: results}, nil
}

// ImportSummary reports what an Import wrote.
type ImportSummary struct {
	Quizzes int `json:"quizzes"`
	Results int `json:"results"`
}

// Import stores a snapshot. Quizzes keep their ids and timestamps and are
// validated first; nothing is written if any quiz is invalid. Results already
// present are skipped by the store.
func (s *QuizService) Import(ctx context.Context, snap domain.Snapshot) (ImportSummary, error) {
	for _, q := range snap.Quizzes {
		if err := s.validator.Quiz(q); err != nil {
			return ImportSummary{}, fmt.Errorf("quiz %s: %w", q.ID, err)
		}
	}

	var sum ImportSummary
	now := s.now().UTC()
	for _, q := range snap.Quizzes {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		if q.UpdatedAt.IsZero() {
			q.UpdatedAt = q.CreatedAt
		}
		if err := s.store.SaveQuiz(ctx, q); err != nil {
			return sum, fmt.Errorf("save quiz %s: %w", q.ID, err)
		}
		s.quizzes.Invalidate(ctx, q.ID)
		sum.Quizzes++
	}
	for _, r := range snap.Results {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := s.store.SaveResult(ctx, r); err != nil {
			return sum, fmt.Errorf("save result %s: %w", r.ID, err)
		}
		sum.Results++
	}
	s.log.WithField("quizzes", sum.Quizzes).WithField("results", sum.Results).Info("snapshot imported")
	return sum, nil
}
