package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"timed-quiz-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	source := &countingSource{QuizSource: seededStore(t)}
	repo := NewQuizRepository(source, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if source.loads() != 1 {
		t.Fatalf("expected source once, got %d", source.loads())
	}

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if source.loads() != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.loads())
	}
}

func TestQuizRepositoryExpiresAndInvalidates(t *testing.T) {
	source := &countingSource{QuizSource: seededStore(t)}
	repo := NewQuizRepository(source, time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	ctx := context.Background()
	_, _ = repo.GetQuiz(ctx, "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuiz(ctx, "quiz-1")
	if source.loads() != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", source.loads())
	}

	repo.Invalidate(ctx, "quiz-1")
	_, _ = repo.GetQuiz(ctx, "quiz-1")
	if source.loads() != 3 {
		t.Fatalf("expected reload after invalidate, got %d loads", source.loads())
	}
}

func TestQuizRepositoryDoesNotCacheMisses(t *testing.T) {
	source := &countingSource{QuizSource: NewStore()}
	repo := NewQuizRepository(source, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if source.loads() != 2 {
		t.Fatalf("expected misses to reach the source, got %d", source.loads())
	}
}

func TestQuizRepositoryConcurrentMisses(t *testing.T) {
	source := &countingSource{QuizSource: seededStore(t), delay: 20 * time.Millisecond}
	repo := NewQuizRepository(source, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
				t.Errorf("get quiz: %v", err)
			}
		}()
	}
	wg.Wait()
	if source.loads() != 1 {
		t.Fatalf("expected a single shared load, got %d", source.loads())
	}
}

type countingSource struct {
	QuizSource
	delay time.Duration
	calls atomic.Int32
}

func (s *countingSource) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return s.QuizSource.GetQuiz(ctx, quizID)
}

func (s *countingSource) loads() int { return int(s.calls.Load()) }

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	if err := store.SaveQuiz(context.Background(), sampleQuiz()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:     "q1",
				Prompt: "What is 2 + 2?",
				Body:   &domain.SingleChoice{Options: []string{"3", "4"}, CorrectAnswer: 1},
				Points: 1,
			},
		},
	}
}
