package memory

import (
	"context"
	"sync"

	"timed-quiz-service/internal/domain"
)

// Store keeps quizzes and attempt records in process memory.
type Store struct {
	mu        sync.RWMutex
	quizzes   map[string]domain.Quiz
	results   []domain.AttemptRecord
	resultIDs map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		quizzes:   make(map[string]domain.Quiz),
		resultIDs: make(map[string]struct{}),
	}
}

func (s *Store) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	questions := make([]domain.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	quiz.Questions = questions

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		out = append(out, q)
	}
	s.mu.RUnlock()
	domain.SortQuizzes(out)
	return out, nil
}

func (s *Store) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	return nil
}

func (s *Store) SaveResult(_ context.Context, rec domain.AttemptRecord) (domain.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.resultIDs[rec.ID]; dup {
		return rec, nil
	}
	rec.Answers = rec.Answers.Clone()
	s.resultIDs[rec.ID] = struct{}{}
	s.results = append(s.results, rec)
	return rec, nil
}

// ListResults returns records in insertion order.
func (s *Store) ListResults(_ context.Context, quizID string) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttemptRecord, 0, len(s.results))
	for _, r := range s.results {
		if quizID == "" || r.QuizID == quizID {
			out = append(out, r)
		}
	}
	return out, nil
}
