package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"timed-quiz-service/internal/domain"
)

const (
	quizzesKey   = "quizzes"
	resultsKey   = "attempt_records"
	resultIDsKey = "attempt_records:ids"
)

// Store persists quizzes in the hash "quizzes" (id -> JSON) and attempt
// records in the list "attempt_records". The set "attempt_records:ids" keeps
// result saves idempotent.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	return s.client.HSet(ctx, quizzesKey, quiz.ID, data).Err()
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	data, err := s.client.HGet(ctx, quizzesKey, quizID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	all, err := s.client.HGetAll(ctx, quizzesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(all))
	for id, raw := range all {
		var quiz domain.Quiz
		if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz %s: %w", id, err)
		}
		out = append(out, quiz)
	}
	domain.SortQuizzes(out)
	return out, nil
}

func (s *Store) DeleteQuiz(ctx context.Context, quizID string) error {
	n, err := s.client.HDel(ctx, quizzesKey, quizID).Result()
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) SaveResult(ctx context.Context, rec domain.AttemptRecord) (domain.AttemptRecord, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("marshal result: %w", err)
	}
	added, err := s.client.SAdd(ctx, resultIDsKey, rec.ID).Result()
	if err != nil {
		return rec, fmt.Errorf("save result: %w", err)
	}
	if added == 0 {
		return rec, nil
	}
	if err := s.client.RPush(ctx, resultsKey, data).Err(); err != nil {
		_ = s.client.SRem(ctx, resultIDsKey, rec.ID).Err()
		return rec, fmt.Errorf("save result: %w", err)
	}
	return rec, nil
}

func (s *Store) ListResults(ctx context.Context, quizID string) ([]domain.AttemptRecord, error) {
	raws, err := s.client.LRange(ctx, resultsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]domain.AttemptRecord, 0, len(raws))
	for _, raw := range raws {
		var rec domain.AttemptRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		if quizID == "" || rec.QuizID == quizID {
			out = append(out, rec)
		}
	}
	return out, nil
}
