// Package sqlite stores quizzes and attempt records in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"timed-quiz-service/internal/domain"
)

const defaultDSN = "file:quiz.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

type Store struct {
	db *sql.DB
}

// Open opens the database at dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attempt_records (
  id TEXT PRIMARY KEY,
  quiz_id TEXT NOT NULL,
  percentage INTEGER NOT NULL,
  data TEXT NOT NULL,
  completed_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS attempt_records_quiz_idx ON attempt_records(quiz_id, completed_at);
`

func (s *Store) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO quizzes (id, title, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET title=excluded.title, data=excluded.data, updated_at=excluded.updated_at`,
		quiz.ID, quiz.Title, string(data), unixMilli(quiz.CreatedAt), unixMilli(quiz.UpdatedAt))
	return err
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM quizzes WHERE id=?`, quizID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, err
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(data), &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM quizzes ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Quiz
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var quiz domain.Quiz
		if err := json.Unmarshal([]byte(data), &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz: %w", err)
		}
		out = append(out, quiz)
	}
	return out, rows.Err()
}

func (s *Store) DeleteQuiz(ctx context.Context, quizID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=?`, quizID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
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
	_, err = s.db.ExecContext(ctx, `
INSERT INTO attempt_records (id, quiz_id, percentage, data, completed_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`,
		rec.ID, rec.QuizID, rec.Percentage, string(data), unixMilli(rec.CompletedAt))
	return rec, err
}

// ListResults returns records in completion order; rowid breaks ties so
// records completed in the same millisecond keep insertion order.
func (s *Store) ListResults(ctx context.Context, quizID string) ([]domain.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT data FROM attempt_records WHERE (? = '' OR quiz_id = ?) ORDER BY completed_at, rowid`, quizID, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AttemptRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec domain.AttemptRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
