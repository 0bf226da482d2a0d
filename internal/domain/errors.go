package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz is returned when a quiz definition fails validation.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrUnknownKind is returned when decoding a question of an unsupported kind.
	ErrUnknownKind = errors.New("unknown question kind")
	// ErrAttemptNotFound is returned when no live attempt has the given id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptClosed is returned when acting on an attempt that is no longer in progress.
	ErrAttemptClosed = errors.New("attempt is not in progress")
)
