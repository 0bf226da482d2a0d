package app

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/session"
)

// AttemptOption attaches transport callbacks to a new attempt.
type AttemptOption func(*attemptHooks)

type attemptHooks struct {
	onTick     func(int)
	onComplete func(domain.AttemptRecord, error)
	onExit     func()
}

// WithTickHook streams the countdown.
func WithTickHook(fn func(secondsRemaining int)) AttemptOption {
	return func(h *attemptHooks) { h.onTick = fn }
}

// WithCompletionHook is called once the attempt is submitted by any path.
func WithCompletionHook(fn func(rec domain.AttemptRecord, err error)) AttemptOption {
	return func(h *attemptHooks) { h.onComplete = fn }
}

func WithExitHook(fn func()) AttemptOption {
	return func(h *attemptHooks) { h.onExit = fn }
}

// StartAttempt begins a timed attempt at quizID and registers it.
func (s *QuizService) StartAttempt(ctx context.Context, quizID string, opts ...AttemptOption) (*session.Controller, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	var hooks attemptHooks
	for _, o := range opts {
		o(&hooks)
	}

	var ctrl *session.Controller
	ctrl = session.Start(quiz, s.store, session.Options{
		Scheduler:     s.scheduler,
		Scorer:        s.evaluator,
		Clock:         s.now,
		SubmitTimeout: s.submitTimeout,
		OnTick:        hooks.onTick,
		OnComplete: func(rec domain.AttemptRecord, err error) {
			s.attemptCompleted(rec, err)
			if hooks.onComplete != nil {
				hooks.onComplete(rec, err)
			}
		},
		OnExit: func() {
			s.attempts.Delete(ctrl.ID())
			s.metrics.AttemptsAbandoned.Inc()
			s.log.WithFields(logrus.Fields{"attempt_id": ctrl.ID(), "quiz_id": quizID}).Info("attempt abandoned")
			if hooks.onExit != nil {
				hooks.onExit()
			}
		},
	})
	s.attempts.Put(ctrl)
	s.metrics.AttemptsStarted.Inc()
	s.log.WithFields(logrus.Fields{
		"attempt_id":   ctrl.ID(),
		"quiz_id":      quizID,
		"time_limit_s": quiz.TimeLimitSeconds(),
	}).Info("attempt started")
	return ctrl, nil
}

func (s *QuizService) attemptCompleted(rec domain.AttemptRecord, err error) {
	s.attempts.Delete(rec.ID)
	s.metrics.RecordCompletion(rec)
	entry := s.log.WithFields(logrus.Fields{
		"attempt_id": rec.ID,
		"quiz_id":    rec.QuizID,
		"trigger":    rec.Trigger,
		"percentage": rec.Percentage,
	})
	if err != nil {
		entry.WithError(err).Error("attempt completed but was not persisted")
		return
	}
	entry.Info("attempt completed")

	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.submitTimeout)
	defer cancel()
	if err := s.publisher.PublishAttemptCompleted(ctx, rec); err != nil {
		entry.WithError(err).Warn("publish attempt completed failed")
	}
}

// Attempt returns the live controller for attemptID.
func (s *QuizService) Attempt(attemptID string) (*session.Controller, error) {
	ctrl, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return ctrl, nil
}

// Navigate moves the attempt's cursor. Clamping at either end is not an error.
func (s *QuizService) Navigate(attemptID string, delta int) (session.Snapshot, error) {
	ctrl, err := s.Attempt(attemptID)
	if err != nil {
		return session.Snapshot{}, err
	}
	if !ctrl.Navigate(delta) && ctrl.State() != session.StateInProgress {
		return session.Snapshot{}, domain.ErrAttemptClosed
	}
	return ctrl.Snapshot(), nil
}

// RecordAnswer stores value for questionID without validating its shape.
func (s *QuizService) RecordAnswer(attemptID, questionID string, value json.RawMessage) (session.Snapshot, error) {
	ctrl, err := s.Attempt(attemptID)
	if err != nil {
		return session.Snapshot{}, err
	}
	if !ctrl.RecordAnswer(questionID, value) {
		return session.Snapshot{}, domain.ErrAttemptClosed
	}
	return ctrl.Snapshot(), nil
}

// SubmitAttempt submits manually. A store failure still returns the scored
// record alongside the error.
func (s *QuizService) SubmitAttempt(ctx context.Context, attemptID string) (domain.AttemptRecord, error) {
	ctrl, err := s.Attempt(attemptID)
	if err != nil {
		return domain.AttemptRecord{}, err
	}
	rec, submitted, err := ctrl.Submit(ctx)
	if !submitted {
		return domain.AttemptRecord{}, domain.ErrAttemptClosed
	}
	return rec, err
}

// ExitAttempt abandons an in-progress attempt.
func (s *QuizService) ExitAttempt(attemptID string) error {
	ctrl, err := s.Attempt(attemptID)
	if err != nil {
		return err
	}
	if !ctrl.Exit() {
		return domain.ErrAttemptClosed
	}
	return nil
}
