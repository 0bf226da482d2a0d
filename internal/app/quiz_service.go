package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/metrics"
	"timed-quiz-service/internal/scoring"
	"timed-quiz-service/internal/session"
)

// QuizStore persists quiz definitions. SaveQuiz is an upsert keyed by id.
type QuizStore interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string) error
}

// ResultStore is the append-only log of completed attempts. Saving a record
// whose id is already stored is a no-op. ListResults with an empty quizID
// returns every record.
type ResultStore interface {
	SaveResult(ctx context.Context, rec domain.AttemptRecord) (domain.AttemptRecord, error)
	ListResults(ctx context.Context, quizID string) ([]domain.AttemptRecord, error)
}

// Store is the full persistence collaborator (memory, SQLite, Postgres, Redis).
type Store interface {
	QuizStore
	ResultStore
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID string)
}

// AttemptRegistry tracks live attempt controllers by attempt id.
type AttemptRegistry interface {
	Put(c *session.Controller)
	Get(attemptID string) (*session.Controller, bool)
	Delete(attemptID string)
}

// EventPublisher announces completed attempts to other systems.
type EventPublisher interface {
	PublishAttemptCompleted(ctx context.Context, rec domain.AttemptRecord) error
}

// Publishers fans an event out to every publisher and joins their errors.
type Publishers []EventPublisher

func (ps Publishers) PublishAttemptCompleted(ctx context.Context, rec domain.AttemptRecord) error {
	var errs []error
	for _, p := range ps {
		if err := p.PublishAttemptCompleted(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Option configures a QuizService.
type Option func(*QuizService)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *QuizService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *QuizService) { s.metrics = m }
}

func WithEvaluator(e *scoring.Evaluator) Option {
	return func(s *QuizService) { s.evaluator = e }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *QuizService) { s.publisher = p }
}

// WithScheduler replaces the per-attempt ticker; tests use it to drive time.
func WithScheduler(sch session.Scheduler) Option {
	return func(s *QuizService) { s.scheduler = sch }
}

func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithSubmitTimeout bounds persistence and publishing for timed-out attempts.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *QuizService) { s.submitTimeout = d }
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	store         Store
	quizzes       QuizRepository
	attempts      AttemptRegistry
	validator     *domain.Validator
	evaluator     *scoring.Evaluator
	publisher     EventPublisher
	scheduler     session.Scheduler
	metrics       *metrics.Metrics
	log           logrus.FieldLogger
	now           func() time.Time
	submitTimeout time.Duration
}

// NewQuizService wires the use cases. quizzes may be nil, in which case
// reads go straight to the store.
func NewQuizService(store Store, quizzes QuizRepository, attempts AttemptRegistry, opts ...Option) *QuizService {
	s := &QuizService{
		store:         store,
		quizzes:       quizzes,
		attempts:      attempts,
		validator:     domain.NewValidator(),
		evaluator:     scoring.NewEvaluator(),
		log:           logrus.StandardLogger(),
		now:           time.Now,
		submitTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	if s.quizzes == nil {
		s.quizzes = uncachedQuizzes{store: store}
	}
	if s.metrics == nil {
		s.metrics = metrics.New(prometheus.NewRegistry())
	}
	return s
}

// SaveQuiz validates and stores quiz, assigning ids and timestamps where
// missing. Saving an existing id keeps its creation time.
func (s *QuizService) SaveQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	now := s.now().UTC()
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	} else if existing, err := s.store.GetQuiz(ctx, quiz.ID); err == nil {
		quiz.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, domain.ErrQuizNotFound) {
		return domain.Quiz{}, fmt.Errorf("load quiz %s: %w", quiz.ID, err)
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now
	if quiz.PassingScore == 0 {
		quiz.PassingScore = domain.DefaultPassingScore
	}

	questions := make([]domain.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
	}
	quiz.Questions = questions

	if err := s.validator.Quiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("save quiz %s: %w", quiz.ID, err)
	}
	s.quizzes.Invalidate(ctx, quiz.ID)
	s.metrics.QuizzesSaved.Inc()
	s.log.WithFields(logrus.Fields{"quiz_id": quiz.ID, "questions": len(quiz.Questions)}).Info("quiz saved")
	return quiz, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.store.ListQuizzes(ctx)
}

// DeleteQuiz removes the definition. Past results are kept.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID string) error {
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.quizzes.Invalidate(ctx, quizID)
	s.log.WithField("quiz_id", quizID).Info("quiz deleted")
	return nil
}

// Evaluate scores an answer set against a stored quiz without starting an attempt.
func (s *QuizService) Evaluate(ctx context.Context, quizID string, answers domain.Answers) (domain.ScoreResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return s.evaluator.Evaluate(quiz, answers), nil
}

// uncachedQuizzes adapts a store when no cache is configured.
type uncachedQuizzes struct {
	store QuizStore
}

func (u uncachedQuizzes) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return u.store.GetQuiz(ctx, quizID)
}

func (uncachedQuizzes) Invalidate(context.Context, string) {}
