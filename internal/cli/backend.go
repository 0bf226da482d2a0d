package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/infra/postgres"
	"timed-quiz-service/internal/infra/rabbit"
	redisinfra "timed-quiz-service/internal/infra/redis"
	"timed-quiz-service/internal/infra/sqlite"
	"timed-quiz-service/internal/metrics"
	"timed-quiz-service/internal/scoring"
)

// backend is the wired service plus everything that must be closed with it.
type backend struct {
	service *app.QuizService
	store   app.Store
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend chooses the store by storage.driver, puts a Redis or in-process
// cache in front of it and attaches the configured event publishers.
func openBackend(ctx context.Context, cfg config.Config, log logrus.FieldLogger, m *metrics.Metrics) (*backend, error) {
	b := &backend{}
	ok := false
	defer func() {
		if !ok {
			b.Close()
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		b.store = memory.NewStore()
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, sqliteDSN(cfg.SQLite.Path))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.store = store
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.store = postgres.NewStore(pool)
	case config.DriverRedis:
		if redisClient == nil {
			return nil, errors.New("storage driver redis needs redis.addr")
		}
		b.store = redisinfra.NewStore(redisClient)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var (
		quizzes  app.QuizRepository
		attempts app.AttemptRegistry
		pubs     app.Publishers
	)
	if redisClient != nil {
		quizzes = redisinfra.NewQuizRepository(redisClient, b.store, quizTTL, log)
		attempts = redisinfra.NewAttemptRegistry(redisClient, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
		pubs = append(pubs, redisinfra.NewPublisher(redisClient))
	} else {
		quizzes = memory.NewQuizRepository(b.store, quizTTL)
		attempts = memory.NewAttemptRegistry()
	}
	if cfg.RabbitMQ.URL != "" {
		pub, err := rabbit.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = pub.Close() })
		pubs = append(pubs, pub)
	}

	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	opts := []app.Option{
		app.WithLogger(log),
		app.WithMetrics(m),
		app.WithEvaluator(newEvaluator(cfg)),
		app.WithSubmitTimeout(config.TTLDuration(cfg.Quiz.SubmitTimeout, 10*time.Second)),
	}
	if len(pubs) > 0 {
		opts = append(opts, app.WithPublisher(pubs))
	}
	b.service = app.NewQuizService(b.store, quizzes, attempts, opts...)
	ok = true
	return b, nil
}

func newEvaluator(cfg config.Config) *scoring.Evaluator {
	return scoring.NewEvaluator(scoring.WithMultiChoicePolicy(scoring.ParsePolicy(cfg.Scoring.MultiChoicePolicy)))
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	if path == "" {
		path = "quiz.db"
	}
	return "file:" + path + "?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
}
