// Package metrics holds the Prometheus collectors for the quiz service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"timed-quiz-service/internal/domain"
)

const namespace = "quiz"

// Metrics groups every collector the service records.
type Metrics struct {
	AttemptsStarted   prometheus.Counter
	AttemptsCompleted *prometheus.CounterVec
	AttemptsAbandoned prometheus.Counter
	ScorePercentage   prometheus.Histogram
	QuizzesSaved      prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AttemptsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_started_total",
			Help:      "Attempts started.",
		}),
		AttemptsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_completed_total",
			Help:      "Attempts submitted, by what submitted them.",
		}, []string{"trigger"}),
		AttemptsAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_abandoned_total",
			Help:      "Attempts exited without submitting.",
		}),
		ScorePercentage: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_percentage",
			Help:      "Percentage of submitted attempts.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		QuizzesSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_saved_total",
			Help:      "Quiz definitions created or updated.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// RecordCompletion counts a submitted attempt and observes its score.
func (m *Metrics) RecordCompletion(rec domain.AttemptRecord) {
	m.AttemptsCompleted.WithLabelValues(string(rec.Trigger)).Inc()
	m.ScorePercentage.Observe(float64(rec.Percentage))
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
