package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"timed-quiz-service/internal/session"
)

// AttemptRegistry is a Redis-aware implementation of app.AttemptRegistry.
// Notes:
//   - Controllers own a live timer, so they stay in a local map; only this
//     process can drive them.
//   - Redis holds a liveness marker per attempt (quiz:attempt:{id} -> quiz id)
//     so operators and other instances can see which attempts are running.
type AttemptRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*session.Controller
}

func NewAttemptRegistry(client *redis.Client, ttl time.Duration) *AttemptRegistry {
	return &AttemptRegistry{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*session.Controller),
	}
}

func (r *AttemptRegistry) Put(c *session.Controller) {
	r.mu.Lock()
	r.attempts[c.ID()] = c
	r.mu.Unlock()
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), attemptKey(c.ID()), c.Quiz().ID, r.markerTTL(c)).Err()
}

func (r *AttemptRegistry) Get(attemptID string) (*session.Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.attempts[attemptID]
	return c, ok
}

func (r *AttemptRegistry) Delete(attemptID string) {
	r.mu.Lock()
	_, ok := r.attempts[attemptID]
	delete(r.attempts, attemptID)
	r.mu.Unlock()
	if ok {
		_ = r.client.Del(context.Background(), attemptKey(attemptID)).Err()
	}
}

// markerTTL outlives the attempt's own time limit.
func (r *AttemptRegistry) markerTTL(c *session.Controller) time.Duration {
	limit := time.Duration(c.Quiz().TimeLimitSeconds()) * time.Second
	if limit > 0 && limit+time.Minute > r.ttl {
		return limit + time.Minute
	}
	return r.ttl
}

func attemptKey(attemptID string) string {
	return "quiz:attempt:" + attemptID
}
