package memory

import (
	"sync"

	"timed-quiz-service/internal/session"
)

// AttemptRegistry is an in-memory implementation of app.AttemptRegistry.
type AttemptRegistry struct {
	mu       sync.RWMutex
	attempts map[string]*session.Controller
}

func NewAttemptRegistry() *AttemptRegistry {
	return &AttemptRegistry{
		attempts: make(map[string]*session.Controller),
	}
}

func (r *AttemptRegistry) Put(c *session.Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[c.ID()] = c
}

func (r *AttemptRegistry) Get(attemptID string) (*session.Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.attempts[attemptID]
	return c, ok
}

func (r *AttemptRegistry) Delete(attemptID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, attemptID)
}

// Len reports how many attempts are live.
func (r *AttemptRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attempts)
}
