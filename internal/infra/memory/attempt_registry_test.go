package memory

import (
	"testing"

	"timed-quiz-service/internal/session"
)

func TestAttemptRegistryLifecycle(t *testing.T) {
	registry := NewAttemptRegistry()

	ctrl := session.Start(sampleQuiz(), nil, session.Options{ID: "attempt-1"})
	defer ctrl.Exit()

	registry.Put(ctrl)
	got, ok := registry.Get("attempt-1")
	if !ok || got != ctrl {
		t.Fatalf("expected attempt present")
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one live attempt, got %d", registry.Len())
	}

	registry.Delete("attempt-1")
	if _, ok := registry.Get("attempt-1"); ok {
		t.Fatalf("expected attempt removed")
	}
}
