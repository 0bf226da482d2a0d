package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/logging"
	"timed-quiz-service/internal/metrics"
)

// stepScheduler hands the countdown to the test.
type stepScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (s *stepScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
	return func() {}
}

func (s *stepScheduler) fire(n int) {
	s.mu.Lock()
	fn := s.fns[len(s.fns)-1]
	s.mu.Unlock()
	for i := 0; i < n; i++ {
		fn()
	}
}

type testServer struct {
	*httptest.Server
	service   *app.QuizService
	store     *memory.Store
	registry  *memory.AttemptRegistry
	scheduler *stepScheduler
	metrics   *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	ts := &testServer{
		store:     memory.NewStore(),
		registry:  memory.NewAttemptRegistry(),
		scheduler: &stepScheduler{},
		metrics:   metrics.New(reg),
	}
	ts.service = app.NewQuizService(ts.store, nil, ts.registry,
		app.WithLogger(logging.Discard()),
		app.WithMetrics(ts.metrics),
		app.WithScheduler(ts.scheduler),
	)
	ts.Server = httptest.NewServer(NewRouter(RouterConfig{
		Service:  ts.service,
		Metrics:  ts.metrics,
		Gatherer: reg,
		Logger:   logging.Discard(),
	}))
	t.Cleanup(ts.Close)
	return ts
}

func seedQuiz(t *testing.T, svc *app.QuizService, minutes int) domain.Quiz {
	t.Helper()
	quiz, err := svc.SaveQuiz(context.Background(), domain.Quiz{
		Title:            "Arithmetic",
		TimeLimitMinutes: minutes,
		Questions: []domain.Question{
			{ID: "q1", Prompt: "What is 2 + 2?", Body: &domain.SingleChoice{Options: []string{"3", "4", "5"}, CorrectAnswer: 1}},
			{ID: "q2", Prompt: "7 is prime", Body: &domain.TrueFalse{CorrectAnswer: true}},
		},
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return quiz
}

func dialWS(t *testing.T, ts *testServer, quizID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?quizId=" + quizID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketAttemptFlow(t *testing.T) {
	ts := newTestServer(t)
	quiz := seedQuiz(t, ts.service, 1)
	conn := dialWS(t, ts, quiz.ID)

	_, started := readNext(conn, t, "started")
	if started["state"] != "in_progress" || started["secondsRemaining"] != float64(60) {
		t.Fatalf("unexpected started payload %+v", started)
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"questionId": "q1", "value": 1}})
	_, state := readNext(conn, t, "state")
	answers, _ := state["answers"].(map[string]any)
	if answers["q1"] != float64(1) {
		t.Fatalf("expected q1 answer recorded, got %+v", state)
	}

	send(t, conn, map[string]any{"type": "navigate", "payload": map[string]any{"delta": 1}})
	_, state = readNext(conn, t, "state")
	if state["currentIndex"] != float64(1) {
		t.Fatalf("expected index 1, got %v", state["currentIndex"])
	}

	ts.scheduler.fire(3)
	for i := 0; i < 3; i++ {
		readNext(conn, t, "tick")
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"questionId": "q2", "value": true}})
	readNext(conn, t, "state")
	send(t, conn, map[string]any{"type": "submit"})
	_, completed := readNext(conn, t, "completed")
	record, _ := completed["record"].(map[string]any)
	if record["percentage"] != float64(100) || record["trigger"] != "manual" || record["secondsSpent"] != float64(3) {
		t.Fatalf("unexpected record %+v", record)
	}

	results, _ := ts.service.Results(context.Background(), quiz.ID)
	if len(results) != 1 {
		t.Fatalf("expected one stored result, got %d", len(results))
	}
}

func TestWebSocketTimeout(t *testing.T) {
	ts := newTestServer(t)
	quiz := seedQuiz(t, ts.service, 1)
	conn := dialWS(t, ts, quiz.ID)
	readNext(conn, t, "started")

	go ts.scheduler.fire(60)
	for {
		typ, payload := readNext(conn, t, "")
		if typ == "tick" {
			continue
		}
		if typ != "completed" {
			t.Fatalf("expected completed, got %s", typ)
		}
		record, _ := payload["record"].(map[string]any)
		if record["trigger"] != "timeout" {
			t.Fatalf("expected timeout trigger, got %v", record["trigger"])
		}
		break
	}
}

func TestWebSocketDisconnectAbandonsAttempt(t *testing.T) {
	ts := newTestServer(t)
	quiz := seedQuiz(t, ts.service, 1)
	conn := dialWS(t, ts, quiz.ID)
	readNext(conn, t, "started")
	if ts.registry.Len() != 1 {
		t.Fatalf("expected a live attempt")
	}

	conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for ts.registry.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("attempt still live after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := testutil.ToFloat64(ts.metrics.AttemptsAbandoned); got != 1 {
		t.Fatalf("expected one abandoned attempt, got %v", got)
	}
	results, _ := ts.service.Results(context.Background(), "")
	if len(results) != 0 {
		t.Fatalf("abandoned attempt must not be stored")
	}
}

func TestWebSocketExitAndErrors(t *testing.T) {
	ts := newTestServer(t)
	quiz := seedQuiz(t, ts.service, 0)
	conn := dialWS(t, ts, quiz.ID)
	readNext(conn, t, "started")

	send(t, conn, map[string]any{"type": "shout"})
	readNext(conn, t, "error")
	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"value": 1}})
	readNext(conn, t, "error")

	send(t, conn, map[string]any{"type": "exit"})
	readNext(conn, t, "exited")
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	ts := newTestServer(t)
	conn := dialWS(t, ts, "missing")
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrQuizNotFound.Error() {
		t.Fatalf("unexpected error payload %+v", payload)
	}
}

func TestWebSocketRequiresQuizID(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
