// Package session drives a single timed attempt at a quiz.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/scoring"
)

// State is the lifecycle position of an attempt.
type State string

const (
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateAbandoned  State = "abandoned"
)

// ResultSink persists completed attempts.
type ResultSink interface {
	SaveResult(ctx context.Context, rec domain.AttemptRecord) (domain.AttemptRecord, error)
}

// Scorer evaluates a full answer set; *scoring.Evaluator satisfies it.
type Scorer interface {
	Evaluate(quiz domain.Quiz, answers domain.Answers) domain.ScoreResult
}

// Options tune a controller. The zero value is usable.
type Options struct {
	// ID of the attempt; a UUID is generated when empty.
	ID        string
	Scheduler Scheduler
	Scorer    Scorer
	Clock     func() time.Time
	// SubmitTimeout bounds persistence on the timeout path, which has no caller context.
	SubmitTimeout time.Duration
	// OnTick is called after every countdown tick with the seconds remaining.
	OnTick func(secondsRemaining int)
	// OnComplete is called once when the attempt is submitted, whichever path submitted it.
	OnComplete func(rec domain.AttemptRecord, err error)
	// OnExit is called once when the attempt is abandoned.
	OnExit func()
}

// Controller owns the answer map and countdown of one attempt. All methods are
// safe to call from multiple goroutines; calls that are invalid in the current
// state are no-ops.
type Controller struct {
	id        string
	quiz      domain.Quiz
	sink      ResultSink
	scorer    Scorer
	now       func() time.Time
	timeout   time.Duration
	onTick    func(int)
	onDone    func(domain.AttemptRecord, error)
	onExit    func()
	startedAt time.Time
	limit     int
	done      chan struct{}

	mu        sync.Mutex
	state     State
	index     int
	answers   domain.Answers
	remaining int
	cancel    func()
	record    domain.AttemptRecord
}

// Start begins an attempt at quiz. Timed quizzes start counting down at once.
func Start(quiz domain.Quiz, sink ResultSink, opts Options) *Controller {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Scorer == nil {
		opts.Scorer = scoring.NewEvaluator()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 10 * time.Second
	}

	c := &Controller{
		id:        opts.ID,
		quiz:      quiz,
		sink:      sink,
		scorer:    opts.Scorer,
		now:       opts.Clock,
		timeout:   opts.SubmitTimeout,
		onTick:    opts.OnTick,
		onDone:    opts.OnComplete,
		onExit:    opts.OnExit,
		startedAt: opts.Clock(),
		limit:     quiz.TimeLimitSeconds(),
		done:      make(chan struct{}),
		state:     StateInProgress,
		answers:   domain.Answers{},
	}
	c.remaining = c.limit

	if c.limit > 0 {
		c.mu.Lock()
		c.cancel = opts.Scheduler.Every(time.Second, c.tick)
		c.mu.Unlock()
	}
	return c
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Quiz() domain.Quiz { return c.quiz }

func (c *Controller) StartedAt() time.Time { return c.startedAt }

// Done is closed once the attempt is completed or abandoned.
func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// CurrentQuestion returns the question at the current index, if any.
func (c *Controller) CurrentQuestion() (domain.Question, bool) {
	idx := c.CurrentIndex()
	if idx >= len(c.quiz.Questions) {
		return domain.Question{}, false
	}
	return c.quiz.Questions[idx], true
}

func (c *Controller) SecondsRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Answers returns a copy of the captured answers.
func (c *Controller) Answers() domain.Answers {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers.Clone()
}

// Record returns the attempt record once the attempt has completed.
func (c *Controller) Record() (domain.AttemptRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record, c.state == StateCompleted
}

// Snapshot is a read-only view of the attempt for transports.
type Snapshot struct {
	ID               string                `json:"id"`
	QuizID           string                `json:"quizId"`
	State            State                 `json:"state"`
	CurrentIndex     int                   `json:"currentIndex"`
	QuestionCount    int                   `json:"questionCount"`
	SecondsRemaining int                   `json:"secondsRemaining"`
	Answers          domain.Answers        `json:"answers"`
	Record           *domain.AttemptRecord `json:"record,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		ID:               c.id,
		QuizID:           c.quiz.ID,
		State:            c.state,
		CurrentIndex:     c.index,
		QuestionCount:    len(c.quiz.Questions),
		SecondsRemaining: c.remaining,
		Answers:          c.answers.Clone(),
	}
	if c.state == StateCompleted {
		rec := c.record
		s.Record = &rec
	}
	return s
}

// Navigate moves the current index by delta, clamped to the question range.
func (c *Controller) Navigate(delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return false
	}
	last := len(c.quiz.Questions) - 1
	next := c.index + delta
	if next > last {
		next = last
	}
	if next < 0 {
		next = 0
	}
	moved := next != c.index
	c.index = next
	return moved
}

// RecordAnswer replaces the answer for questionID. The value is not validated.
func (c *Controller) RecordAnswer(questionID string, value json.RawMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return false
	}
	c.answers = c.answers.With(questionID, value)
	return true
}

// Submit scores and persists the attempt. Only the first call while in
// progress does anything; later calls return submitted=false. If persistence
// fails the attempt still completes and the scored record is returned with
// the error.
func (c *Controller) Submit(ctx context.Context) (rec domain.AttemptRecord, submitted bool, err error) {
	return c.submit(ctx, domain.TriggerManual)
}

// Exit abandons the attempt without persisting anything.
func (c *Controller) Exit() bool {
	c.mu.Lock()
	if c.state != StateInProgress {
		c.mu.Unlock()
		return false
	}
	c.state = StateAbandoned
	c.stopTimerLocked()
	c.mu.Unlock()

	close(c.done)
	if c.onExit != nil {
		c.onExit()
	}
	return true
}

func (c *Controller) tick() {
	c.mu.Lock()
	if c.state != StateInProgress {
		c.mu.Unlock()
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(remaining)
	}
	if remaining == 0 {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		_, _, _ = c.submit(ctx, domain.TriggerTimeout)
	}
}

func (c *Controller) submit(ctx context.Context, trigger domain.SubmitTrigger) (domain.AttemptRecord, bool, error) {
	c.mu.Lock()
	if c.state != StateInProgress {
		c.mu.Unlock()
		return domain.AttemptRecord{}, false, nil
	}
	c.state = StateSubmitting
	c.stopTimerLocked()
	answers := c.answers
	spent := c.limit - c.remaining
	if c.limit == 0 {
		spent = int(c.now().Sub(c.startedAt).Seconds())
	}
	c.mu.Unlock()

	score := c.scorer.Evaluate(c.quiz, answers)
	rec := domain.AttemptRecord{
		ID:             c.id,
		QuizID:         c.quiz.ID,
		QuizTitle:      c.quiz.Title,
		Answers:        answers,
		Percentage:     score.Percentage,
		EarnedPoints:   score.EarnedPoints,
		PossiblePoints: score.PossiblePoints,
		TotalQuestions: len(c.quiz.Questions),
		SecondsSpent:   spent,
		Passed:         score.Percentage >= c.quiz.EffectivePassingScore(),
		Trigger:        trigger,
		CompletedAt:    c.now(),
	}

	var err error
	if c.sink != nil {
		var saved domain.AttemptRecord
		saved, err = c.sink.SaveResult(ctx, rec)
		if err != nil {
			err = fmt.Errorf("save attempt %s: %w", c.id, err)
		} else {
			rec = saved
		}
	}

	c.mu.Lock()
	c.state = StateCompleted
	c.record = rec
	c.mu.Unlock()

	close(c.done)
	if c.onDone != nil {
		c.onDone(rec, err)
	}
	return rec, true, err
}

func (c *Controller) stopTimerLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
