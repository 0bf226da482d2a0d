package domain

import "time"

// QuestionScore is the per-question breakdown of a ScoreResult.
type QuestionScore struct {
	QuestionID string  `json:"questionId"`
	Kind       Kind    `json:"kind"`
	Earned     float64 `json:"earned"`
	Possible   float64 `json:"possible"`
}

// ScoreResult is the outcome of evaluating a full set of answers.
type ScoreResult struct {
	Percentage     int             `json:"percentage"`
	EarnedPoints   float64         `json:"earnedPoints"`
	PossiblePoints float64         `json:"possiblePoints"`
	Questions      []QuestionScore `json:"questions,omitempty"`
}

// SubmitTrigger records what ended an attempt.
type SubmitTrigger string

const (
	TriggerManual  SubmitTrigger = "manual"
	TriggerTimeout SubmitTrigger = "timeout"
)

// AttemptRecord is the persisted outcome of one completed attempt.
type AttemptRecord struct {
	ID             string        `json:"id"`
	QuizID         string        `json:"quizId"`
	QuizTitle      string        `json:"quizTitle"`
	Answers        Answers       `json:"answers"`
	Percentage     int           `json:"percentage"`
	EarnedPoints   float64       `json:"earnedPoints"`
	PossiblePoints float64       `json:"possiblePoints"`
	TotalQuestions int           `json:"totalQuestions"`
	SecondsSpent   int           `json:"secondsSpent"`
	Passed         bool          `json:"passed"`
	Trigger        SubmitTrigger `json:"trigger"`
	CompletedAt    time.Time     `json:"completedAt"`
}

// ScoreBand counts attempts whose percentage falls in [Min, Max].
type ScoreBand struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// QuizStats aggregates the attempts of a single quiz (or all quizzes when QuizID is empty).
type QuizStats struct {
	QuizID   string      `json:"quizId,omitempty"`
	Attempts int         `json:"attempts"`
	Average  float64     `json:"average"`
	Highest  int         `json:"highest"`
	Lowest   int         `json:"lowest"`
	Passed   int         `json:"passed"`
	Bands    []ScoreBand `json:"bands"`
}

// Dashboard is the overview shown on the landing page.
type Dashboard struct {
	TotalQuizzes   int             `json:"totalQuizzes"`
	TotalQuestions int             `json:"totalQuestions"`
	AverageScore   float64         `json:"averageScore"`
	Recent         []AttemptRecord `json:"recent"`
}

// Snapshot is the export/import document.
type Snapshot struct {
	Quizzes []Quiz          `json:"quizzes"`
	Results []AttemptRecord `json:"results"`
}
