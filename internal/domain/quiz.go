package domain

import (
	"sort"
	"time"
)

// DefaultPassingScore applies when a quiz does not declare one.
const DefaultPassingScore = 60

// Quiz is a titled, optionally timed collection of questions.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title" validate:"required"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category,omitempty"`
	Difficulty       Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=Easy Medium Hard"`
	TimeLimitMinutes int        `json:"timeLimitMinutes" validate:"gte=0"`
	PassingScore     int        `json:"passingScore" validate:"gte=0,lte=100"`
	Questions        []Question `json:"questions" validate:"min=1"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// TotalPoints sums the effective points of every question.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.EffectivePoints()
	}
	return total
}

// TimeLimitSeconds is zero for untimed quizzes.
func (q Quiz) TimeLimitSeconds() int {
	if q.TimeLimitMinutes <= 0 {
		return 0
	}
	return q.TimeLimitMinutes * 60
}

// EffectivePassingScore returns PassingScore or DefaultPassingScore when unset.
func (q Quiz) EffectivePassingScore() int {
	if q.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return q.PassingScore
}

// Question looks up a question by id.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// SortQuizzes orders quizzes by creation time, then id.
func SortQuizzes(quizzes []Quiz) {
	sort.SliceStable(quizzes, func(i, j int) bool {
		if !quizzes[i].CreatedAt.Equal(quizzes[j].CreatedAt) {
			return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt)
		}
		return quizzes[i].ID < quizzes[j].ID
	})
}
