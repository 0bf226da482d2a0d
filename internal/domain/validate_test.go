package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuiz() Quiz {
	return Quiz{
		ID:    "quiz-1",
		Title: "General knowledge",
		Questions: []Question{
			{ID: "q1", Body: &SingleChoice{Options: []string{"a", "b"}, CorrectAnswer: 1}},
			{ID: "q2", Body: &MultiChoice{Options: []string{"a", "b", "c"}, CorrectAnswers: []int{0, 2}}},
			{ID: "q3", Body: &TrueFalse{CorrectAnswer: true}},
			{ID: "q4", Body: &FillBlank{Text: "The capital of France is ___", Blanks: []Blank{{CorrectAnswer: "Paris"}}}},
			{ID: "q5", Body: &Matching{CorrectMatches: []MatchPair{{Left: "a", Right: "1"}, {Left: "b", Right: "2"}}}},
			{ID: "q6", Body: &Ranking{
				Items:        []RankItem{{ID: "x", Text: "X"}, {ID: "y", Text: "Y"}},
				CorrectOrder: []string{"y", "x"},
			}},
			{ID: "q7", Body: &Descriptive{MinWords: 10, MaxWords: 50}},
			{ID: "q8", Body: &DataInterpretation{Data: "a,b", Questions: []SubQuestion{
				{Kind: SubExact, Answer: "42"},
				{Kind: SubSingleChoice, Options: []string{"up", "down"}, CorrectIndex: 0},
			}}},
		},
	}
}

func TestValidateQuizAcceptsWellFormedQuiz(t *testing.T) {
	require.NoError(t, ValidateQuiz(validQuiz()))
}

func TestValidateQuizRejects(t *testing.T) {
	cases := map[string]func(q *Quiz){
		"missing title":     func(q *Quiz) { q.Title = "" },
		"no questions":      func(q *Quiz) { q.Questions = nil },
		"passing above 100": func(q *Quiz) { q.PassingScore = 101 },
		"duplicate id":      func(q *Quiz) { q.Questions[1].ID = "q1" },
		"missing body":      func(q *Quiz) { q.Questions[0].Body = nil },
		"index out of range": func(q *Quiz) {
			q.Questions[0].Body = &SingleChoice{Options: []string{"a", "b"}, CorrectAnswer: 2}
		},
		"repeated correct answers": func(q *Quiz) {
			q.Questions[1].Body = &MultiChoice{Options: []string{"a", "b"}, CorrectAnswers: []int{1, 1}}
		},
		"blank without answer": func(q *Quiz) {
			q.Questions[3].Body = &FillBlank{Blanks: []Blank{{CorrectAnswer: " "}}}
		},
		"duplicate left": func(q *Quiz) {
			q.Questions[4].Body = &Matching{CorrectMatches: []MatchPair{{Left: "a", Right: "1"}, {Left: "a", Right: "2"}}}
		},
		"order not a permutation": func(q *Quiz) {
			q.Questions[5].Body = &Ranking{
				Items:        []RankItem{{ID: "x", Text: "X"}, {ID: "y", Text: "Y"}},
				CorrectOrder: []string{"x", "x"},
			}
		},
		"word bounds inverted": func(q *Quiz) { q.Questions[6].Body = &Descriptive{MinWords: 60, MaxWords: 50} },
		"exact without answer": func(q *Quiz) {
			q.Questions[7].Body = &DataInterpretation{Data: "d", Questions: []SubQuestion{{Kind: SubExact}}}
		},
		"composite without sub-questions": func(q *Quiz) {
			q.Questions[7].Body = &ReadingComprehension{Passage: "p"}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			quiz := validQuiz()
			mutate(&quiz)
			err := ValidateQuiz(quiz)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQuiz))
		})
	}
}

func TestSortQuizzes(t *testing.T) {
	a := validQuiz()
	a.ID = "b"
	b := validQuiz()
	b.ID = "a"
	c := validQuiz()
	c.ID = "c"
	c.CreatedAt = a.CreatedAt.Add(-1)
	quizzes := []Quiz{a, b, c}
	SortQuizzes(quizzes)
	assert.Equal(t, []string{"c", "a", "b"}, []string{quizzes[0].ID, quizzes[1].ID, quizzes[2].ID})
}
