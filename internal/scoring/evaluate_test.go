package scoring_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/scoring"
)

func single(id string, points, correct int) domain.Question {
	return domain.Question{ID: id, Points: points, Body: &domain.SingleChoice{
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: correct,
	}}
}

func score(t *testing.T, q domain.Question, answer any) float64 {
	t.Helper()
	var raw json.RawMessage
	if answer != nil {
		raw = domain.AnswerOf(answer)
	}
	earned, possible := scoring.NewEvaluator().ScoreQuestion(q, raw)
	require.Equal(t, float64(q.EffectivePoints()), possible)
	return earned
}

func allKinds() []domain.Question {
	return []domain.Question{
		single("single", 1, 0),
		{ID: "image", Body: &domain.ImageChoice{ImageURL: "x.png", Options: []string{"a", "b"}, CorrectAnswer: 0}},
		{ID: "multi", Body: &domain.MultiChoice{Options: []string{"a", "b"}, CorrectAnswers: []int{0}}},
		{ID: "tf", Body: &domain.TrueFalse{CorrectAnswer: false}},
		{ID: "blank", Body: &domain.FillBlank{Blanks: []domain.Blank{{CorrectAnswer: "x"}}}},
		{ID: "match", Body: &domain.Matching{CorrectMatches: []domain.MatchPair{{Left: "a", Right: "1"}, {Left: "b", Right: "2"}}}},
		{ID: "rank", Body: &domain.Ranking{Items: []domain.RankItem{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}}, CorrectOrder: []string{"a", "b"}}},
		{ID: "essay", Body: &domain.Descriptive{}},
		{ID: "rc", Body: &domain.ReadingComprehension{Passage: "p", Questions: []domain.SubQuestion{{Kind: domain.SubShortAnswer}}}},
		{ID: "di", Body: &domain.DataInterpretation{Data: "d", Questions: []domain.SubQuestion{{Kind: domain.SubExact, Answer: "4"}}}},
	}
}

func TestUnansweredEarnsNothing(t *testing.T) {
	quiz := domain.Quiz{Questions: allKinds()}
	require.Len(t, quiz.Questions, len(domain.Kinds))

	result := scoring.Evaluate(quiz, domain.Answers{})
	assert.Zero(t, result.EarnedPoints)
	assert.Equal(t, float64(quiz.TotalPoints()), result.PossiblePoints)
	assert.Zero(t, result.Percentage)
	for _, qs := range result.Questions {
		assert.Zerof(t, qs.Earned, "question %s", qs.QuestionID)
	}

	nulls := domain.Answers{}
	for _, q := range quiz.Questions {
		nulls[q.ID] = json.RawMessage("null")
	}
	assert.Zero(t, scoring.Evaluate(quiz, nulls).EarnedPoints)
}

func TestMalformedAnswersEarnNothing(t *testing.T) {
	answers := domain.Answers{}
	for _, q := range allKinds() {
		answers[q.ID] = json.RawMessage(`{"unexpected":`)
	}
	result := scoring.Evaluate(domain.Quiz{Questions: allKinds()}, answers)
	assert.Zero(t, result.EarnedPoints)

	assert.Zero(t, score(t, single("q", 1, 2), "2"))
	assert.Zero(t, score(t, single("q", 1, 2), 2.5))
}

func TestSingleChoice(t *testing.T) {
	q := single("q", 3, 2)
	assert.Equal(t, 3.0, score(t, q, 2))
	assert.Zero(t, score(t, q, 1))
}

func TestImageChoiceDefaultsToTwoPoints(t *testing.T) {
	q := domain.Question{ID: "img", Body: &domain.ImageChoice{ImageURL: "u", Options: []string{"a", "b"}, CorrectAnswer: 1}}
	assert.Equal(t, 2.0, score(t, q, 1))
}

func TestMultiChoice(t *testing.T) {
	q := domain.Question{ID: "m", Points: 4, Body: &domain.MultiChoice{
		Options:        []string{"a", "b", "c", "d"},
		CorrectAnswers: []int{0, 2},
	}}

	cases := []struct {
		name   string
		answer []int
		want   float64
	}{
		{"exact", []int{0, 2}, 4},
		{"order irrelevant", []int{2, 0}, 4},
		{"one of two", []int{0}, 2},
		{"all correct plus extra", []int{0, 1, 2}, 0},
		{"one correct one wrong", []int{0, 1}, 2},
		{"only wrong", []int{1, 3}, 0},
		{"duplicates ignored", []int{0, 0}, 2},
		{"empty selection", []int{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, score(t, q, tc.answer))
		})
	}
}

func TestMultiChoiceProportionalPolicy(t *testing.T) {
	q := domain.Question{ID: "m", Points: 4, Body: &domain.MultiChoice{
		Options:        []string{"a", "b", "c"},
		CorrectAnswers: []int{0, 2},
	}}
	eval := scoring.NewEvaluator(scoring.WithMultiChoicePolicy(scoring.PolicyProportional))
	earned, _ := eval.ScoreQuestion(q, domain.AnswerOf([]int{0, 1, 2}))
	assert.Equal(t, 4.0, earned)

	assert.Equal(t, scoring.PolicyProportional, scoring.ParsePolicy("proportional"))
	assert.Equal(t, scoring.PolicyForfeit, scoring.ParsePolicy(""))
}

func TestTrueFalse(t *testing.T) {
	q := domain.Question{ID: "tf", Body: &domain.TrueFalse{CorrectAnswer: false}}
	assert.Equal(t, 1.0, score(t, q, false))
	assert.Zero(t, score(t, q, true))
}

func TestFillBlank(t *testing.T) {
	q := domain.Question{ID: "fb", Points: 2, Body: &domain.FillBlank{Blanks: []domain.Blank{
		{CorrectAnswer: "Paris"},
		{CorrectAnswer: "Berlin"},
	}}}
	assert.Equal(t, 2.0, score(t, q, []string{" paris ", "BERLIN"}))
	assert.Equal(t, 1.0, score(t, q, []string{"paris", "Rome"}))
	assert.Equal(t, 1.0, score(t, q, []string{"Paris"}))
	assert.Equal(t, 2.0, score(t, q, []string{"Paris", "Berlin", "extra"}))
}

func TestMatching(t *testing.T) {
	q := domain.Question{ID: "m", Points: 3, Body: &domain.Matching{CorrectMatches: []domain.MatchPair{
		{Left: "France", Right: "Paris"},
		{Left: "Spain", Right: "Madrid"},
		{Left: "Italy", Right: "Rome"},
	}}}
	answer := []domain.MatchPair{
		{Left: "France", Right: "Paris"},
		{Left: "Spain", Right: "Rome"},
		{Left: "Italy", Right: "Rome"},
	}
	assert.Equal(t, 2.0, score(t, q, answer))
}

func TestRankingIsPositional(t *testing.T) {
	q := domain.Question{ID: "r", Points: 3, Body: &domain.Ranking{
		Items:        []domain.RankItem{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}},
		CorrectOrder: []string{"a", "b", "c"},
	}}
	assert.Equal(t, 1.0, score(t, q, []string{"a", "c", "b"}))
	assert.Equal(t, 3.0, score(t, q, []string{"a", "b", "c"}))
	assert.Zero(t, score(t, q, []string{"c", "a", "b"}))
}

func TestDescriptiveKeywords(t *testing.T) {
	q := domain.Question{ID: "d", Points: 10, Body: &domain.Descriptive{Keywords: []string{"Photosynthesis", "light", "oxygen", "glucose"}}}
	assert.Equal(t, 5.0, score(t, q, "Photosynthesis uses LIGHT; plants... lightly"))
	assert.Equal(t, 10.0, score(t, q, "light+oxygen, glucose & photosynthesis"))
	assert.Zero(t, score(t, q, "sunlight"))
}

func TestDescriptiveWithoutKeywords(t *testing.T) {
	q := domain.Question{ID: "d", Body: &domain.Descriptive{MinWords: 50, MaxWords: 100}}
	assert.Equal(t, 10.0, score(t, q, "short answer"), "word bounds are advisory")
	assert.Zero(t, score(t, q, "   "))
}

func TestReadingComprehensionRescalesToParentPoints(t *testing.T) {
	q := domain.Question{ID: "rc", Points: 10, Body: &domain.ReadingComprehension{
		Passage: "passage",
		Questions: []domain.SubQuestion{
			{Kind: domain.SubSingleChoice, Points: 1, Options: []string{"x", "y"}, CorrectIndex: 1},
			{Kind: domain.SubShortAnswer, Points: 1},
		},
	}}
	assert.Equal(t, 5.0, score(t, q, map[string]any{"0": 1, "1": ""}))
	assert.Equal(t, 10.0, score(t, q, []any{1, "anything"}))
	assert.Zero(t, score(t, q, "not an object"))
}

func TestCompositeSubKinds(t *testing.T) {
	q := domain.Question{ID: "di", Points: 6, Body: &domain.DataInterpretation{
		Data: "year,sales\n2020,4",
		Questions: []domain.SubQuestion{
			{Kind: domain.SubExact, Points: 2, Answer: " 4 "},
			{Kind: domain.SubTrueFalse, Points: 1, CorrectBool: true},
			{Kind: "unknown", Points: 3},
		},
	}}
	assert.Equal(t, 3.0, score(t, q, map[string]any{"0": "4", "1": true, "2": "x"}))
	assert.Equal(t, 2.0, score(t, q, map[string]any{"0": "4"}))
	assert.Zero(t, score(t, q, map[string]any{"0": 4}))
}

func TestAggregatePercentageRoundsHalfUp(t *testing.T) {
	quiz := domain.Quiz{Questions: []domain.Question{
		single("q1", 1, 0),
		{ID: "q2", Points: 3, Body: &domain.FillBlank{Blanks: []domain.Blank{{CorrectAnswer: "a"}, {CorrectAnswer: "b"}}}},
	}}
	result := scoring.Evaluate(quiz, domain.Answers{
		"q1": domain.AnswerOf(0),
		"q2": domain.AnswerOf([]string{"a", "wrong"}),
	})
	assert.Equal(t, 2.5, result.EarnedPoints)
	assert.Equal(t, 4.0, result.PossiblePoints)
	assert.Equal(t, 63, result.Percentage)
	require.Len(t, result.Questions, 2)
	assert.Equal(t, 1.5, result.Questions[1].Earned)
}

func TestEmptyQuizScoresZero(t *testing.T) {
	result := scoring.Evaluate(domain.Quiz{}, domain.Answers{"x": domain.AnswerOf(1)})
	assert.Zero(t, result.Percentage)
	assert.Zero(t, result.PossiblePoints)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 33, scoring.Percentage(1, 3))
	assert.Equal(t, 67, scoring.Percentage(2, 3))
	assert.Equal(t, 100, scoring.Percentage(4, 4))
	assert.Equal(t, 0, scoring.Percentage(0, 0))
}
