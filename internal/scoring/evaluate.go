// Package scoring grades user answers against quiz definitions.
package scoring

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"timed-quiz-service/internal/domain"
)

// MultiChoicePolicy decides how a multi-choice answer that selects every
// correct option plus some wrong ones is graded.
type MultiChoicePolicy string

const (
	// PolicyForfeit awards nothing for such answers.
	PolicyForfeit MultiChoicePolicy = "forfeit"
	// PolicyProportional awards the proportional formula, i.e. full points.
	PolicyProportional MultiChoicePolicy = "proportional"
)

// ParsePolicy maps a config value to a policy, defaulting to PolicyForfeit.
func ParsePolicy(raw string) MultiChoicePolicy {
	if MultiChoicePolicy(raw) == PolicyProportional {
		return PolicyProportional
	}
	return PolicyForfeit
}

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	multiChoice MultiChoicePolicy
}

// WithMultiChoicePolicy overrides the default PolicyForfeit.
func WithMultiChoicePolicy(p MultiChoicePolicy) Option {
	return func(c *config) { c.multiChoice = p }
}

// Evaluator scores quizzes. It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	cfg config
}

func NewEvaluator(opts ...Option) *Evaluator {
	cfg := config{multiChoice: PolicyForfeit}
	for _, o := range opts {
		o(&cfg)
	}
	return &Evaluator{cfg: cfg}
}

var defaultEvaluator = NewEvaluator()

// Evaluate scores answers against quiz using the default policy.
func Evaluate(quiz domain.Quiz, answers domain.Answers) domain.ScoreResult {
	return defaultEvaluator.Evaluate(quiz, answers)
}

// Evaluate sums earned and possible points over every question and derives
// the rounded percentage. It never fails; unanswered or malformed answers earn 0.
func (e *Evaluator) Evaluate(quiz domain.Quiz, answers domain.Answers) domain.ScoreResult {
	result := domain.ScoreResult{
		Questions: make([]domain.QuestionScore, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		raw, _ := answers.Lookup(q.ID)
		earned, possible := e.ScoreQuestion(q, raw)
		result.EarnedPoints += earned
		result.PossiblePoints += possible
		result.Questions = append(result.Questions, domain.QuestionScore{
			QuestionID: q.ID,
			Kind:       q.Kind(),
			Earned:     earned,
			Possible:   possible,
		})
	}
	result.Percentage = Percentage(result.EarnedPoints, result.PossiblePoints)
	return result
}

// ScoreQuestion returns (earned, possible) for a single question.
func (e *Evaluator) ScoreQuestion(q domain.Question, raw json.RawMessage) (float64, float64) {
	points := float64(q.EffectivePoints())
	if domain.IsBlank(raw) {
		return 0, points
	}

	var earned float64
	switch b := q.Body.(type) {
	case *domain.SingleChoice:
		earned = scoreChoice(points, b.CorrectAnswer, raw)
	case *domain.ImageChoice:
		earned = scoreChoice(points, b.CorrectAnswer, raw)
	case *domain.MultiChoice:
		earned = scoreMultiChoice(points, b.CorrectAnswers, raw, e.cfg.multiChoice)
	case *domain.TrueFalse:
		earned = scoreTrueFalse(points, b.CorrectAnswer, raw)
	case *domain.FillBlank:
		earned = scoreFillBlank(points, b.Blanks, raw)
	case *domain.Matching:
		earned = scoreMatching(points, b.CorrectMatches, raw)
	case *domain.Ranking:
		earned = scoreRanking(points, b.CorrectOrder, raw)
	case *domain.Descriptive:
		earned = scoreDescriptive(points, b.Keywords, raw)
	case domain.Composite:
		earned = scoreComposite(points, b.SubQuestions(), raw)
	}
	return clamp(earned, points), points
}

// Percentage rounds 100*earned/possible half-up; it is 0 when possible is 0.
func Percentage(earned, possible float64) int {
	if possible <= 0 {
		return 0
	}
	pct := decimal.NewFromFloat(earned).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromFloat(possible)).
		Round(0).
		IntPart()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

func clamp(earned, possible float64) float64 {
	if earned < 0 {
		return 0
	}
	if earned > possible {
		return possible
	}
	return earned
}
