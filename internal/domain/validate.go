package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks quiz definitions before they are stored.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator backed by go-playground/validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

var defaultValidator = NewValidator()

// ValidateQuiz checks quiz with the default validator.
func ValidateQuiz(quiz Quiz) error {
	return defaultValidator.Quiz(quiz)
}

// Quiz returns an error wrapping ErrInvalidQuiz listing every problem found.
func (v *Validator) Quiz(quiz Quiz) error {
	var problems []string
	problems = append(problems, v.structProblems("quiz", quiz)...)

	seen := make(map[string]struct{}, len(quiz.Questions))
	for i, q := range quiz.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		if q.ID == "" {
			problems = append(problems, prefix+": missing id")
		} else if _, dup := seen[q.ID]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate id %q", prefix, q.ID))
		}
		seen[q.ID] = struct{}{}
		if q.Points < 0 {
			problems = append(problems, prefix+": points must not be negative")
		}
		if q.Body == nil {
			problems = append(problems, prefix+": missing body")
			continue
		}
		problems = append(problems, v.structProblems(prefix, q.Body)...)
		for _, p := range bodyProblems(q.Body) {
			problems = append(problems, prefix+": "+p)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidQuiz, strings.Join(problems, "; "))
}

func (v *Validator) structProblems(prefix string, s any) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{prefix + ": " + err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fmt.Sprintf("%s: %s failed %q", prefix, fe.Namespace(), fe.Tag()))
	}
	return out
}

// bodyProblems covers the cross-field rules struct tags cannot express.
func bodyProblems(body Body) []string {
	var out []string
	switch b := body.(type) {
	case *SingleChoice:
		out = append(out, indexProblems(b.CorrectAnswer, len(b.Options))...)
	case *ImageChoice:
		out = append(out, indexProblems(b.CorrectAnswer, len(b.Options))...)
	case *MultiChoice:
		for _, idx := range b.CorrectAnswers {
			out = append(out, indexProblems(idx, len(b.Options))...)
		}
	case *TrueFalse:
	case *FillBlank:
		for i, blank := range b.Blanks {
			if strings.TrimSpace(blank.CorrectAnswer) == "" {
				out = append(out, fmt.Sprintf("blank %d has no answer", i))
			}
		}
	case *Matching:
		lefts := make(map[string]struct{}, len(b.CorrectMatches))
		for _, pair := range b.CorrectMatches {
			key := strings.TrimSpace(pair.Left)
			if _, dup := lefts[key]; dup {
				out = append(out, fmt.Sprintf("duplicate left item %q", pair.Left))
			}
			lefts[key] = struct{}{}
		}
	case *Ranking:
		ids := make(map[string]int, len(b.Items))
		for _, item := range b.Items {
			if _, dup := ids[item.ID]; dup {
				out = append(out, fmt.Sprintf("duplicate item id %q", item.ID))
			}
			ids[item.ID] = 0
		}
		if len(b.CorrectOrder) != len(b.Items) {
			out = append(out, "correct order must list every item exactly once")
			break
		}
		for _, id := range b.CorrectOrder {
			n, ok := ids[id]
			if !ok || n > 0 {
				out = append(out, fmt.Sprintf("correct order entry %q is unknown or repeated", id))
				continue
			}
			ids[id] = n + 1
		}
	case *Descriptive:
		if b.MaxWords > 0 && b.MinWords > b.MaxWords {
			out = append(out, "minimum words cannot be greater than maximum words")
		}
	case Composite:
		for i, sub := range b.SubQuestions() {
			for _, p := range subQuestionProblems(sub) {
				out = append(out, fmt.Sprintf("sub-question %d: %s", i, p))
			}
		}
	default:
		out = append(out, fmt.Sprintf("unsupported body %T", body))
	}
	return out
}

func subQuestionProblems(sub SubQuestion) []string {
	switch sub.Kind {
	case SubSingleChoice:
		if len(sub.Options) < 2 {
			return []string{"needs at least 2 options"}
		}
		for _, opt := range sub.Options {
			if strings.TrimSpace(opt) == "" {
				return []string{"options must not be empty"}
			}
		}
		return indexProblems(sub.CorrectIndex, len(sub.Options))
	case SubExact:
		if strings.TrimSpace(sub.Answer) == "" {
			return []string{"expected answer is empty"}
		}
	}
	return nil
}

func indexProblems(idx, n int) []string {
	if idx < 0 || idx >= n {
		return []string{fmt.Sprintf("correct index %d out of range [0,%d)", idx, n)}
	}
	return nil
}
