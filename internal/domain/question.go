package domain

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the question variants.
type Kind string

const (
	KindSingleChoice         Kind = "single_choice"
	KindImageChoice          Kind = "image_choice"
	KindMultiChoice          Kind = "multi_choice"
	KindTrueFalse            Kind = "true_false"
	KindFillBlank            Kind = "fill_blank"
	KindMatching             Kind = "matching"
	KindRanking              Kind = "ranking"
	KindDescriptive          Kind = "descriptive"
	KindReadingComprehension Kind = "reading_comprehension"
	KindDataInterpretation   Kind = "data_interpretation"
)

// Kinds lists every supported question kind.
var Kinds = []Kind{
	KindSingleChoice,
	KindImageChoice,
	KindMultiChoice,
	KindTrueFalse,
	KindFillBlank,
	KindMatching,
	KindRanking,
	KindDescriptive,
	KindReadingComprehension,
	KindDataInterpretation,
}

// Difficulty is cosmetic and never affects scoring.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Body is the kind-specific payload of a question. The set of implementations
// is closed: only types in this package satisfy it.
type Body interface {
	Kind() Kind
	defaultPoints() int
}

// Question is a single quiz question. Body holds one of the payload types below.
type Question struct {
	ID         string
	Prompt     string
	Points     int
	Difficulty Difficulty
	Body       Body
}

// Kind returns the discriminant of the question body.
func (q Question) Kind() Kind {
	if q.Body == nil {
		return ""
	}
	return q.Body.Kind()
}

// EffectivePoints returns Points, or the kind default when Points is unset.
func (q Question) EffectivePoints() int {
	if q.Points >= 1 {
		return q.Points
	}
	if q.Body == nil {
		return 1
	}
	return q.Body.defaultPoints()
}

// SingleChoice has exactly one correct option, addressed by index.
type SingleChoice struct {
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer"`
}

func (*SingleChoice) Kind() Kind         { return KindSingleChoice }
func (*SingleChoice) defaultPoints() int { return 1 }

// ImageChoice is a single choice question illustrated by an image.
type ImageChoice struct {
	ImageURL      string   `json:"imageUrl" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer"`
}

func (*ImageChoice) Kind() Kind         { return KindImageChoice }
func (*ImageChoice) defaultPoints() int { return 2 }

// MultiChoice accepts several correct options.
type MultiChoice struct {
	Options        []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswers []int    `json:"correctAnswers" validate:"min=1,unique"`
}

func (*MultiChoice) Kind() Kind         { return KindMultiChoice }
func (*MultiChoice) defaultPoints() int { return 1 }

// TrueFalse is a boolean question.
type TrueFalse struct {
	CorrectAnswer bool `json:"correctAnswer"`
}

func (*TrueFalse) Kind() Kind         { return KindTrueFalse }
func (*TrueFalse) defaultPoints() int { return 1 }

// Blank is one gap of a fill-in-the-blank question.
type Blank struct {
	CorrectAnswer string `json:"correctAnswer" validate:"required"`
	Hint          string `json:"hint,omitempty"`
}

// FillBlank asks for an ordered list of missing words.
type FillBlank struct {
	Text   string  `json:"text"`
	Blanks []Blank `json:"blanks" validate:"min=1,dive"`
}

func (*FillBlank) Kind() Kind         { return KindFillBlank }
func (*FillBlank) defaultPoints() int { return 1 }

// MatchPair links a left-column entry to a right-column entry.
type MatchPair struct {
	Left  string `json:"left" validate:"required"`
	Right string `json:"right" validate:"required"`
}

// Matching asks for the canonical pairing, position by position.
type Matching struct {
	CorrectMatches []MatchPair `json:"correctMatches" validate:"min=2,dive"`
}

func (*Matching) Kind() Kind         { return KindMatching }
func (*Matching) defaultPoints() int { return 1 }

// RankItem is an orderable entry of a ranking question.
type RankItem struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// Ranking asks for items in CorrectOrder.
type Ranking struct {
	Items        []RankItem `json:"items" validate:"min=2,dive"`
	CorrectOrder []string   `json:"correctOrder" validate:"min=2"`
}

func (*Ranking) Kind() Kind         { return KindRanking }
func (*Ranking) defaultPoints() int { return 1 }

// Descriptive is an open-ended answer, optionally graded by keywords.
// Word bounds are enforced by the input surface only.
type Descriptive struct {
	MinWords int      `json:"minWords" validate:"gte=0"`
	MaxWords int      `json:"maxWords" validate:"gte=0"`
	Keywords []string `json:"keywords,omitempty" validate:"dive,required"`
}

func (*Descriptive) Kind() Kind         { return KindDescriptive }
func (*Descriptive) defaultPoints() int { return 10 }

// Composite is implemented by question kinds that nest sub-questions.
type Composite interface {
	Body
	SubQuestions() []SubQuestion
}

// ReadingComprehension is a passage followed by sub-questions.
type ReadingComprehension struct {
	Title     string        `json:"title"`
	Passage   string        `json:"passage" validate:"required"`
	Questions []SubQuestion `json:"questions" validate:"min=1,dive"`
}

func (*ReadingComprehension) Kind() Kind                     { return KindReadingComprehension }
func (*ReadingComprehension) defaultPoints() int             { return 10 }
func (rc *ReadingComprehension) SubQuestions() []SubQuestion { return rc.Questions }

// DataInterpretation is a table or chart followed by sub-questions.
type DataInterpretation struct {
	Title      string        `json:"title"`
	DataFormat string        `json:"dataFormat,omitempty"`
	Data       string        `json:"data" validate:"required"`
	Questions  []SubQuestion `json:"questions" validate:"min=1,dive"`
}

func (*DataInterpretation) Kind() Kind                     { return KindDataInterpretation }
func (*DataInterpretation) defaultPoints() int             { return 10 }
func (di *DataInterpretation) SubQuestions() []SubQuestion { return di.Questions }

// SubKind discriminates composite sub-questions.
type SubKind string

const (
	SubSingleChoice SubKind = "single_choice"
	SubTrueFalse    SubKind = "true_false"
	SubShortAnswer  SubKind = "short_answer"
	SubExact        SubKind = "exact"
)

// SubQuestion is a lightweight question nested in a composite. Only the
// fields relevant to Kind are meaningful.
type SubQuestion struct {
	Kind    SubKind  `json:"kind" validate:"oneof=single_choice true_false short_answer exact"`
	Prompt  string   `json:"prompt"`
	Points  int      `json:"points" validate:"gte=0"`
	Options []string `json:"options,omitempty"`
	// CorrectIndex is the answer of a single_choice sub-question.
	CorrectIndex int `json:"correctIndex,omitempty"`
	// CorrectBool is the answer of a true_false sub-question.
	CorrectBool bool `json:"correctBool,omitempty"`
	// Answer is the expected text of an exact sub-question.
	Answer     string `json:"answer,omitempty"`
	AnswerType string `json:"answerType,omitempty"`
}

// EffectivePoints returns Points, defaulting to 1.
func (s SubQuestion) EffectivePoints() int {
	if s.Points >= 1 {
		return s.Points
	}
	return 1
}

// NewBody returns an empty body for kind.
func NewBody(kind Kind) (Body, error) {
	switch kind {
	case KindSingleChoice:
		return &SingleChoice{}, nil
	case KindImageChoice:
		return &ImageChoice{}, nil
	case KindMultiChoice:
		return &MultiChoice{}, nil
	case KindTrueFalse:
		return &TrueFalse{}, nil
	case KindFillBlank:
		return &FillBlank{}, nil
	case KindMatching:
		return &Matching{}, nil
	case KindRanking:
		return &Ranking{}, nil
	case KindDescriptive:
		return &Descriptive{}, nil
	case KindReadingComprehension:
		return &ReadingComprehension{}, nil
	case KindDataInterpretation:
		return &DataInterpretation{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

type questionJSON struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Prompt     string          `json:"prompt"`
	Points     int             `json:"points"`
	Difficulty Difficulty      `json:"difficulty,omitempty"`
	Body       json.RawMessage `json:"body"`
}

// MarshalJSON encodes the question as {id, kind, prompt, points, difficulty, body}.
func (q Question) MarshalJSON() ([]byte, error) {
	if q.Body == nil {
		return nil, fmt.Errorf("question %q: missing body", q.ID)
	}
	body, err := json.Marshal(q.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionJSON{
		ID:         q.ID,
		Kind:       q.Body.Kind(),
		Prompt:     q.Prompt,
		Points:     q.Points,
		Difficulty: q.Difficulty,
		Body:       body,
	})
}

// UnmarshalJSON decodes the body according to the kind discriminant.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	body, err := NewBody(raw.Kind)
	if err != nil {
		return err
	}
	if len(raw.Body) > 0 && string(raw.Body) != "null" {
		if err := json.Unmarshal(raw.Body, body); err != nil {
			return fmt.Errorf("question %q: decode %s body: %w", raw.ID, raw.Kind, err)
		}
	}
	*q = Question{
		ID:         raw.ID,
		Prompt:     raw.Prompt,
		Points:     raw.Points,
		Difficulty: raw.Difficulty,
		Body:       body,
	}
	return nil
}
