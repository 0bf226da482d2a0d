package scoring

import (
	"encoding/json"
	"regexp"
	"strings"

	"timed-quiz-service/internal/domain"
)

// Each scorer returns the earned share of points for one answer. A missing or
// malformed answer earns nothing; scorers never fail.

func scoreChoice(points float64, correct int, raw json.RawMessage) float64 {
	var idx int
	if !decode(raw, &idx) {
		return 0
	}
	if idx == correct {
		return points
	}
	return 0
}

func scoreMultiChoice(points float64, correct []int, raw json.RawMessage, policy MultiChoicePolicy) float64 {
	var submitted []int
	if !decode(raw, &submitted) {
		return 0
	}
	want := make(map[int]struct{}, len(correct))
	for _, idx := range correct {
		want[idx] = struct{}{}
	}
	if len(want) == 0 {
		return 0
	}

	hits, extras := 0, 0
	picked := make(map[int]struct{}, len(submitted))
	for _, idx := range submitted {
		if _, dup := picked[idx]; dup {
			continue
		}
		picked[idx] = struct{}{}
		if _, ok := want[idx]; ok {
			hits++
		} else {
			extras++
		}
	}

	switch {
	case hits == len(want) && extras == 0:
		return points
	case hits == len(want) && policy == PolicyForfeit:
		// Every correct option plus at least one wrong one: full credit is
		// forfeited and the proportional formula would restore it.
		return 0
	case hits > 0:
		return points * float64(hits) / float64(len(want))
	}
	return 0
}

func scoreTrueFalse(points float64, correct bool, raw json.RawMessage) float64 {
	var got bool
	if !decode(raw, &got) {
		return 0
	}
	if got == correct {
		return points
	}
	return 0
}

func scoreFillBlank(points float64, blanks []domain.Blank, raw json.RawMessage) float64 {
	var submitted []string
	if !decode(raw, &submitted) || len(blanks) == 0 {
		return 0
	}
	right := 0
	for i, blank := range blanks {
		if i >= len(submitted) {
			break
		}
		if normalize(submitted[i]) == normalize(blank.CorrectAnswer) {
			right++
		}
	}
	return points * float64(right) / float64(len(blanks))
}

func scoreMatching(points float64, matches []domain.MatchPair, raw json.RawMessage) float64 {
	var submitted []domain.MatchPair
	if !decode(raw, &submitted) || len(matches) == 0 {
		return 0
	}
	right := 0
	for i, want := range matches {
		if i >= len(submitted) {
			break
		}
		if submitted[i].Right == want.Right {
			right++
		}
	}
	return points * float64(right) / float64(len(matches))
}

func scoreRanking(points float64, order []string, raw json.RawMessage) float64 {
	var submitted []string
	if !decode(raw, &submitted) || len(order) == 0 {
		return 0
	}
	right := 0
	for i, id := range order {
		if i >= len(submitted) {
			break
		}
		if submitted[i] == id {
			right++
		}
	}
	return points * float64(right) / float64(len(order))
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

func scoreDescriptive(points float64, keywords []string, raw json.RawMessage) float64 {
	var text string
	if !decode(raw, &text) {
		return 0
	}
	if len(keywords) == 0 {
		if strings.TrimSpace(text) != "" {
			return points
		}
		return 0
	}

	tokens := make(map[string]struct{})
	for _, tok := range nonWord.Split(strings.ToLower(text), -1) {
		if tok != "" {
			tokens[tok] = struct{}{}
		}
	}
	matched := 0
	for _, kw := range keywords {
		if _, ok := tokens[normalize(kw)]; ok {
			matched++
		}
	}
	return points * float64(matched) / float64(len(keywords))
}

func decode(raw json.RawMessage, v any) bool {
	if domain.IsBlank(raw) {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
