package scoring

import (
	"encoding/json"
	"strconv"
	"strings"

	"timed-quiz-service/internal/domain"
)

// scoreComposite grades every sub-question and rescales the combined ratio to
// the parent's points.
func scoreComposite(points float64, subs []domain.SubQuestion, raw json.RawMessage) float64 {
	parts, ok := subAnswers(raw)
	if !ok {
		return 0
	}
	var earned, possible float64
	for i, sub := range subs {
		subPoints := float64(sub.EffectivePoints())
		possible += subPoints
		earned += scoreSubQuestion(subPoints, sub, parts[strconv.Itoa(i)])
	}
	if possible == 0 {
		return 0
	}
	return clamp(points*earned/possible, points)
}

func scoreSubQuestion(points float64, sub domain.SubQuestion, raw json.RawMessage) float64 {
	switch sub.Kind {
	case domain.SubSingleChoice:
		return scoreChoice(points, sub.CorrectIndex, raw)
	case domain.SubTrueFalse:
		return scoreTrueFalse(points, sub.CorrectBool, raw)
	case domain.SubShortAnswer:
		var text string
		if decode(raw, &text) && strings.TrimSpace(text) != "" {
			return points
		}
	case domain.SubExact:
		var text string
		if decode(raw, &text) && normalize(text) != "" && normalize(text) == normalize(sub.Answer) {
			return points
		}
	}
	return 0
}

// subAnswers accepts either an object keyed by position or an array ordered by position.
func subAnswers(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if domain.IsBlank(raw) {
		return nil, false
	}
	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byKey); err == nil {
		return byKey, true
	}
	var byPos []json.RawMessage
	if err := json.Unmarshal(raw, &byPos); err != nil {
		return nil, false
	}
	out := make(map[string]json.RawMessage, len(byPos))
	for i, v := range byPos {
		out[strconv.Itoa(i)] = v
	}
	return out, true
}
