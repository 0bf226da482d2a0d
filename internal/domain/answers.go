package domain

import (
	"bytes"
	"encoding/json"
)

// Answers maps question ids to raw answer values. The shape of each value
// depends on the question kind and is only interpreted at scoring time.
type Answers map[string]json.RawMessage

// AnswerOf encodes v as an answer value. Values that cannot be encoded yield
// nil, which scores as unanswered.
func AnswerOf(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

// Lookup returns the raw value for id. Missing keys, empty values and JSON
// null all report false.
func (a Answers) Lookup(id string) (json.RawMessage, bool) {
	raw, ok := a[id]
	if !ok || IsBlank(raw) {
		return nil, false
	}
	return raw, true
}

// With returns a copy of a with id set to value; a itself is left untouched.
func (a Answers) With(id string, value json.RawMessage) Answers {
	next := make(Answers, len(a)+1)
	for k, v := range a {
		next[k] = v
	}
	next[id] = append(json.RawMessage(nil), value...)
	return next
}

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	next := make(Answers, len(a))
	for k, v := range a {
		next[k] = append(json.RawMessage(nil), v...)
	}
	return next
}

// IsBlank reports whether raw carries no answer.
func IsBlank(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
