package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"timed-quiz-service/internal/domain"
)

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// writeDomainErr maps use-case errors onto HTTP statuses.
func writeDomainErr(w http.ResponseWriter, err error) {
	writeErr(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuiz), errors.Is(err, domain.ErrUnknownKind):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAttemptClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
