package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// Handler serves the REST API on top of the quiz use cases.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// saveQuiz creates on POST and upserts on PUT, where the path id wins.
func (h *Handler) saveQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := decodeJSON(r, &quiz); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrUnknownKind) {
			status = http.StatusUnprocessableEntity
		}
		writeErr(w, status, "invalid quiz: "+err.Error())
		return
	}
	status := http.StatusCreated
	if id := chi.URLParam(r, "quizID"); id != "" {
		quiz.ID = id
		status = http.StatusOK
	}
	saved, err := h.service.SaveQuiz(r.Context(), quiz)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, status, saved)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type evaluateRequest struct {
	Answers domain.Answers `json:"answers"`
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid answers: "+err.Error())
		return
	}
	result, err := h.service.Evaluate(r.Context(), chi.URLParam(r, "quizID"), req.Answers)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) quizStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.QuizStats(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) startAttempt(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.service.StartAttempt(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ctrl.Snapshot())
}

func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.service.Attempt(chi.URLParam(r, "attemptID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

type navigateRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid navigation: "+err.Error())
		return
	}
	snap, err := h.service.Navigate(chi.URLParam(r, "attemptID"), req.Delta)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// recordAnswer takes the raw answer value as the request body.
func (h *Handler) recordAnswer(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeErr(w, http.StatusBadRequest, "answer must be JSON")
		return
	}
	snap, err := h.service.RecordAnswer(chi.URLParam(r, "attemptID"), chi.URLParam(r, "questionID"), json.RawMessage(body))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type submitFailure struct {
	Error  string               `json:"error"`
	Record domain.AttemptRecord `json:"record"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.SubmitAttempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		if rec.ID != "" {
			// Scored but not persisted.
			writeJSON(w, http.StatusInternalServerError, submitFailure{Error: err.Error(), Record: rec})
			return
		}
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) exit(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ExitAttempt(chi.URLParam(r, "attemptID")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.Context(), r.URL.Query().Get("quizId"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if results == nil {
		results = []domain.AttemptRecord{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Dashboard(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Export(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="quizzes.json"`)
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid snapshot: "+err.Error())
		return
	}
	summary, err := h.service.Import(r.Context(), snap)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
