package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

const writeWait = 10 * time.Second

// WSHandler drives one attempt per websocket connection.
type WSHandler struct {
	service  *app.QuizService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type navigatePayload struct {
	Delta int `json:"delta"`
}

type answerPayload struct {
	QuestionID string          `json:"questionId"`
	Value      json.RawMessage `json:"value"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type tickPayload struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type completedPayload struct {
	Record domain.AttemptRecord `json:"record"`
	Error  string               `json:"error,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}

// terminal messages end the conversation; the writer closes the socket after them.
func (m outboundMessage) terminal() bool {
	return m.Type == "completed" || m.Type == "exited"
}

// ServeWS upgrades the request, starts an attempt at ?quizId= and relays
// navigation, answers, submission and exit until the attempt ends. Closing
// the socket abandons an attempt that is still in progress.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	// push never blocks past the end of the connection; hooks call it from
	// the attempt's ticker goroutine.
	push := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-closeSignals:
		case <-writerDone:
		}
	}

	ctrl, err := h.service.StartAttempt(r.Context(), quizID,
		app.WithTickHook(func(remaining int) {
			// Ticks are dropped rather than stalling the countdown on a slow client.
			select {
			case send <- outboundMessage{Type: "tick", Payload: tickPayload{SecondsRemaining: remaining}}:
			default:
			}
		}),
		app.WithCompletionHook(func(rec domain.AttemptRecord, err error) {
			payload := completedPayload{Record: rec}
			if err != nil {
				payload.Error = err.Error()
			}
			push(outboundMessage{Type: "completed", Payload: payload})
		}),
		app.WithExitHook(func() {
			push(outboundMessage{Type: "exited"})
		}),
	)
	if err != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					h.log.WithError(err).Debug("ws write failed")
					_ = conn.Close()
					return
				}
				if msg.terminal() {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, msg.Type),
						time.Now().Add(writeWait))
					_ = conn.Close()
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	attemptID := ctrl.ID()
	log := h.log.WithField("attempt_id", attemptID)
	push(outboundMessage{Type: "started", Payload: ctrl.Snapshot()})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r.Context(), attemptID, inbound, push)
	}

	close(closeSignals)
	if err := h.service.ExitAttempt(attemptID); err == nil {
		log.Info("ws closed, attempt abandoned")
	}
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, attemptID string, in inboundMessage, push func(outboundMessage)) {
	switch in.Type {
	case "navigate":
		var p navigatePayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			push(errorMessage("invalid navigate payload"))
			return
		}
		snap, err := h.service.Navigate(attemptID, p.Delta)
		if err != nil {
			push(errorMessage(err.Error()))
			return
		}
		push(outboundMessage{Type: "state", Payload: snap})
	case "answer":
		var p answerPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil || p.QuestionID == "" {
			push(errorMessage("invalid answer payload"))
			return
		}
		snap, err := h.service.RecordAnswer(attemptID, p.QuestionID, p.Value)
		if err != nil {
			push(errorMessage(err.Error()))
			return
		}
		push(outboundMessage{Type: "state", Payload: snap})
	case "submit":
		// The completion hook reports the record, including a failed save.
		_, err := h.service.SubmitAttempt(ctx, attemptID)
		if errors.Is(err, domain.ErrAttemptClosed) || errors.Is(err, domain.ErrAttemptNotFound) {
			push(errorMessage(err.Error()))
		}
	case "exit":
		if err := h.service.ExitAttempt(attemptID); err != nil {
			push(errorMessage(err.Error()))
		}
	default:
		push(errorMessage("unsupported message type"))
	}
}
