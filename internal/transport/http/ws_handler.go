package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"learnhub/internal/app"
	"learnhub/internal/domain"
)

// WSHandler runs lesson and quiz sessions over WebSocket.
// Every connection owns its own tracker or engine, so nothing is shared between sockets.
type WSHandler struct {
	learning       *app.LearningService
	auth           *app.AuthService
	log            logrus.FieldLogger
	persistTimeout time.Duration
	upgrader       websocket.Upgrader
}

func NewWSHandler(learning *app.LearningService, auth *app.AuthService, log logrus.FieldLogger, persistTimeout time.Duration) *WSHandler {
	return &WSHandler{
		learning:       learning,
		auth:           auth,
		log:            log,
		persistTimeout: persistTimeout,
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

type selectPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// quizState is a quiz snapshot plus the question currently shown.
type quizState struct {
	app.QuizSnapshot
	Current questionView `json:"current"`
}

// ServeLesson pages through a lesson. Clients send "next", "previous" or "state".
func (h *WSHandler) ServeLesson(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	lessonID := r.PathValue("id")
	tracker, err := h.learning.StartLesson(r.Context(), actor, lessonID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{"lesson_id": lessonID, "user_id": actor.ID})
	log.Debug("lesson session opened")
	defer log.Debug("lesson session closed")

	if !h.send(conn, "lesson", tracker.Snapshot()) {
		return
	}
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		var sent bool
		switch inbound.Type {
		case "next":
			wasCompleted := tracker.Completed()
			ctx, cancel := h.persistCtx(r.Context())
			snap, err := tracker.Next(ctx)
			cancel()
			switch {
			case err != nil:
				log.WithError(err).Error("lesson completion not persisted")
				sent = h.sendError(conn, err)
			case tracker.Completed() && !wasCompleted:
				log.WithField("time_spent", snap.TimeSpent).Info("lesson completed")
				sent = h.send(conn, "completed", snap)
			default:
				sent = h.send(conn, "lesson", snap)
			}
		case "previous":
			sent = h.send(conn, "lesson", tracker.Previous())
		case "state":
			sent = h.send(conn, "lesson", tracker.Snapshot())
		default:
			sent = h.send(conn, "error", errorPayload{Message: "unsupported message type", Code: "unsupported"})
		}
		if !sent {
			return
		}
	}
}

// ServeQuiz runs one attempt. Clients send "select" with an option index, "next", "previous",
// "submit" or "state". The answer key is only revealed in the "result" message.
func (h *WSHandler) ServeQuiz(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	quizID := r.PathValue("id")
	engine, err := h.learning.StartQuiz(r.Context(), actor, quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	quiz := engine.Quiz()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{"quiz_id": quizID, "user_id": actor.ID})
	log.Debug("quiz session opened")
	defer log.Debug("quiz session closed")

	state := func(snap app.QuizSnapshot) quizState {
		return quizState{QuizSnapshot: snap, Current: newQuestionView(quiz.Questions[snap.Question])}
	}
	submit := func() bool {
		ctx, cancel := h.persistCtx(r.Context())
		result, err := engine.Submit(ctx)
		cancel()
		return h.reportResult(conn, log, result, err)
	}

	if !h.send(conn, "quiz", state(engine.Snapshot())) {
		return
	}
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		var sent bool
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				sent = h.sendError(conn, domain.NewValidationError("option", "required"))
				break
			}
			snap, err := engine.SelectAnswer(*payload.Option)
			if err != nil {
				sent = h.sendError(conn, err)
				break
			}
			sent = h.send(conn, "quiz", state(snap))
		case "next":
			if engine.Submitted() {
				sent = submit()
				break
			}
			ctx, cancel := h.persistCtx(r.Context())
			snap, result, err := engine.Next(ctx)
			cancel()
			if result != nil {
				sent = h.reportResult(conn, log, *result, err)
				break
			}
			if err != nil {
				sent = h.sendError(conn, err)
				break
			}
			sent = h.send(conn, "quiz", state(snap))
		case "previous":
			snap, err := engine.Previous()
			if err != nil {
				sent = h.sendError(conn, err)
				break
			}
			sent = h.send(conn, "quiz", state(snap))
		case "submit":
			sent = submit()
		case "state":
			sent = h.send(conn, "quiz", state(engine.Snapshot()))
		default:
			sent = h.send(conn, "error", errorPayload{Message: "unsupported message type", Code: "unsupported"})
		}
		if !sent {
			return
		}
	}
}

// reportResult sends the result even when persisting it failed, followed by the error.
func (h *WSHandler) reportResult(conn *websocket.Conn, log logrus.FieldLogger, result app.QuizResult, err error) bool {
	if err != nil {
		log.WithError(err).Error("quiz attempt not persisted")
	} else if result.Persisted {
		log.WithField("score", result.Score).Info("quiz submitted")
	}
	if !h.send(conn, "result", result) {
		return false
	}
	if err != nil {
		return h.sendError(conn, err)
	}
	return true
}

func (h *WSHandler) authenticate(w http.ResponseWriter, r *http.Request) (domain.Profile, bool) {
	token := r.URL.Query().Get("token")
	if strings.TrimSpace(token) == "" {
		token = r.Header.Get("Authorization")
	}
	actor, err := h.auth.Authenticate(token)
	if err != nil {
		writeError(w, err)
		return domain.Profile{}, false
	}
	return actor, true
}

func (h *WSHandler) persistCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if h.persistTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.persistTimeout)
}

func (h *WSHandler) send(conn *websocket.Conn, typ string, payload any) bool {
	if err := conn.WriteJSON(outboundMessage[any]{Type: typ, Payload: payload}); err != nil {
		h.log.WithError(err).Debug("ws write failed")
		return false
	}
	return true
}

func (h *WSHandler) sendError(conn *websocket.Conn, err error) bool {
	_, payload := classify(err)
	return h.send(conn, "error", payload)
}
