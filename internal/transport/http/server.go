package http

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"learnhub/internal/app"
	"learnhub/internal/domain"
)

// Server exposes the learning use cases over REST and WebSocket.
type Server struct {
	learning       *app.LearningService
	auth           *app.AuthService
	log            logrus.FieldLogger
	persistTimeout time.Duration
	ws             *WSHandler
}

func NewServer(learning *app.LearningService, auth *app.AuthService, log logrus.FieldLogger, persistTimeout time.Duration) *Server {
	s := &Server{
		learning:       learning,
		auth:           auth,
		log:            log,
		persistTimeout: persistTimeout,
	}
	s.ws = NewWSHandler(learning, auth, log, persistTimeout)
	return s
}

// Routes builds the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /auth/signin", s.signIn)
	mux.HandleFunc("POST /auth/signup", s.signUp)
	mux.Handle("GET /me", s.authed(s.me))

	mux.Handle("GET /lessons", s.authed(s.listLessons))
	mux.Handle("POST /lessons", s.authed(s.createLesson))
	mux.Handle("GET /lessons/{id}", s.authed(s.getLesson))
	mux.Handle("PUT /lessons/{id}", s.authed(s.updateLesson))
	mux.Handle("DELETE /lessons/{id}", s.authed(s.deleteLesson))
	mux.Handle("GET /lessons/{id}/progress", s.authed(s.lessonProgress))

	mux.Handle("GET /quizzes", s.authed(s.listQuizzes))
	mux.Handle("POST /quizzes", s.authed(s.createQuiz))
	mux.Handle("GET /quizzes/{id}", s.authed(s.getQuiz))
	mux.Handle("DELETE /quizzes/{id}", s.authed(s.deleteQuiz))

	mux.Handle("GET /attempts", s.authed(s.listAttempts))
	mux.Handle("GET /progress", s.authed(s.listProgress))
	mux.Handle("GET /dashboard", s.authed(s.dashboard))

	mux.HandleFunc("GET /ws/lessons/{id}", s.ws.ServeLesson)
	mux.HandleFunc("GET /ws/quizzes/{id}", s.ws.ServeQuiz)

	return s.logRequests(mux)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, actor domain.Profile)

func (s *Server) authed(h authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := s.auth.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, err)
			return
		}
		h(w, r, actor)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
