package http

import (
	"net/http"

	"learnhub/internal/app"
	"learnhub/internal/domain"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string         `json:"token"`
	Profile domain.Profile `json:"profile"`
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	profile, token, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, Profile: profile})
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req app.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	profile, token, err := s.auth.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, Profile: profile})
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, actor domain.Profile) {
	writeJSON(w, http.StatusOK, actor)
}

// lessonRequest is the editable part of a lesson.
type lessonRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Content     string       `json:"content"`
	Duration    int          `json:"duration"`
	Level       domain.Level `json:"level"`
	Subject     string       `json:"subject"`
}

func (l lessonRequest) toLesson() domain.Lesson {
	return domain.Lesson{
		Title:       l.Title,
		Description: l.Description,
		Content:     l.Content,
		Duration:    l.Duration,
		Level:       l.Level,
		Subject:     l.Subject,
	}
}

func (s *Server) listLessons(w http.ResponseWriter, r *http.Request, _ domain.Profile) {
	lessons, err := s.learning.ListLessons(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (s *Server) getLesson(w http.ResponseWriter, r *http.Request, _ domain.Profile) {
	lesson, err := s.learning.GetLesson(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) createLesson(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	var req lessonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	lesson, err := s.learning.CreateLesson(r.Context(), actor, req.toLesson())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lesson)
}

func (s *Server) updateLesson(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	var req lessonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	lesson, err := s.learning.UpdateLesson(r.Context(), actor, r.PathValue("id"), req.toLesson())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) deleteLesson(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	if err := s.learning.DeleteLesson(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lessonProgress(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	progress, err := s.learning.LessonProgress(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

type quizRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	LessonID    string                `json:"lessonId"`
	Questions   []domain.QuizQuestion `json:"questions"`
}

// questionView hides the answer key from learners before they submit.
type questionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type quizView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	LessonID    string         `json:"lessonId"`
	TeacherID   string         `json:"teacherId"`
	Questions   []questionView `json:"questions"`
}

func newQuestionView(q domain.QuizQuestion) questionView {
	return questionView{ID: q.ID, Question: q.Question, Options: q.Options}
}

func newQuizView(q domain.Quiz) quizView {
	questions := make([]questionView, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = newQuestionView(question)
	}
	return quizView{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		LessonID:    q.LessonID,
		TeacherID:   q.TeacherID,
		Questions:   questions,
	}
}

// quizFor returns the full quiz to teachers and the answer-free view to everyone else.
func quizFor(actor domain.Profile, q domain.Quiz) any {
	if actor.Role == domain.RoleTeacher {
		return q
	}
	return newQuizView(q)
}

func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	quizzes, err := s.learning.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]any, len(quizzes))
	for i, q := range quizzes {
		out[i] = quizFor(actor, q)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	quiz, err := s.learning.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizFor(actor, quiz))
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	var req quizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := s.learning.CreateQuiz(r.Context(), actor, domain.Quiz{
		Title:       req.Title,
		Description: req.Description,
		LessonID:    req.LessonID,
		Questions:   req.Questions,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (s *Server) deleteQuiz(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	if err := s.learning.DeleteQuiz(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAttempts(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	attempts, err := s.learning.Attempts(r.Context(), actor, r.URL.Query().Get("quizId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (s *Server) listProgress(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	rows, err := s.learning.ListProgress(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request, actor domain.Profile) {
	d, err := s.learning.Dashboard(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
