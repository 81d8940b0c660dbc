package app

import (
	"context"

	"learnhub/internal/domain"
)

// ContentRepository supplies lesson and quiz definitions. Lists are most recently created first.
type ContentRepository interface {
	ListLessons(ctx context.Context) ([]domain.Lesson, error)
	GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error)
	CreateLesson(ctx context.Context, lesson domain.Lesson) (domain.Lesson, error)
	UpdateLesson(ctx context.Context, lesson domain.Lesson) (domain.Lesson, error)
	DeleteLesson(ctx context.Context, lessonID string) error

	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string) error
}

// PersistenceGateway stores learner progress and quiz attempts (in-memory, Redis, Postgres).
type PersistenceGateway interface {
	// UpsertLessonProgress replaces any existing row for the same student and lesson.
	UpsertLessonProgress(ctx context.Context, progress domain.LessonProgress) (domain.LessonProgress, error)
	GetLessonProgress(ctx context.Context, studentID, lessonID string) (domain.LessonProgress, error)
	ListLessonProgress(ctx context.Context, studentID string) ([]domain.LessonProgress, error)

	// InsertQuizAttempt always appends; attempts are never replaced.
	InsertQuizAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error)
	// ListQuizAttempts returns attempts newest first. An empty quizID lists every quiz.
	ListQuizAttempts(ctx context.Context, studentID, quizID string) ([]domain.QuizAttempt, error)
}

// UserStore keeps accounts for sign in.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}
