package app_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"learnhub/internal/domain"
)

var (
	student = domain.Profile{ID: "s1", Email: "ana@student.com", FullName: "Ana", Role: domain.RoleStudent}
	teacher = domain.Profile{ID: "t1", Email: "tom@teacher.com", FullName: "Tom", Role: domain.RoleTeacher}
)

var errStorageDown = errors.New("storage down")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingGateway keeps every write it receives and can be told to fail.
type recordingGateway struct {
	mu       sync.Mutex
	progress []domain.LessonProgress
	attempts []domain.QuizAttempt
	fail     error
}

func (g *recordingGateway) UpsertLessonProgress(_ context.Context, p domain.LessonProgress) (domain.LessonProgress, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.progress = append(g.progress, p)
	if g.fail != nil {
		return domain.LessonProgress{}, g.fail
	}
	return p, nil
}

func (g *recordingGateway) GetLessonProgress(_ context.Context, studentID, lessonID string) (domain.LessonProgress, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.progress) - 1; i >= 0; i-- {
		p := g.progress[i]
		if p.StudentID == studentID && p.LessonID == lessonID {
			return p, nil
		}
	}
	return domain.LessonProgress{}, domain.ErrProgressNotFound
}

func (g *recordingGateway) ListLessonProgress(_ context.Context, studentID string) ([]domain.LessonProgress, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.LessonProgress
	for _, p := range g.progress {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (g *recordingGateway) InsertQuizAttempt(_ context.Context, a domain.QuizAttempt) (domain.QuizAttempt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts = append(g.attempts, a)
	if g.fail != nil {
		return domain.QuizAttempt{}, g.fail
	}
	return a, nil
}

func (g *recordingGateway) ListQuizAttempts(_ context.Context, studentID, quizID string) ([]domain.QuizAttempt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.QuizAttempt
	for i := len(g.attempts) - 1; i >= 0; i-- {
		a := g.attempts[i]
		if a.StudentID == studentID && (quizID == "" || a.QuizID == quizID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (g *recordingGateway) writes() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.progress), len(g.attempts)
}

func sampleLesson(content string) domain.Lesson {
	return domain.Lesson{
		ID: "l1", Title: "Fractions", Description: "Halves and quarters", Content: content,
		Duration: 10, Level: domain.LevelBeginner, Subject: "Math", TeacherID: teacher.ID,
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "q1", Title: "Sums", LessonID: "l1", TeacherID: teacher.ID,
		Questions: []domain.QuizQuestion{
			{ID: "a", Question: "3+4?", Options: []string{"6", "8", "7", "9"}, CorrectAnswer: 2},
			{ID: "b", Question: "1+2?", Options: []string{"2", "3", "4"}, CorrectAnswer: 1},
		},
	}
}
