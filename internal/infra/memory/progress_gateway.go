package memory

import (
	"context"
	"sort"
	"sync"

	"learnhub/internal/domain"
)

type progressKey struct {
	studentID string
	lessonID  string
}

// ProgressGateway is an in-memory implementation of app.PersistenceGateway.
type ProgressGateway struct {
	mu       sync.RWMutex
	progress map[progressKey]domain.LessonProgress
	attempts []domain.QuizAttempt
}

func NewProgressGateway() *ProgressGateway {
	return &ProgressGateway{
		progress: make(map[progressKey]domain.LessonProgress),
	}
}

func (g *ProgressGateway) UpsertLessonProgress(_ context.Context, p domain.LessonProgress) (domain.LessonProgress, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.progress[progressKey{p.StudentID, p.LessonID}] = p
	return p, nil
}

func (g *ProgressGateway) GetLessonProgress(_ context.Context, studentID, lessonID string) (domain.LessonProgress, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.progress[progressKey{studentID, lessonID}]
	if !ok {
		return domain.LessonProgress{}, domain.ErrProgressNotFound
	}
	return p, nil
}

func (g *ProgressGateway) ListLessonProgress(_ context.Context, studentID string) ([]domain.LessonProgress, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.LessonProgress, 0)
	for key, p := range g.progress {
		if key.studentID == studentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (g *ProgressGateway) InsertQuizAttempt(_ context.Context, a domain.QuizAttempt) (domain.QuizAttempt, error) {
	a.Answers = append([]int(nil), a.Answers...)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts = append(g.attempts, a)
	return a, nil
}

func (g *ProgressGateway) ListQuizAttempts(_ context.Context, studentID, quizID string) ([]domain.QuizAttempt, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.QuizAttempt, 0)
	for i := len(g.attempts) - 1; i >= 0; i-- {
		a := g.attempts[i]
		if a.StudentID != studentID {
			continue
		}
		if quizID != "" && a.QuizID != quizID {
			continue
		}
		a.Answers = append([]int(nil), a.Answers...)
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}
