package memory

import (
	"context"
	"sync"

	"learnhub/internal/domain"
)

// ContentStore is an in-memory app.ContentRepository, useful for demos and tests.
// Newest items are listed first.
type ContentStore struct {
	mu          sync.RWMutex
	lessons     map[string]domain.Lesson
	lessonOrder []string
	quizzes     map[string]domain.Quiz
	quizOrder   []string
}

// NewContentStore seeds the store; the given order is the initial listing order.
func NewContentStore(lessons []domain.Lesson, quizzes []domain.Quiz) *ContentStore {
	s := &ContentStore{
		lessons: make(map[string]domain.Lesson, len(lessons)),
		quizzes: make(map[string]domain.Quiz, len(quizzes)),
	}
	for _, l := range lessons {
		s.lessons[l.ID] = l
		s.lessonOrder = append(s.lessonOrder, l.ID)
	}
	for _, q := range quizzes {
		s.quizzes[q.ID] = cloneQuiz(q)
		s.quizOrder = append(s.quizOrder, q.ID)
	}
	return s
}

func (s *ContentStore) ListLessons(_ context.Context) ([]domain.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Lesson, 0, len(s.lessonOrder))
	for _, id := range s.lessonOrder {
		out = append(out, s.lessons[id])
	}
	return out, nil
}

func (s *ContentStore) GetLesson(_ context.Context, lessonID string) (domain.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.lessons[lessonID]; ok {
		return l, nil
	}
	return domain.Lesson{}, domain.ErrLessonNotFound
}

func (s *ContentStore) CreateLesson(_ context.Context, lesson domain.Lesson) (domain.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons[lesson.ID] = lesson
	s.lessonOrder = prepend(s.lessonOrder, lesson.ID)
	return lesson, nil
}

func (s *ContentStore) UpdateLesson(_ context.Context, lesson domain.Lesson) (domain.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[lesson.ID]; !ok {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	s.lessons[lesson.ID] = lesson
	return lesson, nil
}

func (s *ContentStore) DeleteLesson(_ context.Context, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[lessonID]; !ok {
		return domain.ErrLessonNotFound
	}
	delete(s.lessons, lessonID)
	s.lessonOrder = without(s.lessonOrder, lessonID)
	return nil
}

func (s *ContentStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizOrder))
	for _, id := range s.quizOrder {
		out = append(out, cloneQuiz(s.quizzes[id]))
	}
	return out, nil
}

func (s *ContentStore) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q, ok := s.quizzes[quizID]; ok {
		return cloneQuiz(q), nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *ContentStore) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	s.quizOrder = prepend(s.quizOrder, quiz.ID)
	return quiz, nil
}

func (s *ContentStore) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	s.quizOrder = without(s.quizOrder, quizID)
	return nil
}

// cloneQuiz copies the question and option slices so callers cannot mutate stored quizzes.
func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}

func prepend(ids []string, id string) []string {
	return append([]string{id}, ids...)
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
