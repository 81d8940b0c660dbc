package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"learnhub/internal/domain"
)

// StudentStats summarizes a student's dashboard.
type StudentStats struct {
	CompletedLessons int `json:"completedLessons"`
	TotalAttempts    int `json:"totalAttempts"`
	AverageScore     int `json:"averageScore"`
	AvailableLessons int `json:"availableLessons"`
	AvailableQuizzes int `json:"availableQuizzes"`
}

// TeacherStats summarizes the content a teacher owns.
type TeacherStats struct {
	Lessons int `json:"lessons"`
	Quizzes int `json:"quizzes"`
}

// Dashboard holds whichever stats apply to the actor's role.
type Dashboard struct {
	Role    domain.Role   `json:"role"`
	Student *StudentStats `json:"student,omitempty"`
	Teacher *TeacherStats `json:"teacher,omitempty"`
}

// LearningService contains the lesson and quiz use cases.
type LearningService struct {
	content ContentRepository
	gateway PersistenceGateway
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewLearningService(content ContentRepository, gateway PersistenceGateway, log logrus.FieldLogger) *LearningService {
	return &LearningService{content: content, gateway: gateway, log: log, now: time.Now}
}

// StartLesson loads a lesson and opens a viewing session for the actor.
func (s *LearningService) StartLesson(ctx context.Context, actor domain.Profile, lessonID string) (*LessonTracker, error) {
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, contentErr("get lesson", err)
	}
	return NewLessonTrackerWithClock(lesson, actor, s.gateway, s.now), nil
}

// StartQuiz loads a quiz and opens an attempt session; malformed quizzes are rejected here.
func (s *LearningService) StartQuiz(ctx context.Context, actor domain.Profile, quizID string) (*QuizEngine, error) {
	quiz, err := s.content.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, contentErr("get quiz", err)
	}
	engine, err := NewQuizEngineWithClock(quiz, actor, s.gateway, s.now)
	if err != nil {
		s.log.WithField("quiz_id", quizID).WithError(err).Warn("rejecting malformed quiz")
		return nil, err
	}
	return engine, nil
}

func (s *LearningService) ListLessons(ctx context.Context) ([]domain.Lesson, error) {
	lessons, err := s.content.ListLessons(ctx)
	if err != nil {
		return nil, contentErr("list lessons", err)
	}
	return lessons, nil
}

func (s *LearningService) GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error) {
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return domain.Lesson{}, contentErr("get lesson", err)
	}
	return lesson, nil
}

// CreateLesson stores a new lesson owned by the acting teacher.
func (s *LearningService) CreateLesson(ctx context.Context, actor domain.Profile, lesson domain.Lesson) (domain.Lesson, error) {
	if actor.Role != domain.RoleTeacher {
		return domain.Lesson{}, domain.ErrForbidden
	}
	if err := domain.ValidateLesson(lesson); err != nil {
		return domain.Lesson{}, err
	}
	now := s.now()
	lesson.ID = uuid.NewString()
	lesson.TeacherID = actor.ID
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	created, err := s.content.CreateLesson(ctx, lesson)
	if err != nil {
		return domain.Lesson{}, contentErr("create lesson", err)
	}
	s.log.WithFields(logrus.Fields{"lesson_id": created.ID, "teacher_id": actor.ID}).Info("lesson created")
	return created, nil
}

// UpdateLesson replaces the editable fields of a lesson the actor owns.
func (s *LearningService) UpdateLesson(ctx context.Context, actor domain.Profile, lessonID string, changes domain.Lesson) (domain.Lesson, error) {
	existing, err := s.ownedLesson(ctx, actor, lessonID)
	if err != nil {
		return domain.Lesson{}, err
	}
	existing.Title = changes.Title
	existing.Description = changes.Description
	existing.Content = changes.Content
	existing.Duration = changes.Duration
	existing.Level = changes.Level
	existing.Subject = changes.Subject
	if err := domain.ValidateLesson(existing); err != nil {
		return domain.Lesson{}, err
	}
	existing.UpdatedAt = s.now()

	updated, err := s.content.UpdateLesson(ctx, existing)
	if err != nil {
		return domain.Lesson{}, contentErr("update lesson", err)
	}
	return updated, nil
}

// DeleteLesson removes a lesson the actor owns.
func (s *LearningService) DeleteLesson(ctx context.Context, actor domain.Profile, lessonID string) error {
	if _, err := s.ownedLesson(ctx, actor, lessonID); err != nil {
		return err
	}
	if err := s.content.DeleteLesson(ctx, lessonID); err != nil {
		return contentErr("delete lesson", err)
	}
	s.log.WithFields(logrus.Fields{"lesson_id": lessonID, "teacher_id": actor.ID}).Info("lesson deleted")
	return nil
}

func (s *LearningService) ownedLesson(ctx context.Context, actor domain.Profile, lessonID string) (domain.Lesson, error) {
	if actor.Role != domain.RoleTeacher {
		return domain.Lesson{}, domain.ErrForbidden
	}
	lesson, err := s.content.GetLesson(ctx, lessonID)
	if err != nil {
		return domain.Lesson{}, contentErr("get lesson", err)
	}
	if lesson.TeacherID != actor.ID {
		return domain.Lesson{}, domain.ErrForbidden
	}
	return lesson, nil
}

func (s *LearningService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.content.ListQuizzes(ctx)
	if err != nil {
		return nil, contentErr("list quizzes", err)
	}
	return quizzes, nil
}

func (s *LearningService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.content.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, contentErr("get quiz", err)
	}
	return quiz, nil
}

// CreateQuiz validates and stores a quiz owned by the acting teacher.
// A referenced lesson must exist.
func (s *LearningService) CreateQuiz(ctx context.Context, actor domain.Profile, quiz domain.Quiz) (domain.Quiz, error) {
	if actor.Role != domain.RoleTeacher {
		return domain.Quiz{}, domain.ErrForbidden
	}
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if quiz.LessonID != "" {
		if _, err := s.content.GetLesson(ctx, quiz.LessonID); err != nil {
			return domain.Quiz{}, contentErr("get lesson", err)
		}
	}
	now := s.now()
	quiz.ID = uuid.NewString()
	quiz.TeacherID = actor.ID
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	questions := make([]domain.QuizQuestion, len(quiz.Questions))
	for i, q := range quiz.Questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		questions[i] = q
	}
	quiz.Questions = questions

	created, err := s.content.CreateQuiz(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, contentErr("create quiz", err)
	}
	s.log.WithFields(logrus.Fields{"quiz_id": created.ID, "teacher_id": actor.ID, "questions": len(created.Questions)}).Info("quiz created")
	return created, nil
}

// DeleteQuiz removes a quiz the actor owns. Attempts already recorded are kept.
func (s *LearningService) DeleteQuiz(ctx context.Context, actor domain.Profile, quizID string) error {
	if actor.Role != domain.RoleTeacher {
		return domain.ErrForbidden
	}
	quiz, err := s.content.GetQuiz(ctx, quizID)
	if err != nil {
		return contentErr("get quiz", err)
	}
	if quiz.TeacherID != actor.ID {
		return domain.ErrForbidden
	}
	if err := s.content.DeleteQuiz(ctx, quizID); err != nil {
		return contentErr("delete quiz", err)
	}
	return nil
}

// LessonProgress returns the actor's stored progress for a lesson.
func (s *LearningService) LessonProgress(ctx context.Context, actor domain.Profile, lessonID string) (domain.LessonProgress, error) {
	p, err := s.gateway.GetLessonProgress(ctx, actor.ID, lessonID)
	if err != nil {
		return domain.LessonProgress{}, contentErr("get lesson progress", err)
	}
	return p, nil
}

func (s *LearningService) ListProgress(ctx context.Context, actor domain.Profile) ([]domain.LessonProgress, error) {
	rows, err := s.gateway.ListLessonProgress(ctx, actor.ID)
	if err != nil {
		return nil, contentErr("list lesson progress", err)
	}
	return rows, nil
}

// Attempts lists the actor's attempts newest first, optionally for a single quiz.
func (s *LearningService) Attempts(ctx context.Context, actor domain.Profile, quizID string) ([]domain.QuizAttempt, error) {
	attempts, err := s.gateway.ListQuizAttempts(ctx, actor.ID, quizID)
	if err != nil {
		return nil, contentErr("list quiz attempts", err)
	}
	return attempts, nil
}

// Dashboard computes role specific stats for the actor.
func (s *LearningService) Dashboard(ctx context.Context, actor domain.Profile) (Dashboard, error) {
	lessons, err := s.ListLessons(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	quizzes, err := s.ListQuizzes(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	if actor.Role == domain.RoleTeacher {
		stats := &TeacherStats{}
		for _, l := range lessons {
			if l.TeacherID == actor.ID {
				stats.Lessons++
			}
		}
		for _, q := range quizzes {
			if q.TeacherID == actor.ID {
				stats.Quizzes++
			}
		}
		return Dashboard{Role: actor.Role, Teacher: stats}, nil
	}

	attempts, err := s.Attempts(ctx, actor, "")
	if err != nil {
		return Dashboard{}, err
	}
	progress, err := s.ListProgress(ctx, actor)
	if err != nil {
		return Dashboard{}, err
	}
	stats := &StudentStats{
		TotalAttempts:    len(attempts),
		AvailableLessons: len(lessons),
		AvailableQuizzes: len(quizzes),
	}
	if len(attempts) > 0 {
		sum := 0
		for _, a := range attempts {
			sum += a.Score
		}
		stats.AverageScore = Percent(sum, len(attempts)*100)
	}
	for _, p := range progress {
		if p.Completed {
			stats.CompletedLessons++
		}
	}
	return Dashboard{Role: actor.Role, Student: stats}, nil
}

// contentErr passes through domain errors and wraps storage failures.
func contentErr(op string, err error) error {
	for _, known := range []error{
		domain.ErrLessonNotFound,
		domain.ErrQuizNotFound,
		domain.ErrProgressNotFound,
		domain.ErrForbidden,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	if domain.IsValidation(err) || domain.IsPersistence(err) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
