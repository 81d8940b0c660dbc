package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/app"
	"learnhub/internal/domain"
	"learnhub/internal/infra/memory"
)

func newLearning(t *testing.T, quizzes ...domain.Quiz) (*app.LearningService, *recordingGateway, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	if len(quizzes) == 0 {
		quizzes = []domain.Quiz{sampleQuiz()}
	}
	content := memory.NewContentStore([]domain.Lesson{sampleLesson("a\n\nb")}, quizzes)
	gw := &recordingGateway{}
	return app.NewLearningService(content, gw, log), gw, hook
}

func validLesson() domain.Lesson {
	return domain.Lesson{
		Title: "Decimals", Description: "Tenths", Content: "x\n\ny",
		Duration: 15, Level: domain.LevelIntermediate, Subject: "Math",
	}
}

func TestCreateLessonAssignsOwnerAndID(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newLearning(t)

	_, err := svc.CreateLesson(ctx, student, validLesson())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	created, err := svc.CreateLesson(ctx, teacher, validLesson())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, teacher.ID, created.TeacherID)
	assert.False(t, created.CreatedAt.IsZero())

	lessons, err := svc.ListLessons(ctx)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, created.ID, lessons[0].ID, "newest first")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "lesson created", entry.Message)
	assert.Equal(t, created.ID, entry.Data["lesson_id"])
}

func TestCreateLessonValidates(t *testing.T) {
	svc, _, _ := newLearning(t)
	l := validLesson()
	l.Level = "expert"
	l.Duration = 0
	_, err := svc.CreateLesson(context.Background(), teacher, l)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "level")
	assert.Contains(t, ve.Fields, "duration")
}

func TestUpdateAndDeleteLessonRequireOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newLearning(t)
	other := domain.Profile{ID: "t2", Role: domain.RoleTeacher}

	changes := validLesson()
	_, err := svc.UpdateLesson(ctx, other, "l1", changes)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.UpdateLesson(ctx, teacher, "missing", changes)
	assert.ErrorIs(t, err, domain.ErrLessonNotFound)

	updated, err := svc.UpdateLesson(ctx, teacher, "l1", changes)
	require.NoError(t, err)
	assert.Equal(t, "Decimals", updated.Title)
	assert.Equal(t, "l1", updated.ID)
	assert.Equal(t, teacher.ID, updated.TeacherID)

	assert.ErrorIs(t, svc.DeleteLesson(ctx, student, "l1"), domain.ErrForbidden)
	require.NoError(t, svc.DeleteLesson(ctx, teacher, "l1"))
	_, err = svc.GetLesson(ctx, "l1")
	assert.ErrorIs(t, err, domain.ErrLessonNotFound)
}

func TestCreateQuizChecksLessonAndAssignsQuestionIDs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newLearning(t)

	q := sampleQuiz()
	q.ID = ""
	q.Questions[0].ID = ""
	q.LessonID = "missing"
	_, err := svc.CreateQuiz(ctx, teacher, q)
	assert.ErrorIs(t, err, domain.ErrLessonNotFound)

	q.LessonID = "l1"
	_, err = svc.CreateQuiz(ctx, student, q)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	created, err := svc.CreateQuiz(ctx, teacher, q)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Questions[0].ID)
	assert.Equal(t, "b", created.Questions[1].ID)

	other := domain.Profile{ID: "t2", Role: domain.RoleTeacher}
	assert.ErrorIs(t, svc.DeleteQuiz(ctx, other, created.ID), domain.ErrForbidden)
	require.NoError(t, svc.DeleteQuiz(ctx, teacher, created.ID))
	_, err = svc.GetQuiz(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestStartQuizRejectsMalformedQuiz(t *testing.T) {
	bad := sampleQuiz()
	bad.ID = "bad"
	bad.Questions[0].CorrectAnswer = 10
	svc, _, hook := newLearning(t, bad)

	_, err := svc.StartQuiz(context.Background(), student, "bad")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "bad", entry.Data["quiz_id"])

	_, err = svc.StartQuiz(context.Background(), student, "missing")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestSessionsStartedFromServiceUseTheGateway(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := newLearning(t)

	tracker, err := svc.StartLesson(ctx, student, "l1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = tracker.Next(ctx)
		require.NoError(t, err)
	}
	p, err := svc.LessonProgress(ctx, student, "l1")
	require.NoError(t, err)
	assert.True(t, p.Completed)

	engine, err := svc.StartQuiz(ctx, student, "q1")
	require.NoError(t, err)
	_, err = engine.SelectAnswer(2)
	require.NoError(t, err)
	_, err = engine.Submit(ctx)
	require.NoError(t, err)

	attempts, err := svc.Attempts(ctx, student, "q1")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 50, attempts[0].Score)

	progress, attemptCount := gw.writes()
	assert.Equal(t, 1, progress)
	assert.Equal(t, 1, attemptCount)
}

func TestDashboardByRole(t *testing.T) {
	ctx := context.Background()
	svc, gw, _ := newLearning(t)
	now := time.Now()
	gw.attempts = []domain.QuizAttempt{
		{ID: "1", StudentID: student.ID, QuizID: "q1", Score: 100, CompletedAt: now},
		{ID: "2", StudentID: student.ID, QuizID: "q1", Score: 50, CompletedAt: now},
		{ID: "3", StudentID: student.ID, QuizID: "q1", Score: 0, CompletedAt: now},
		{ID: "4", StudentID: "someone-else", QuizID: "q1", Score: 0, CompletedAt: now},
	}
	gw.progress = []domain.LessonProgress{
		{StudentID: student.ID, LessonID: "l1", Completed: true, ProgressPercentage: 100},
	}

	d, err := svc.Dashboard(ctx, student)
	require.NoError(t, err)
	require.NotNil(t, d.Student)
	assert.Nil(t, d.Teacher)
	assert.Equal(t, 3, d.Student.TotalAttempts)
	assert.Equal(t, 50, d.Student.AverageScore)
	assert.Equal(t, 1, d.Student.CompletedLessons)
	assert.Equal(t, 1, d.Student.AvailableLessons)
	assert.Equal(t, 1, d.Student.AvailableQuizzes)

	d, err = svc.Dashboard(ctx, teacher)
	require.NoError(t, err)
	require.NotNil(t, d.Teacher)
	assert.Equal(t, 1, d.Teacher.Lessons)
	assert.Equal(t, 1, d.Teacher.Quizzes)
}

func TestStorageFailuresAreWrapped(t *testing.T) {
	svc, gw, _ := newLearning(t)
	gw.fail = errStorageDown
	tracker, err := svc.StartLesson(context.Background(), student, "l1")
	require.NoError(t, err)
	_, _ = tracker.Next(context.Background())
	_, err = tracker.Next(context.Background())
	require.Error(t, err)
	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "upsert lesson progress", pe.Op)
}
