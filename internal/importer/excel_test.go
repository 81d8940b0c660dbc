package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"learnhub/internal/app"
	"learnhub/internal/domain"
	"learnhub/internal/infra/memory"
)

var teacher = domain.Profile{ID: "t1", Role: domain.RoleTeacher}

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	path := filepath.Join(t.TempDir(), "content.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newImporter(t *testing.T) (*Importer, *app.LearningService) {
	t.Helper()
	log, _ := test.NewNullLogger()
	learning := app.NewLearningService(memory.NewContentStore(nil, nil), memory.NewProgressGateway(), log)
	return New(learning, log), learning
}

func TestImportFileCreatesLessonsAndQuizzes(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		LessonsSheet: {
			{"title", "description", "content", "duration", "level", "subject"},
			{"Fractions", "Halves", "Intro\n\nHalves\n\nQuarters", 20, "Beginner", "Math"},
			{},
			{"Broken", "No level", "Body", 5, "expert", "Math"},
		},
		QuizzesSheet: {
			{"quiz", "description", "lesson", "question", "o1", "o2", "o3", "o4", "correct", "explanation"},
			{"Fraction check", "Warm up", "fractions", "Half of 8?", "2", "4", "6", "", 2, "8 / 2"},
			{"Fraction check", "", "", "Quarter of 8?", "2", "4", "", "", 1},
			{"Bad key", "", "", "Pick one", "a", "b", "", "", "first"},
		},
	})
	im, learning := newImporter(t)

	result, err := im.ImportFile(context.Background(), path, teacher)
	require.NoError(t, err)
	assert.Equal(t, 1, result.LessonsCreated)
	assert.Equal(t, 1, result.QuizzesCreated)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Lessons row 4")
	assert.Contains(t, result.Errors[1], "Quizzes row 4")

	lessons, err := learning.ListLessons(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, domain.LevelBeginner, lessons[0].Level)
	assert.Equal(t, []string{"Intro", "Halves", "Quarters"}, app.Paginate(lessons[0].Content))

	quizzes, err := learning.ListQuizzes(context.Background())
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	quiz := quizzes[0]
	assert.Equal(t, lessons[0].ID, quiz.LessonID)
	assert.Equal(t, teacher.ID, quiz.TeacherID)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, []string{"2", "4", "6"}, quiz.Questions[0].Options)
	assert.Equal(t, 1, quiz.Questions[0].CorrectAnswer)
	assert.Equal(t, "8 / 2", quiz.Questions[0].Explanation)
	assert.Equal(t, 0, quiz.Questions[1].CorrectAnswer)
}

func TestImportRejectsStudentsAndUnknownWorkbooks(t *testing.T) {
	im, _ := newImporter(t)
	path := writeWorkbook(t, map[string][][]any{"Other": {{"x"}}})

	_, err := im.ImportFile(context.Background(), path, domain.Profile{ID: "s1", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = im.ImportFile(context.Background(), path, teacher)
	assert.Error(t, err)

	_, err = im.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), teacher)
	assert.Error(t, err)
}

func TestQuizReferencingUnknownLessonIsReported(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		QuizzesSheet: {
			{"quiz", "description", "lesson", "question", "o1", "o2", "o3", "o4", "correct"},
			{"Orphan", "", "no-such-lesson", "?", "a", "b", "", "", 1},
		},
	})
	im, _ := newImporter(t)
	result, err := im.ImportFile(context.Background(), path, teacher)
	require.NoError(t, err)
	assert.Zero(t, result.QuizzesCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Quizzes row 2")
}
