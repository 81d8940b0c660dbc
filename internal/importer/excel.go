// Package importer loads lessons and quizzes authored in a spreadsheet.
//
// The workbook has up to two sheets, each with a header row:
//
//	Lessons: title | description | content | duration | level | subject
//	Quizzes: quiz title | description | lesson | question | option 1..4 | correct | explanation
//
// Quiz rows sharing a title form one quiz, questions in row order. The lesson column holds the
// title of a lesson from the same workbook or the ID of an existing lesson. The correct column is
// the 1-based option number.
package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"learnhub/internal/app"
	"learnhub/internal/domain"
)

const (
	LessonsSheet = "Lessons"
	QuizzesSheet = "Quizzes"

	maxOptions = 4
)

// Result counts what an import created. Row errors do not stop the import.
type Result struct {
	LessonsCreated int      `json:"lessonsCreated"`
	QuizzesCreated int      `json:"quizzesCreated"`
	Errors         []string `json:"errors,omitempty"`
}

func (r *Result) addError(sheet string, row int, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s row %d: %v", sheet, row, err))
}

type Importer struct {
	learning *app.LearningService
	log      logrus.FieldLogger
}

func New(learning *app.LearningService, log logrus.FieldLogger) *Importer {
	return &Importer{learning: learning, log: log}
}

// ImportFile opens an xlsx workbook and imports it on behalf of the teacher.
func (im *Importer) ImportFile(ctx context.Context, path string, teacher domain.Profile) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return im.Import(ctx, f, teacher)
}

// Import creates every lesson, then every quiz, through the learning service so the usual
// validation and ownership rules apply.
func (im *Importer) Import(ctx context.Context, f *excelize.File, teacher domain.Profile) (*Result, error) {
	if teacher.Role != domain.RoleTeacher {
		return nil, domain.ErrForbidden
	}
	sheets := map[string]bool{}
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}
	if !sheets[LessonsSheet] && !sheets[QuizzesSheet] {
		return nil, fmt.Errorf("workbook has neither a %q nor a %q sheet", LessonsSheet, QuizzesSheet)
	}

	result := &Result{}
	lessonIDs := map[string]string{}
	if sheets[LessonsSheet] {
		rows, err := f.GetRows(LessonsSheet)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", LessonsSheet, err)
		}
		for i, row := range dataRows(rows) {
			if blank(row) {
				continue
			}
			lesson, err := parseLesson(row)
			if err == nil {
				lesson, err = im.learning.CreateLesson(ctx, teacher, lesson)
			}
			if err != nil {
				result.addError(LessonsSheet, i+2, err)
				continue
			}
			lessonIDs[strings.ToLower(lesson.Title)] = lesson.ID
			result.LessonsCreated++
		}
	}

	if sheets[QuizzesSheet] {
		rows, err := f.GetRows(QuizzesSheet)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", QuizzesSheet, err)
		}
		for _, draft := range groupQuizzes(dataRows(rows), result) {
			quiz := draft.quiz
			if id, ok := lessonIDs[strings.ToLower(quiz.LessonID)]; ok {
				quiz.LessonID = id
			}
			if _, err := im.learning.CreateQuiz(ctx, teacher, quiz); err != nil {
				result.addError(QuizzesSheet, draft.firstRow, err)
				continue
			}
			result.QuizzesCreated++
		}
	}

	im.log.WithFields(logrus.Fields{
		"teacher_id": teacher.ID,
		"lessons":    result.LessonsCreated,
		"quizzes":    result.QuizzesCreated,
		"errors":     len(result.Errors),
	}).Info("workbook imported")
	return result, nil
}

// dataRows drops the header row. Row i of the result is sheet row i+2.
func dataRows(rows [][]string) [][]string {
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// content keeps inner line breaks so blank lines still separate pages.
func content(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(row[i], "\r\n", "\n"))
}

func parseLesson(row []string) (domain.Lesson, error) {
	duration, err := strconv.Atoi(cell(row, 3))
	if err != nil {
		return domain.Lesson{}, domain.NewValidationError("duration", "must be a whole number of minutes")
	}
	return domain.Lesson{
		Title:       cell(row, 0),
		Description: cell(row, 1),
		Content:     content(row, 2),
		Duration:    duration,
		Level:       domain.Level(strings.ToLower(cell(row, 4))),
		Subject:     cell(row, 5),
	}, nil
}

type quizDraft struct {
	quiz     domain.Quiz
	firstRow int
	broken   bool
}

// groupQuizzes folds question rows into quizzes keyed by title, keeping first-seen order.
// A quiz with any unreadable question row is left out entirely.
func groupQuizzes(rows [][]string, result *Result) []*quizDraft {
	var order []*quizDraft
	byTitle := map[string]*quizDraft{}
	for i, row := range rows {
		rowNum := i + 2
		if blank(row) {
			continue
		}
		title := cell(row, 0)
		if title == "" {
			result.addError(QuizzesSheet, rowNum, domain.NewValidationError("title", "required"))
			continue
		}
		draft, ok := byTitle[strings.ToLower(title)]
		if !ok {
			draft = &quizDraft{
				quiz:     domain.Quiz{Title: title, Description: cell(row, 1), LessonID: cell(row, 2)},
				firstRow: rowNum,
			}
			byTitle[strings.ToLower(title)] = draft
			order = append(order, draft)
		}
		question, err := parseQuestion(row)
		if err != nil {
			result.addError(QuizzesSheet, rowNum, err)
			draft.broken = true
			continue
		}
		draft.quiz.Questions = append(draft.quiz.Questions, question)
	}
	out := order[:0]
	for _, d := range order {
		if !d.broken {
			out = append(out, d)
		}
	}
	return out
}

func parseQuestion(row []string) (domain.QuizQuestion, error) {
	var options []string
	for i := 0; i < maxOptions; i++ {
		if opt := cell(row, 4+i); opt != "" {
			options = append(options, opt)
		}
	}
	correct, err := strconv.Atoi(cell(row, 4+maxOptions))
	if err != nil {
		return domain.QuizQuestion{}, domain.NewValidationError("correct", "must be an option number")
	}
	return domain.QuizQuestion{
		Question:      cell(row, 3),
		Options:       options,
		CorrectAnswer: correct - 1,
		Explanation:   cell(row, 5+maxOptions),
	}, nil
}
