package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"learnhub/internal/domain"
)

type lessonProgressRow struct {
	bun.BaseModel `bun:"table:lesson_progress"`

	StudentID          string     `bun:"student_id,pk"`
	LessonID           string     `bun:"lesson_id,pk"`
	Completed          bool       `bun:"completed,notnull"`
	ProgressPercentage int        `bun:"progress_percentage,notnull"`
	TimeSpent          int        `bun:"time_spent,notnull"`
	CompletedAt        *time.Time `bun:"completed_at"`
	UpdatedAt          time.Time  `bun:"updated_at,notnull"`
}

func (r lessonProgressRow) toDomain() domain.LessonProgress {
	return domain.LessonProgress{
		StudentID:          r.StudentID,
		LessonID:           r.LessonID,
		Completed:          r.Completed,
		ProgressPercentage: r.ProgressPercentage,
		TimeSpent:          r.TimeSpent,
		CompletedAt:        r.CompletedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type quizAttemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts"`

	ID          string    `bun:"id,pk"`
	StudentID   string    `bun:"student_id,notnull"`
	QuizID      string    `bun:"quiz_id,notnull"`
	Answers     []int     `bun:"answers,array"`
	Score       int       `bun:"score,notnull"`
	CompletedAt time.Time `bun:"completed_at,notnull"`
}

func (r quizAttemptRow) toDomain() domain.QuizAttempt {
	return domain.QuizAttempt{
		ID:          r.ID,
		StudentID:   r.StudentID,
		QuizID:      r.QuizID,
		Answers:     r.Answers,
		Score:       r.Score,
		CompletedAt: r.CompletedAt,
	}
}

// ProgressGateway stores progress rows and attempts through bun.
type ProgressGateway struct {
	db *bun.DB
}

func NewProgressGateway(db *bun.DB) *ProgressGateway {
	return &ProgressGateway{db: db}
}

func (g *ProgressGateway) UpsertLessonProgress(ctx context.Context, p domain.LessonProgress) (domain.LessonProgress, error) {
	row := lessonProgressRow{
		StudentID:          p.StudentID,
		LessonID:           p.LessonID,
		Completed:          p.Completed,
		ProgressPercentage: p.ProgressPercentage,
		TimeSpent:          p.TimeSpent,
		CompletedAt:        p.CompletedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	_, err := g.db.NewInsert().
		Model(&row).
		On("CONFLICT (student_id, lesson_id) DO UPDATE").
		Set("completed = EXCLUDED.completed").
		Set("progress_percentage = EXCLUDED.progress_percentage").
		Set("time_spent = EXCLUDED.time_spent").
		Set("completed_at = EXCLUDED.completed_at").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.LessonProgress{}, fmt.Errorf("upsert lesson progress: %w", err)
	}
	return row.toDomain(), nil
}

func (g *ProgressGateway) GetLessonProgress(ctx context.Context, studentID, lessonID string) (domain.LessonProgress, error) {
	var row lessonProgressRow
	err := g.db.NewSelect().
		Model(&row).
		Where("student_id = ?", studentID).
		Where("lesson_id = ?", lessonID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LessonProgress{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.LessonProgress{}, fmt.Errorf("get lesson progress: %w", err)
	}
	return row.toDomain(), nil
}

func (g *ProgressGateway) ListLessonProgress(ctx context.Context, studentID string) ([]domain.LessonProgress, error) {
	var rows []lessonProgressRow
	err := g.db.NewSelect().
		Model(&rows).
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lesson progress: %w", err)
	}
	out := make([]domain.LessonProgress, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (g *ProgressGateway) InsertQuizAttempt(ctx context.Context, a domain.QuizAttempt) (domain.QuizAttempt, error) {
	row := quizAttemptRow{
		ID:          a.ID,
		StudentID:   a.StudentID,
		QuizID:      a.QuizID,
		Answers:     append([]int(nil), a.Answers...),
		Score:       a.Score,
		CompletedAt: a.CompletedAt,
	}
	if _, err := g.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("insert quiz attempt: %w", err)
	}
	return row.toDomain(), nil
}

// ListQuizAttempts returns attempts newest first; equal timestamps keep the later insert first.
func (g *ProgressGateway) ListQuizAttempts(ctx context.Context, studentID, quizID string) ([]domain.QuizAttempt, error) {
	var rows []quizAttemptRow
	q := g.db.NewSelect().
		Model(&rows).
		Where("student_id = ?", studentID).
		Order("completed_at DESC", "seq DESC")
	if quizID != "" {
		q = q.Where("quiz_id = ?", quizID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	out := make([]domain.QuizAttempt, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
