package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learnhub/internal/domain"
)

// ContentStore keeps lessons in columns and quiz questions as JSONB.
type ContentStore struct {
	pool *pgxpool.Pool
}

func NewContentStore(pool *pgxpool.Pool) *ContentStore {
	return &ContentStore{pool: pool}
}

const lessonColumns = `id, title, description, content, duration, level, subject, teacher_id, created_at, updated_at`

func scanLesson(row pgx.Row) (domain.Lesson, error) {
	var l domain.Lesson
	var level string
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Content, &l.Duration, &level, &l.Subject, &l.TeacherID, &l.CreatedAt, &l.UpdatedAt)
	l.Level = domain.Level(level)
	return l, err
}

func (s *ContentStore) ListLessons(ctx context.Context) ([]domain.Lesson, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+lessonColumns+` FROM lessons ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	lessons := make([]domain.Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (s *ContentStore) GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error) {
	l, err := scanLesson(s.pool.QueryRow(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id=$1`, lessonID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("load lesson: %w", err)
	}
	return l, nil
}

func (s *ContentStore) CreateLesson(ctx context.Context, l domain.Lesson) (domain.Lesson, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lessons (`+lessonColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.Title, l.Description, l.Content, l.Duration, string(l.Level), l.Subject, l.TeacherID, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("insert lesson: %w", err)
	}
	return l, nil
}

func (s *ContentStore) UpdateLesson(ctx context.Context, l domain.Lesson) (domain.Lesson, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE lessons SET title=$2, description=$3, content=$4, duration=$5, level=$6, subject=$7, updated_at=$8 WHERE id=$1`,
		l.ID, l.Title, l.Description, l.Content, l.Duration, string(l.Level), l.Subject, l.UpdatedAt)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("update lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	return l, nil
}

func (s *ContentStore) DeleteLesson(ctx context.Context, lessonID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM lessons WHERE id=$1`, lessonID)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLessonNotFound
	}
	return nil
}

const quizColumns = `id, title, description, questions, lesson_id, teacher_id, created_at, updated_at`

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var q domain.Quiz
	var raw []byte
	if err := row.Scan(&q.ID, &q.Title, &q.Description, &raw, &q.LessonID, &q.TeacherID, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return domain.Quiz{}, err
	}
	if err := json.Unmarshal(raw, &q.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return q, nil
}

func (s *ContentStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (s *ContentStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	q, err := scanQuiz(s.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, quizID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return q, nil
}

func (s *ContentStore) CreateQuiz(ctx context.Context, q domain.Quiz) (domain.Quiz, error) {
	raw, err := json.Marshal(q.Questions)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal questions: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (`+quizColumns+`) VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8)`,
		q.ID, q.Title, q.Description, string(raw), q.LessonID, q.TeacherID, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return q, nil
}

func (s *ContentStore) DeleteQuiz(ctx context.Context, quizID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
