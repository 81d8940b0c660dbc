package app

import (
	"context"
	"time"

	"learnhub/internal/domain"
)

// LessonSnapshot is a read-only view of a lesson viewing session.
type LessonSnapshot struct {
	LessonID    string     `json:"lessonId"`
	Page        int        `json:"page"`
	TotalPages  int        `json:"totalPages"`
	Content     string     `json:"content"`
	Percentage  int        `json:"percentage"`
	TimeSpent   int        `json:"timeSpent"`
	Elapsed     string     `json:"elapsed"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// LessonTracker pages through one lesson for one actor and records completion.
// A tracker belongs to a single session and is not safe for concurrent use.
type LessonTracker struct {
	lesson  domain.Lesson
	actor   domain.Profile
	gateway PersistenceGateway
	now     func() time.Time

	pages       []string
	page        int
	watch       stopwatch
	completed   bool
	completedAt *time.Time
}

// NewLessonTracker starts a session at the first page.
func NewLessonTracker(lesson domain.Lesson, actor domain.Profile, gateway PersistenceGateway) *LessonTracker {
	return NewLessonTrackerWithClock(lesson, actor, gateway, time.Now)
}

// NewLessonTrackerWithClock allows deterministic elapsed time in tests.
func NewLessonTrackerWithClock(lesson domain.Lesson, actor domain.Profile, gateway PersistenceGateway, now func() time.Time) *LessonTracker {
	return &LessonTracker{
		lesson:  lesson,
		actor:   actor,
		gateway: gateway,
		now:     now,
		pages:   Paginate(lesson.Content),
		watch:   newStopwatch(now),
	}
}

// Next moves to the following page. On the last page a student's session completes and
// the progress row is written once; later calls are no-ops.
// A failed write is returned but the session stays completed.
func (t *LessonTracker) Next(ctx context.Context) (LessonSnapshot, error) {
	if t.completed {
		return t.Snapshot(), nil
	}
	if t.page < len(t.pages)-1 {
		t.page++
		return t.Snapshot(), nil
	}
	if !t.actor.IsStudent() {
		return t.Snapshot(), nil
	}
	return t.complete(ctx)
}

// Previous moves back one page. It never writes and does nothing once completed.
func (t *LessonTracker) Previous() LessonSnapshot {
	if !t.completed && t.page > 0 {
		t.page--
	}
	return t.Snapshot()
}

func (t *LessonTracker) complete(ctx context.Context) (LessonSnapshot, error) {
	spent := t.watch.stop()
	at := t.now()
	t.completed = true
	t.completedAt = &at

	_, err := t.gateway.UpsertLessonProgress(ctx, domain.LessonProgress{
		StudentID:          t.actor.ID,
		LessonID:           t.lesson.ID,
		Completed:          true,
		ProgressPercentage: 100,
		TimeSpent:          int(spent / time.Second),
		CompletedAt:        &at,
		UpdatedAt:          at,
	})
	if err != nil {
		return t.Snapshot(), &domain.PersistenceError{Op: "upsert lesson progress", Err: err}
	}
	return t.Snapshot(), nil
}

// Completed reports whether the session reached its terminal state.
func (t *LessonTracker) Completed() bool {
	return t.completed
}

// Pages returns the paginated content.
func (t *LessonTracker) Pages() []string {
	out := make([]string, len(t.pages))
	copy(out, t.pages)
	return out
}

// Snapshot returns the current page, percentage and elapsed time.
func (t *LessonTracker) Snapshot() LessonSnapshot {
	elapsed := t.watch.elapsed()
	return LessonSnapshot{
		LessonID:    t.lesson.ID,
		Page:        t.page,
		TotalPages:  len(t.pages),
		Content:     t.pages[t.page],
		Percentage:  t.percentage(),
		TimeSpent:   int(elapsed / time.Second),
		Elapsed:     FormatElapsed(elapsed),
		Completed:   t.completed,
		CompletedAt: t.completedAt,
	}
}

// percentage is 100 only on the last page, even where rounding would reach it earlier.
func (t *LessonTracker) percentage() int {
	total := len(t.pages)
	pct := Percent(t.page+1, total)
	if t.page < total-1 && pct >= 100 {
		return 99
	}
	return pct
}
