package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/app"
	"learnhub/internal/domain"
)

func TestLessonTrackerCompletesOnceOnLastPage(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	gw := &recordingGateway{}
	tr := app.NewLessonTrackerWithClock(sampleLesson("one\n\ntwo\n\nthree"), student, gw, clock.Now)

	snap := tr.Snapshot()
	assert.Equal(t, 0, snap.Page)
	assert.Equal(t, 33, snap.Percentage)
	assert.Equal(t, "one", snap.Content)

	clock.Advance(40 * time.Second)
	snap, err := tr.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 67, snap.Percentage)

	clock.Advance(40 * time.Second)
	snap, err = tr.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, snap.Percentage)
	assert.False(t, snap.Completed)
	assert.Equal(t, "1:20", snap.Elapsed)

	clock.Advance(5 * time.Second)
	snap, err = tr.Next(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Completed)
	assert.True(t, tr.Completed())

	clock.Advance(time.Hour)
	snap, err = tr.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1:25", snap.Elapsed, "elapsed freezes at completion")
	assert.Equal(t, 2, tr.Previous().Page, "completed sessions stay on the last page")

	progress, attempts := gw.writes()
	assert.Equal(t, 1, progress)
	assert.Zero(t, attempts)

	row := gw.progress[0]
	assert.Equal(t, student.ID, row.StudentID)
	assert.Equal(t, "l1", row.LessonID)
	assert.True(t, row.Completed)
	assert.Equal(t, 100, row.ProgressPercentage)
	assert.Equal(t, 85, row.TimeSpent)
	require.NotNil(t, row.CompletedAt)
	assert.Equal(t, clock.Now().Add(-time.Hour), *row.CompletedAt)
}

func TestLessonTrackerPreviousStopsAtFirstPage(t *testing.T) {
	tr := app.NewLessonTracker(sampleLesson("a\n\nb"), student, &recordingGateway{})
	assert.Equal(t, 0, tr.Previous().Page)

	_, err := tr.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Previous().Page)
	assert.Equal(t, []string{"a", "b"}, tr.Pages())
}

func TestLessonTrackerTeacherPreviewNeverWrites(t *testing.T) {
	gw := &recordingGateway{}
	tr := app.NewLessonTracker(sampleLesson("a\n\nb"), teacher, gw)
	for i := 0; i < 5; i++ {
		_, err := tr.Next(context.Background())
		require.NoError(t, err)
	}
	assert.False(t, tr.Completed())
	assert.Equal(t, 1, tr.Snapshot().Page)
	progress, _ := gw.writes()
	assert.Zero(t, progress)
}

func TestLessonTrackerEmptyContentHasOnePage(t *testing.T) {
	gw := &recordingGateway{}
	tr := app.NewLessonTracker(sampleLesson("\n\n"), student, gw)
	snap := tr.Snapshot()
	assert.Equal(t, 1, snap.TotalPages)
	assert.Equal(t, 100, snap.Percentage)
	assert.Equal(t, "", snap.Content)

	snap, err := tr.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Completed)
}

func TestLessonTrackerFailedWriteStaysCompleted(t *testing.T) {
	gw := &recordingGateway{fail: errStorageDown}
	tr := app.NewLessonTracker(sampleLesson("only"), student, gw)

	snap, err := tr.Next(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsPersistence(err))
	assert.ErrorIs(t, err, errStorageDown)
	assert.True(t, snap.Completed)

	_, err = tr.Next(context.Background())
	require.NoError(t, err)
	progress, _ := gw.writes()
	assert.Equal(t, 1, progress, "no retry after a failed completion")
}

func TestLessonTrackerPercentageOnlyReaches100OnLastPage(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 150, 201} {
		pages := make([]string, n)
		for i := range pages {
			pages[i] = "p"
		}
		tr := app.NewLessonTracker(sampleLesson(strings.Join(pages, "\n\n")), teacher, &recordingGateway{})
		prev := 0
		for i := 0; i < n; i++ {
			snap := tr.Snapshot()
			require.Equal(t, i, snap.Page)
			assert.GreaterOrEqual(t, snap.Percentage, prev)
			if i == n-1 {
				assert.Equal(t, 100, snap.Percentage, "n=%d", n)
			} else {
				assert.Less(t, snap.Percentage, 100, "n=%d page=%d", n, i)
			}
			prev = snap.Percentage
			_, err := tr.Next(context.Background())
			require.NoError(t, err)
		}
	}
}
