package app

import (
	"fmt"
	"math"
	"time"
)

// Percent returns round(done/total*100), rounding halves away from zero.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// FormatElapsed renders a duration as minutes and zero padded seconds, e.g. "4:05".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// stopwatch measures elapsed time from the monotonic reading of the clock's first value.
type stopwatch struct {
	now     func() time.Time
	started time.Time
	stopped *time.Duration
}

func newStopwatch(now func() time.Time) stopwatch {
	return stopwatch{now: now, started: now()}
}

func (s *stopwatch) elapsed() time.Duration {
	if s.stopped != nil {
		return *s.stopped
	}
	d := s.now().Sub(s.started)
	if d < 0 {
		return 0
	}
	return d
}

func (s *stopwatch) stop() time.Duration {
	d := s.elapsed()
	s.stopped = &d
	return d
}
