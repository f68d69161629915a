package run

import "time"

// RunStats is the elapsed-time and usage-counter bookkeeping for a whole run.
// Usage keys (token counts, cost figures) are opaque to the renderer.
type RunStats struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Usage      map[string]any
}

// NewRunStats starts the clock.
func NewRunStats() *RunStats {
	return &RunStats{StartedAt: time.Now(), Usage: map[string]any{}}
}

// Stop records the finish time. Stopping twice keeps the first timestamp.
func (s *RunStats) Stop() {
	if s.FinishedAt.IsZero() {
		s.FinishedAt = time.Now()
	}
}

// Duration returns the run duration. ok is false until the run has stopped.
func (s *RunStats) Duration() (d time.Duration, ok bool) {
	if s.FinishedAt.IsZero() {
		return 0, false
	}
	return s.FinishedAt.Sub(s.StartedAt), true
}
