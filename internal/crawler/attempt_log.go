package crawler

import (
	"fmt"
	"time"

	"commentsent/internal/logger"
)

// maxRetainedFailures bounds how many failed attempts are kept for the summary.
const maxRetainedFailures = 20

// AttemptResult records the result of a single archive request.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Attempt    int
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// AttemptLog accumulates request outcomes across pages.
type AttemptLog struct {
	recentFailures []AttemptResult
	total          int
	failed         int
	pages          int
	maxAttempt     int
	totalDuration  time.Duration
}

// Record adds one attempt to the log.
func (l *AttemptLog) Record(r AttemptResult) {
	l.total++
	l.totalDuration += r.Duration

	if r.Attempt > l.maxAttempt {
		l.maxAttempt = r.Attempt
	}

	if r.Success {
		l.pages++

		return
	}

	l.failed++

	l.recentFailures = append(l.recentFailures, r)
	if len(l.recentFailures) > maxRetainedFailures {
		l.recentFailures = l.recentFailures[1:]
	}
}

// Stats summarizes the log.
func (l *AttemptLog) Stats() AttemptStats {
	failures := make([]AttemptResult, len(l.recentFailures))
	copy(failures, l.recentFailures)

	return AttemptStats{
		RecentFailures:     failures,
		TotalAttempts:      l.total,
		SuccessfulAttempts: l.pages,
		FailedAttempts:     l.failed,
		MaxAttemptsForPage: l.maxAttempt,
		TotalDuration:      l.totalDuration,
	}
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	RecentFailures     []AttemptResult
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
	MaxAttemptsForPage int
	TotalDuration      time.Duration
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"Attempts: %d total, %d success, %d failed | worst page took %d attempts | %.1fs in requests",
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
		s.MaxAttemptsForPage,
		s.TotalDuration.Seconds(),
	)
}

// LogAttemptSummary logs a summary of fetch attempts using the provided logger.
func LogAttemptSummary(l *logger.Logger, s AttemptStats) {
	l.Info("📊 Fetch attempt summary", "summary", s.String())

	for _, f := range s.RecentFailures {
		l.Debug("failed attempt",
			"at", f.Timestamp.UTC().Format(time.RFC3339),
			"attempt", f.Attempt,
			"status", f.StatusCode,
			"error", f.Error,
		)
	}
}
