package queue

import (
	"time"

	"golang.org/x/time/rate"
)

type Option func(*Engine)

func WithBackoff(b Backoff) Option {
	return func(e *Engine) { e.backoff = b }
}

// WithPacing sets the minimum gap between two delivery attempts.
// Zero disables pacing.
func WithPacing(d time.Duration) Option {
	return func(e *Engine) { e.pacer = newPacer(d) }
}

// WithStoreRetryDelay sets how long the drain loop pauses after the job
// store fails before it retries.
func WithStoreRetryDelay(d time.Duration) Option {
	return func(e *Engine) { e.storeRetry = d }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func newPacer(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}
