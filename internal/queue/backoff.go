package queue

import (
	"math"
	"math/rand/v2"
	"time"
)

const maxBackoffShift = 30

// Backoff computes the retry delay after a failed attempt:
// Base * 2^attempts, optionally capped at Max. Jitter only ever adds to the
// delay, so a retry is never scheduled earlier than the exponential value.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter bool
}

// DefaultBackoff yields 2s, 4s, 8s, ... for attempts 1, 2, 3, ...
func DefaultBackoff() Backoff {
	return Backoff{Base: time.Second}
}

func (b Backoff) Delay(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > maxBackoffShift {
		attempts = maxBackoffShift
	}

	d := b.Base << attempts
	if d < 0 || d>>attempts != b.Base {
		d = time.Duration(math.MaxInt64)
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	if b.Jitter && d > 0 && d < time.Duration(math.MaxInt64) {
		d += rand.N(d/4 + 1) //nolint:gosec // jitter does not need crypto rand
	}
	return d
}
