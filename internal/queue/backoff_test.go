package queue

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Delay(t *testing.T) {
	tests := []struct {
		name     string
		backoff  Backoff
		attempts int
		want     time.Duration
	}{
		{name: "first retry", backoff: DefaultBackoff(), attempts: 1, want: 2 * time.Second},
		{name: "second retry", backoff: DefaultBackoff(), attempts: 2, want: 4 * time.Second},
		{name: "third retry", backoff: DefaultBackoff(), attempts: 3, want: 8 * time.Second},
		{name: "zero attempts", backoff: DefaultBackoff(), attempts: 0, want: time.Second},
		{name: "negative attempts", backoff: DefaultBackoff(), attempts: -4, want: time.Second},
		{name: "capped", backoff: Backoff{Base: time.Second, Max: 5 * time.Second}, attempts: 3, want: 5 * time.Second},
		{name: "custom base", backoff: Backoff{Base: 10 * time.Millisecond}, attempts: 2, want: 40 * time.Millisecond},
		{name: "overflow saturates", backoff: Backoff{Base: time.Hour}, attempts: 60, want: time.Duration(math.MaxInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.backoff.Delay(tt.attempts))
		})
	}
}

func TestBackoff_JitterNeverShortens(t *testing.T) {
	b := Backoff{Base: time.Second, Jitter: true}

	for attempts := 1; attempts <= 6; attempts++ {
		floor := time.Second << attempts
		for range 50 {
			d := b.Delay(attempts)
			assert.GreaterOrEqual(t, d, floor)
			assert.LessOrEqual(t, d, floor+floor/4)
		}
	}
}
