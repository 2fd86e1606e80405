package janitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCleaner struct {
	calls     atomic.Int32
	retention atomic.Int64
	err       error
}

func (f *fakeCleaner) Cleanup(_ context.Context, retention time.Duration) (int, error) {
	f.calls.Add(1)
	f.retention.Store(int64(retention))
	return 1, f.err
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := New(&fakeCleaner{}, "every now and then", time.Hour, zap.NewNop())
	assert.Error(t, err)
}

func TestJanitor_Sweep(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "removes jobs"},
		{name: "store error is swallowed", err: errors.New("store unavailable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCleaner{err: tt.err}
			j, err := New(c, "@every 1h", 30*time.Minute, zap.NewNop())
			require.NoError(t, err)

			j.sweep()

			assert.EqualValues(t, 1, c.calls.Load())
			assert.Equal(t, int64(30*time.Minute), c.retention.Load())
		})
	}
}

func TestJanitor_RunsOnSchedule(t *testing.T) {
	c := &fakeCleaner{}
	j, err := New(c, "@every 1s", time.Hour, zap.NewNop())
	require.NoError(t, err)

	j.Start(context.Background())
	defer j.Stop()

	assert.Eventually(t, func() bool { return c.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestJanitor_StopWithoutStart(t *testing.T) {
	j, err := New(&fakeCleaner{}, "@every 1h", time.Hour, zap.NewNop())
	require.NoError(t, err)
	assert.NotPanics(t, j.Stop)
}
