package janitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cleaner removes completed jobs older than retention.
type Cleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int, error)
}

// Janitor periodically prunes completed jobs on a cron schedule.
type Janitor struct {
	cleaner   Cleaner
	retention time.Duration
	timeout   time.Duration
	logger    *zap.Logger

	cron *cron.Cron
	mu   sync.Mutex
	ctx  context.Context
	stop context.CancelFunc
}

// New parses schedule (standard five-field expression or a descriptor such as
// "@every 10m") and prepares a janitor. Nothing runs until Start.
func New(cleaner Cleaner, schedule string, retention time.Duration, logger *zap.Logger) (*Janitor, error) {
	j := &Janitor{
		cleaner:   cleaner,
		retention: retention,
		timeout:   time.Minute,
		logger:    logger.Named("janitor"),
	}

	j.cron = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start begins running sweeps. Cancelling ctx aborts a sweep in flight.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	j.ctx, j.stop = context.WithCancel(ctx)
	j.mu.Unlock()

	j.cron.Start()
	j.logger.Info("janitor started", zap.Duration("retention", j.retention))
}

// Stop prevents further sweeps and waits for a running one to return.
func (j *Janitor) Stop() {
	done := j.cron.Stop()

	j.mu.Lock()
	if j.stop != nil {
		j.stop()
	}
	j.mu.Unlock()

	<-done.Done()
	j.logger.Info("janitor stopped")
}

func (j *Janitor) sweep() {
	j.mu.Lock()
	parent := j.ctx
	j.mu.Unlock()
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()

	removed, err := j.cleaner.Cleanup(ctx, j.retention)
	if err != nil {
		j.logger.Warn("cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("removed completed jobs", zap.Int("count", removed))
	}
}
