package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/datatypes"
)

const (
	defaultPacing          = 100 * time.Millisecond
	defaultStoreRetryDelay = 2 * time.Second
)

// Engine owns the notification jobs of this process and runs the single
// drain loop that delivers them. All status transitions outside manual
// retry happen on the drain goroutine.
type Engine struct {
	store      JobStore
	dispatcher Dispatcher
	logger     *zap.Logger

	backoff    Backoff
	pacer      *rate.Limiter
	storeRetry time.Duration
	now        func() time.Time

	mu         sync.Mutex
	jobs       map[string]*models.NotificationJob
	processing bool
	cancel     context.CancelFunc

	// opMu serializes Retry and Cleanup so mu is never held across store I/O.
	opMu sync.Mutex

	wake chan struct{}
	done chan struct{}
}

func New(store JobStore, dispatcher Dispatcher, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger.Named("engine"),
		backoff:    DefaultBackoff(),
		pacer:      newPacer(defaultPacing),
		storeRetry: defaultStoreRetryDelay,
		now:        func() time.Time { return time.Now().UTC() },
		jobs:       make(map[string]*models.NotificationJob),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the in-memory index with the records held by the store.
func (e *Engine) Load(ctx context.Context) error {
	records, err := e.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}

	now := e.now()
	jobs := make(map[string]*models.NotificationJob, len(records))
	for i := range records {
		job := records[i]
		if job.Status == config.JobStatusProcessing {
			job.Status = config.JobStatusPending
			job.ScheduledAt = now
			job.Attempts = rollbackAttempt(job.Attempts)
			e.logger.Warn("recovered job interrupted mid-attempt",
				zap.String("job_id", job.ID),
				zap.String("job_type", string(job.Type)),
				zap.Int("attempts", job.Attempts),
			)
		}
		jobs[job.ID] = &job
	}

	e.mu.Lock()
	e.jobs = jobs
	e.mu.Unlock()

	e.logger.Info("jobs loaded", zap.Int("count", len(jobs)))
	return nil
}

// Start loads persisted jobs and launches the drain loop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	started := e.cancel != nil
	e.mu.Unlock()
	if started {
		return errors.New("engine already started")
	}

	if err := e.Load(ctx); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	go e.run(loopCtx)
	e.signal()
	return nil
}

// Stop halts the drain loop after the attempt in flight, if any, finishes.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-e.done:
		e.logger.Info("drain loop stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop engine: %w", ctx.Err())
	}
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	for {
		e.drain(ctx)

		var timer *time.Timer
		var fire <-chan time.Time
		if next, ok := e.nextWakeup(); ok {
			timer = time.NewTimer(max(next.Sub(e.now()), 0))
			fire = timer.C
		}

		select {
		case <-ctx.Done():
		case <-e.wake:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// drain attempts due jobs oldest first until none is due.
func (e *Engine) drain(ctx context.Context) {
	e.mu.Lock()
	if e.processing {
		e.mu.Unlock()
		return
	}
	e.processing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.processing = false
		e.mu.Unlock()
	}()

	for ctx.Err() == nil {
		job := e.nextDue()
		if job == nil {
			return
		}
		if err := e.pacer.Wait(ctx); err != nil {
			return
		}

		err := e.attempt(ctx, job)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrStoreUnavailable):
			e.logger.Error("job store unavailable, pausing drain loop",
				zap.String("job_id", job.ID),
				zap.Duration("retry_in", e.storeRetry),
				zap.Error(err),
			)
			if !sleep(ctx, e.storeRetry) {
				return
			}
		case errors.Is(err, common.ErrJobNotFound):
			e.forget(job.ID, err)
		default:
			until := e.now().Add(e.storeRetry)
			e.logger.Error("job could not be claimed, postponing it",
				zap.String("job_id", job.ID),
				zap.Time("until", until),
				zap.Error(err),
			)
			e.postpone(job.ID, until)
		}
	}
}

// attempt runs one delivery attempt for job. It returns an error only when
// the job could not be claimed; in that case nothing changed.
func (e *Engine) attempt(ctx context.Context, job *models.NotificationJob) error {
	now := e.now()
	if job.MaxAttempts > 0 && job.Attempts >= job.MaxAttempts {
		job.Status = config.JobStatusFailed
		job.UpdatedAt = now
		if job.Error == "" {
			job.Error = "attempts exhausted"
		}
		e.logger.Error("pending job has no attempts left, marking it failed",
			zap.String("job_id", job.ID),
			zap.Int("attempts", job.Attempts),
			zap.Int("max_attempts", job.MaxAttempts),
		)
		e.persistOutcome(ctx, job)
		return nil
	}

	job.Status = config.JobStatusProcessing
	job.Attempts++
	job.LastAttemptAt = &now
	job.UpdatedAt = now

	if err := e.store.Save(ctx, job); err != nil {
		return fmt.Errorf("claim job %s: %w", job.ID, err)
	}
	e.commit(job)

	// The attempt itself is never cancelled by Stop.
	attemptCtx := context.WithoutCancel(ctx)
	sendErr := e.dispatcher.Dispatch(attemptCtx, job)
	e.settle(job, sendErr)
	e.persistOutcome(ctx, job)
	return nil
}

// settle applies the outcome of an attempt to job.
func (e *Engine) settle(job *models.NotificationJob, sendErr error) {
	now := e.now()
	job.UpdatedAt = now

	fields := []zap.Field{
		zap.String("job_id", job.ID),
		zap.String("job_type", string(job.Type)),
		zap.Int("attempt", job.Attempts),
		zap.Int("max_attempts", job.MaxAttempts),
	}

	if sendErr == nil {
		job.Status = config.JobStatusCompleted
		job.Error = ""
		e.logger.Info("notification delivered", fields...)
		return
	}

	job.Error = sendErr.Error()
	fields = append(fields, zap.Error(sendErr))

	if errors.Is(sendErr, common.ErrUnknownJobType) {
		e.logger.Error("no sender registered for job type, attempt will fail until configured", fields...)
	}

	if job.Attempts >= job.MaxAttempts {
		job.Status = config.JobStatusFailed
		e.logger.Error("notification failed, attempts exhausted", fields...)
		return
	}

	delay := e.backoff.Delay(job.Attempts)
	next := now.Add(delay)
	if next.Before(job.ScheduledAt) {
		next = job.ScheduledAt
	}
	job.Status = config.JobStatusPending
	job.ScheduledAt = next
	e.logger.Warn("notification attempt failed, retry scheduled",
		append(fields, zap.Duration("delay", delay), zap.Time("scheduled_at", next))...)
}

// persistOutcome saves the settled job, pausing the loop between tries while
// the store is unavailable. The in-memory record only advances once the
// store has confirmed the write.
func (e *Engine) persistOutcome(ctx context.Context, job *models.NotificationJob) {
	saveCtx := context.WithoutCancel(ctx)
	for {
		err := e.store.Save(saveCtx, job)
		if err == nil {
			e.commit(job)
			return
		}
		if errors.Is(err, common.ErrJobNotFound) {
			e.forget(job.ID, err)
			return
		}
		if !errors.Is(err, common.ErrStoreUnavailable) {
			e.logger.Error("attempt outcome rejected by store, keeping it in memory only",
				zap.String("job_id", job.ID),
				zap.String("status", string(job.Status)),
				zap.Error(err),
			)
			e.commit(job)
			return
		}

		e.logger.Error("failed to persist attempt outcome, retrying",
			zap.String("job_id", job.ID),
			zap.String("status", string(job.Status)),
			zap.Duration("retry_in", e.storeRetry),
			zap.Error(err),
		)
		if !sleep(ctx, e.storeRetry) {
			e.logger.Warn("stopping with unpersisted outcome, job will be recovered on restart",
				zap.String("job_id", job.ID),
			)
			return
		}
	}
}

// Enqueue persists a new pending job and wakes the drain loop. It never
// waits for delivery.
func (e *Engine) Enqueue(ctx context.Context, jobType config.JobType, payload datatypes.JSON, maxAttempts int) (*models.NotificationJob, error) {
	if !jobType.Valid() {
		return nil, fmt.Errorf("enqueue %q: %w", jobType, common.ErrUnknownJobType)
	}
	if maxAttempts <= 0 {
		maxAttempts = config.DefaultMaxAttempts
	}

	now := e.now()
	job := &models.NotificationJob{
		ID:          uuid.NewString(),
		Type:        jobType,
		Payload:     payload,
		Status:      config.JobStatusPending,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		ScheduledAt: now,
		UpdatedAt:   now,
	}

	if err := e.store.Append(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue %s job: %w", jobType, err)
	}
	e.commit(job)
	e.signal()

	e.logger.Debug("job enqueued",
		zap.String("job_id", job.ID),
		zap.String("job_type", string(jobType)),
		zap.Int("max_attempts", maxAttempts),
	)
	return job, nil
}

func (e *Engine) Get(_ context.Context, id string) (*models.NotificationJob, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	job, ok := e.jobs[id]
	if !ok {
		return nil, fmt.Errorf("get job %s: %w", id, common.ErrJobNotFound)
	}
	return job.Clone(), nil
}

// Summary returns job counts by status and the limit most recently created jobs.
func (e *Engine) Summary(_ context.Context, limit int) (map[config.JobStatus]int, []models.NotificationJob, error) {
	e.mu.Lock()
	counts := make(map[config.JobStatus]int, len(config.AllJobStatuses))
	for _, s := range config.AllJobStatuses {
		counts[s] = 0
	}
	all := make([]*models.NotificationJob, 0, len(e.jobs))
	for _, job := range e.jobs {
		counts[job.Status]++
		all = append(all, job)
	}

	sort.Slice(all, func(i, j int) bool { return older(all[j], all[i]) })
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	recent := make([]models.NotificationJob, len(all))
	for i, job := range all {
		recent[i] = *job.Clone()
	}
	e.mu.Unlock()

	return counts, recent, nil
}

// Retry resets a failed job so the next drain cycle picks it up again.
func (e *Engine) Retry(ctx context.Context, id string) (*models.NotificationJob, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	current, ok := e.jobs[id]
	if !ok {
		e.mu.Unlock()
		return nil, fmt.Errorf("retry job %s: %w", id, common.ErrJobNotFound)
	}
	if current.Status != config.JobStatusFailed {
		status := current.Status
		e.mu.Unlock()
		return nil, fmt.Errorf("retry job %s in status %s: %w", id, status, common.ErrInvalidState)
	}
	job := current.Clone()
	e.mu.Unlock()

	now := e.now()
	job.Status = config.JobStatusPending
	job.Attempts = 0
	job.Error = ""
	job.ScheduledAt = now
	job.UpdatedAt = now

	if err := e.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("retry job %s: %w", id, err)
	}
	e.commit(job)
	e.signal()

	e.logger.Info("failed job reset for retry", zap.String("job_id", id))
	return job.Clone(), nil
}

// Cleanup deletes completed jobs last updated before now minus retention.
// Pending, processing and failed jobs are never removed.
func (e *Engine) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	cutoff := e.now().Add(-retention)

	e.mu.Lock()
	var ids []string
	for id, job := range e.jobs {
		if job.Status == config.JobStatusCompleted && job.UpdatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	e.mu.Unlock()

	if len(ids) == 0 {
		return 0, nil
	}
	slices.Sort(ids)

	removed, err := e.store.Delete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("cleanup completed jobs: %w", err)
	}

	e.mu.Lock()
	for _, id := range ids {
		if job, ok := e.jobs[id]; ok && job.Status == config.JobStatusCompleted {
			delete(e.jobs, id)
		}
	}
	e.mu.Unlock()

	e.logger.Info("completed jobs cleaned up",
		zap.Int64("removed", removed),
		zap.Duration("retention", retention),
	)
	return int(removed), nil
}

func (e *Engine) commit(job *models.NotificationJob) {
	e.mu.Lock()
	e.jobs[job.ID] = job.Clone()
	e.mu.Unlock()
}

// forget drops a job whose record no longer exists in the store.
func (e *Engine) forget(id string, err error) {
	e.mu.Lock()
	delete(e.jobs, id)
	e.mu.Unlock()

	e.logger.Warn("job record missing from store, dropping it", zap.String("job_id", id), zap.Error(err))
}

// postpone moves a pending job's in-memory schedule so other due jobs are
// not starved by it.
func (e *Engine) postpone(id string, until time.Time) {
	e.mu.Lock()
	if job, ok := e.jobs[id]; ok && job.Status == config.JobStatusPending && job.ScheduledAt.Before(until) {
		job.ScheduledAt = until
	}
	e.mu.Unlock()
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// nextDue returns a copy of the oldest due pending job, or nil.
func (e *Engine) nextDue() *models.NotificationJob {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	var best *models.NotificationJob
	for _, job := range e.jobs {
		if !job.Due(now) {
			continue
		}
		if best == nil || older(job, best) {
			best = job
		}
	}
	if best == nil {
		return nil
	}
	return best.Clone()
}

// nextWakeup returns the earliest scheduledAt among pending jobs.
func (e *Engine) nextWakeup() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var next time.Time
	found := false
	for _, job := range e.jobs {
		if job.Status != config.JobStatusPending {
			continue
		}
		if !found || job.ScheduledAt.Before(next) {
			next = job.ScheduledAt
			found = true
		}
	}
	return next, found
}

// rollbackAttempt undoes the attempt a crash cut off, so a recovered job
// never goes past its maximum.
func rollbackAttempt(attempts int) int {
	return max(attempts-1, 0)
}

func older(a, b *models.NotificationJob) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
