package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

// Sender delivers one notification job over some transport.
type Sender interface {
	Send(ctx context.Context, job *models.NotificationJob) error
}

type SenderFunc func(ctx context.Context, job *models.NotificationJob) error

func (f SenderFunc) Send(ctx context.Context, job *models.NotificationJob) error {
	return f(ctx, job)
}

// Dispatcher routes a job to the sender registered for its type and
// normalizes the outcome into the error taxonomy.
type Dispatcher struct {
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	senders map[config.JobType]Sender
}

func New(timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		timeout: timeout,
		logger:  logger.Named("dispatcher"),
		senders: make(map[config.JobType]Sender),
	}
}

// Register binds s to jobType, replacing any previous sender.
func (d *Dispatcher) Register(jobType config.JobType, s Sender) {
	d.mu.Lock()
	d.senders[jobType] = s
	d.mu.Unlock()
}

func (d *Dispatcher) Registered(jobType config.JobType) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.senders[jobType]
	return ok
}

// Dispatch runs the sender for job and returns nil on delivery, an error
// wrapping common.ErrUnknownJobType when no sender is registered, or a
// classified send failure.
func (d *Dispatcher) Dispatch(ctx context.Context, job *models.NotificationJob) error {
	d.mu.RLock()
	s, ok := d.senders[job.Type]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("dispatch %s: %w", job.Type, common.ErrUnknownJobType)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- d.send(ctx, s, job)
	}()

	select {
	case err := <-result:
		return classify(err)
	case <-ctx.Done():
		d.logger.Warn("sender did not return before deadline",
			zap.String("job_id", job.ID),
			zap.String("job_type", string(job.Type)),
			zap.Duration("timeout", d.timeout),
		)
		return common.Transient(fmt.Errorf("send %s: %w", job.Type, ctx.Err()))
	}
}

func (d *Dispatcher) send(ctx context.Context, s Sender, job *models.NotificationJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("sender panicked",
				zap.String("job_id", job.ID),
				zap.String("job_type", string(job.Type)),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
			err = common.Transient(fmt.Errorf("panic in %s sender: %v", job.Type, r))
		}
	}()
	return s.Send(ctx, job)
}

// classify passes classified errors through and treats everything else as
// transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *common.SendError
	if errors.As(err, &se) || errors.Is(err, common.ErrUnknownJobType) {
		return err
	}
	return common.Transient(err)
}
