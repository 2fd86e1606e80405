package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"github.com/joshu-sajeev/notifyqueue/internal/queue"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// saveScript overwrites a job only if it already exists.
var saveScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1`)

// deleteScript removes the listed jobs that are completed.
var deleteScript = redis.NewScript(`
local removed = 0
for i, id in ipairs(ARGV) do
	local raw = redis.call('HGET', KEYS[1], id)
	if raw then
		local job = cjson.decode(raw)
		if job['status'] == 'completed' then
			removed = removed + redis.call('HDEL', KEYS[1], id)
		end
	end
end
return removed`)

// JobStore keeps every job as a JSON value in one hash keyed by job id.
type JobStore struct {
	rdb    *redis.Client
	key    string
	logger *zap.Logger
	now    func() time.Time
}

func NewJobStore(rdb *redis.Client, keyPrefix string, logger *zap.Logger) *JobStore {
	return &JobStore{
		rdb:    rdb,
		key:    keyPrefix + ":jobs",
		logger: logger.Named("redis_store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ queue.JobStore = (*JobStore)(nil)

func (s *JobStore) Append(ctx context.Context, job *models.NotificationJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}

	ok, err := s.rdb.HSetNX(ctx, s.key, job.ID, raw).Result()
	if err != nil {
		return common.StoreError("append job", err)
	}
	if !ok {
		return fmt.Errorf("append job %s: %w", job.ID, common.ErrDuplicateJob)
	}
	return nil
}

// LoadAll reads every job, persists the processing to pending recovery and
// returns the jobs ordered by creation time. Values that cannot be decoded
// are logged and left in place.
func (s *JobStore) LoadAll(ctx context.Context) ([]models.NotificationJob, error) {
	values, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, common.StoreError("load jobs", err)
	}

	now := s.now()
	jobs := make([]models.NotificationJob, 0, len(values))
	recovered := make(map[string]any)

	for id, raw := range values {
		var job models.NotificationJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			s.logger.Error("skipping undecodable job record",
				zap.String("key", s.key),
				zap.String("job_id", id),
				zap.Error(err),
			)
			continue
		}
		if job.Status == config.JobStatusProcessing {
			job.Status = config.JobStatusPending
			job.Attempts = max(job.Attempts-1, 0)
			job.ScheduledAt = now
			job.UpdatedAt = now

			b, err := json.Marshal(&job)
			if err != nil {
				return nil, fmt.Errorf("encode job %s: %w", id, err)
			}
			recovered[id] = b
		}
		jobs = append(jobs, job)
	}

	if len(recovered) > 0 {
		if err := s.rdb.HSet(ctx, s.key, recovered).Err(); err != nil {
			return nil, common.StoreError("recover processing jobs", err)
		}
	}

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
	return jobs, nil
}

func (s *JobStore) Save(ctx context.Context, job *models.NotificationJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}

	n, err := saveScript.Run(ctx, s.rdb, []string{s.key}, job.ID, raw).Int()
	if err != nil {
		return common.StoreError("save job", err)
	}
	if n == 0 {
		return fmt.Errorf("save job %s: %w", job.ID, common.ErrJobNotFound)
	}
	return nil
}

func (s *JobStore) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	n, err := deleteScript.Run(ctx, s.rdb, []string{s.key}, args...).Int64()
	if err != nil {
		return 0, common.StoreError("delete jobs", err)
	}
	return n, nil
}
