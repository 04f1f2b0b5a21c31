package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/data/redisStore"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

// RedisJobStore keeps each job as a JSON string under job:<id>, expiring
// RedisJobStoreTTL after its last update.
type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisJobStore(s *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  s,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func jobKey(jobId string) string { return "job:" + jobId }

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.Id, err)
	}
	if err := s.store.Set(ctx, jobKey(job.Id), data, config.RedisJobStoreTTL); err != nil {
		return fmt.Errorf("save job %s: %w", job.Id, err)
	}
	s.logger.Debug("Saved job", "traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", job.Id, "status", job.Status)
	return nil
}

// GetJob reports false for unknown, expired and unreadable jobs alike; the
// latter two are logged.
func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	val, err := s.store.Get(ctx, jobKey(jobId))
	switch {
	case s.store.IsNil(err):
		return job, false
	case err != nil:
		s.logger.Error("Failed to get job", "jobId", jobId, "error", err)
		return job, false
	}

	if err := json.Unmarshal([]byte(val), &job); err != nil {
		s.logger.Error("Failed to decode job", "jobId", jobId, "error", err)
		return jobModel.Job{}, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	if err := s.store.Del(ctx, jobKey(jobID)); err != nil {
		s.logger.Error("Error deleting job from Redis", "jobId", jobID, "error", err)
	}
}
