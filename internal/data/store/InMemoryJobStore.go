package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore is the fallback when Redis is offline. Entries expire
// after the same TTL the Redis store uses; expired jobs are dropped lazily
// on read and on every save.
type InMemoryJobStore struct {
	mu     sync.RWMutex
	jobs   map[string]storedJob
	ttl    time.Duration
	now    func() time.Time
	logger *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:   make(map[string]storedJob),
		ttl:    config.RedisJobStoreTTL,
		now:    time.Now,
		logger: logger_i.NewLogger("InMem Store"),
	}
}

func (s *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, stored := range s.jobs {
		if now.After(stored.expiresAt) {
			delete(s.jobs, id)
		}
	}
	s.jobs[job.Id] = storedJob{job: job, expiresAt: now.Add(s.ttl)}
	s.logger.Debug("Saved job to store", "jobId", job.Id, "status", job.Status)
	return nil
}

func (s *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.RLock()
	stored, found := s.jobs[jobId]
	s.mu.RUnlock()
	if !found || s.now().After(stored.expiresAt) {
		return jobModel.Job{}, false
	}
	return stored.job, true
}

func (s *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

func (s *InMemoryJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
