// Package job owns the queue between the HTTP handlers and the worker pool.
package job

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type Service struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	ChatStore         jobModel.ChatStore

	requestCount int64
	logger       *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	ChatStore         jobModel.ChatStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		ChatStore:         cfg.ChatStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Enqueue records j as queued, then hands it to the workers. The send
// blocks while the channel is full, pushing back on the handlers.
func (s *Service) Enqueue(ctx context.Context, j jobModel.Job) {
	j.Status = jobModel.JobStatusQueued
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		s.logger.Error("Failed to save queued job", "jobId", j.Id, "error", err)
	}

	metrics.IncrementJobsInQueue()
	s.JobChannel <- j

	// one more worker every RequestsPerNewWorkerCount requests, and one per
	// ingestion since those run long
	n := atomic.AddInt64(&s.requestCount, 1)
	if n%config.RequestsPerNewWorkerCount == 0 || j.JobType == jobModel.JobTypeIngest {
		s.signalDispatcher()
	}
}

func (s *Service) signalDispatcher() {
	select {
	case s.DispatcherChannel <- true:
	default:
	}
}

// Requests is the number of jobs enqueued so far.
func (s *Service) Requests() int64 { return atomic.LoadInt64(&s.requestCount) }

func (s *Service) Status(ctx context.Context, id string) (jobModel.Job, bool) {
	return s.JobStore.GetJob(ctx, id)
}
