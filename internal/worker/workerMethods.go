package worker

import (
	"context"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/internal/metrics"
)

func (p *Pool) executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType), string(job.Status), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.jobTimeout)
	defer cancel()

	log := p.logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	job.Status = jobModel.JobStatusRunning
	p.saveJobState(ctx, job)

	switch job.JobType {
	case jobModel.JobTypeIngest:
		job = p.ragService.IngestDocument(ctx, job)
	default:
		job = p.ragService.ProcessChat(ctx, job)
	}

	job.EndTime = time.Now()
	// save on a fresh context so a timed out job still records its failure
	saveCtx, saveCancel := context.WithTimeout(ctxTrace, config.RedisPingTimeout)
	defer saveCancel()
	p.saveJobState(saveCtx, job)
	log.Info("Job finished", "status", job.Status, "step", job.CurrentStep)
}

// removeWorker expects the caller to have released the worker's slot.
func (p *Pool) removeWorker(reason string) {
	p.wg.Done()
	metrics.DecrementActiveWorkerCount()
	p.logger.Debug("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
}

func (p *Pool) saveJobState(ctx context.Context, job jobModel.Job) {
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		p.logger.Error("Failed to update job status", "jobId", job.Id, "err", err)
	}
}
