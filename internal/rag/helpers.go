package rag

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

func returnOutput(job jobModel.Job, res Result) jobModel.Job {
	job.JobPayload.StandaloneQuery = res.Query
	job.JobPayload.Answer = res.Answer
	job.JobPayload.Sources = res.Passages.Sources()
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

func logOutput(job *jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) {
	job.CurrentStep = status
	log.Debug("ProcessChat", "Current Status", job.CurrentStep)
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "error", err, "JobId", job.Id)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   apperrors.IsTransient(err) || errors.Is(err, context.DeadlineExceeded),
	}
	if apperrors.IsConfig(err) {
		job.Error.Code = http.StatusBadRequest
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func (c *ConversationalRAG) executeReformulateStep(ctx context.Context, log *logger_i.Logger, history []commonModels.Message, input string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("reformulate", time.Since(start)) }()

	query, err := c.Reformulate(ctx, history, input)
	if err == nil && query != input {
		log.Debug("reformulated question", "query", query)
	}
	return query, err
}

func (c *ConversationalRAG) executeAnswerStep(ctx context.Context, log *logger_i.Logger, history []commonModels.Message, input string, passages commonModels.RetrievalResult) (string, error) {
	if len(passages) == 0 {
		log.Warn("no passages retrieved", "input", input)
	}
	return c.Answer(ctx, history, input, passages)
}
