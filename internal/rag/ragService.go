package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/internal/rag/ingest"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

// Service is what the worker pool runs jobs against.
type Service interface {
	ProcessChat(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	rag      *ConversationalRAG
	chats    jobModel.ChatStore
	ingester *ingest.Ingester
	timeout  time.Duration
	logger   *logger_i.Logger
}

// NewService wires a conversational chain, the chat history store and the
// ingester. timeout bounds a whole chat turn.
func NewService(chain *ConversationalRAG, chats jobModel.ChatStore, ingester *ingest.Ingester, timeout time.Duration) Service {
	return &service{
		rag:      chain,
		chats:    chats,
		ingester: ingester,
		timeout:  timeout,
		logger:   logger_i.NewLogger("RAG Service :"),
	}
}

func traceId(ctx context.Context) string {
	id, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return id
}

func (s *service) ProcessChat(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.With("traceId", traceId(ctx), "JobId", job.Id, "ChatId", job.ChatId)

	processContext := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		processContext, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logOutput(&job, jobModel.RedisCall, log)
	history, err := s.chats.Load(processContext, job.ChatId)
	if err != nil {
		return s.jobError(job, err, "HISTORY_LOAD_FAILURE")
	}

	res, err := s.rag.Run(processContext, history, job.JobPayload.Question, func(step jobModel.InternalStatus) {
		logOutput(&job, step, log)
	})
	if err != nil {
		return s.jobError(job, err, failureCode(job.CurrentStep))
	}

	logOutput(&job, jobModel.RedisCall, log)
	err = s.chats.Append(processContext, job.ChatId,
		commonModels.UserMessage(job.JobPayload.Question),
		commonModels.AssistantMessage(res.Answer))
	if err != nil {
		return s.jobError(job, err, "HISTORY_SAVE_FAILURE")
	}

	return returnOutput(job, res)
}

func failureCode(step jobModel.InternalStatus) string {
	switch step {
	case jobModel.Reformulate:
		return "REFORMULATION_FAILURE"
	case jobModel.Retrieve:
		return "RETRIEVAL_FAILURE"
	default:
		return "LLM_GENERATION_FAILURE"
	}
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	log := s.logger.With("traceId", traceId(ctx), "JobId", job.Id)
	if s.ingester == nil {
		return s.jobError(job, fmt.Errorf("ingestion is not configured"), "INGESTION_FAILURE")
	}

	logOutput(&job, jobModel.IngestProcessing, log)
	report, err := s.ingester.Ingest(ctx, job.JobPayload.IngestSource, job.JobPayload.IngestName)
	if err != nil {
		return s.jobError(job, err, "INGESTION_FAILURE")
	}

	log.Info("document ingested", "documents", report.Documents, "chunks", report.Chunks)
	job.JobPayload.ChunksIndexed = report.Chunks
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}
