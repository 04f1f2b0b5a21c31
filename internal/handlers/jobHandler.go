package handlers

import (
	"context"
	"time"

	"github.com/akolanti/ragchain/internal/api"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/internal/job"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type JobHandler struct {
	service   *job.Service
	uploadDir string
	logJH     *logger_i.Logger
	logRH     *logger_i.Logger
}

// NewJobHandler serves the job endpoints. Uploaded documents are written
// below uploadDir.
func NewJobHandler(jobService *job.Service, uploadDir string) *JobHandler {
	h := &JobHandler{
		service:   jobService,
		uploadDir: uploadDir,
		logJH:     logger_i.NewLogger("JobHandler"),
		logRH:     logger_i.NewLogger("RequestHandler"),
	}
	h.logJH.Info("Starting job handler")
	return h
}

func (h *JobHandler) CreateNewJob(ctx context.Context, newJob newJobData) error {
	log := h.logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	if newJob.isNewChat {
		log.Info("Create new chat", "chatId", newJob.chatId)
		if err := h.service.ChatStore.Init(ctx, newJob.chatId); err != nil {
			log.Error("Error initiating new chat", "chatId", newJob.chatId, "error", err)
			return err
		}
	}
	h.pushToJobChannel(ctx, newJob)
	log.Info("Created new job")
	return nil
}

func (h *JobHandler) GetJobStatus(ctx context.Context, id string) (jobModel.Job, bool) {
	return h.service.Status(ctx, id)
}

func (h *JobHandler) ValidateChatRequest(ctx context.Context, chatReq api.ChatRequest) bool {
	h.logJH.Debug("Validating chat id", "chatId", chatReq.ChatID)
	if chatReq.Message == "" {
		return false
	}
	if chatReq.ChatID == "" {
		return true
	}
	return h.service.ChatStore.Exists(ctx, chatReq.ChatID)
}

func (h *JobHandler) pushToJobChannel(ctx context.Context, newJob newJobData) {
	_job := jobModel.Job{
		Id:          newJob.id,
		CreatedTime: time.Now(),
		TraceId:     newJob.traceId,
	}

	if newJob.isDocumentIngest {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobType = jobModel.JobTypeIngest
		_job.JobPayload.IngestName = newJob.documentName
		_job.JobPayload.IngestSource = newJob.documentSource
	} else {
		_job.JobType = jobModel.JobTypeChat
		_job.ChatId = newJob.chatId
		_job.JobPayload.Question = newJob.message
		_job.CurrentStep = jobModel.UserQueryInit
	}

	h.service.Enqueue(ctx, _job)
}
