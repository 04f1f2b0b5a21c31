package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit InternalStatus = "Init"
	Reformulate   InternalStatus = "Reformulate"
	Retrieve      InternalStatus = "Retrieve"
	LLMCall       InternalStatus = "LLM"
	RedisCall     InternalStatus = "Redis"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeChat   JobType = "Chat"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	ChatId      string         `json:"chat_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question        string   `json:"question,omitempty"`
	StandaloneQuery string   `json:"standalone_query,omitempty"`
	Answer          string   `json:"answer,omitempty"`
	Sources         []string `json:"sources,omitempty"`

	IngestSource  string `json:"ingest_source,omitempty"`
	IngestName    string `json:"ingest_name,omitempty"`
	ChunksIndexed int    `json:"chunks_indexed,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// ChatStore keeps the message history of every chat session.
type ChatStore interface {
	Exists(ctx context.Context, chatId string) bool
	Init(ctx context.Context, chatId string) error
	Load(ctx context.Context, chatId string) ([]commonModels.Message, error)
	Append(ctx context.Context, chatId string, messages ...commonModels.Message) error
}
