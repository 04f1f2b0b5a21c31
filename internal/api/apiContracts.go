package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id,omitempty" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question        string   `json:"question"`
	StandaloneQuery string   `json:"standalone_query,omitempty"`
	Answer          string   `json:"answer"`
	Sources         []string `json:"sources"`
}

type IngestResponse struct {
	Source        string `json:"source"`
	Name          string `json:"name,omitempty"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

type Result struct {
	Status              string          `json:"status"`
	Step                string          `json:"step,omitempty"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	Ingest              *IngestResponse `json:"ingest,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	ChatId    string `json:"chat_id,omitempty"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	ChatID  string `json:"chat_id,omitempty"`
}

// IngestDocumentRequest names an http(s) URL, or a file in the upload
// directory, to index.
type IngestDocumentRequest struct {
	Source       string `json:"source" validate:"required"`
	DocumentName string `json:"document_name,omitempty"`
}
