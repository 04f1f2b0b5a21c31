package adapter

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ragchain/internal/domain/jobModel"
)

func TestToAPIResponse(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		job       jobModel.Job
		hasRAG    bool
		hasIngest bool
		hasError  bool
	}{
		{
			name: "chat complete",
			job: jobModel.Job{Id: "1", ChatId: "c", JobType: jobModel.JobTypeChat, Status: jobModel.JobStatusComplete,
				CreatedTime: now, JobPayload: jobModel.JobPayload{Question: "q", Answer: "a", Sources: []string{"doc.txt"}}},
			hasRAG: true,
		},
		{
			name: "chat queued",
			job:  jobModel.Job{Id: "2", JobType: jobModel.JobTypeChat, Status: jobModel.JobStatusQueued},
		},
		{
			name: "ingest complete",
			job: jobModel.Job{Id: "3", JobType: jobModel.JobTypeIngest, Status: jobModel.JobStatusComplete,
				JobPayload: jobModel.JobPayload{IngestSource: "a.pdf", ChunksIndexed: 7}},
			hasIngest: true,
		},
		{
			name: "failed",
			job: jobModel.Job{Id: "4", JobType: jobModel.JobTypeChat, Status: jobModel.JobStatusError,
				Error: jobModel.JobError{Code: http.StatusInternalServerError, Message: "LLM_GENERATION_FAILURE", Retry: true}},
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ToAPIResponse(tt.job)
			assert.Equal(t, tt.job.Id, res.Id)
			assert.Equal(t, string(tt.job.Status), res.Result.Status)
			assert.Equal(t, tt.hasRAG, res.Result.RAGExternalResponse != nil)
			assert.Equal(t, tt.hasIngest, res.Result.Ingest != nil)
			assert.Equal(t, tt.hasError, res.Error != nil)
		})
	}
}

func TestToAPIResponse_Fields(t *testing.T) {
	res := ToAPIResponse(jobModel.Job{Id: "3", JobType: jobModel.JobTypeIngest, Status: jobModel.JobStatusComplete,
		JobPayload: jobModel.JobPayload{IngestSource: "a.pdf", IngestName: "A", ChunksIndexed: 7}})
	require.NotNil(t, res.Result.Ingest)
	assert.Equal(t, 7, res.Result.Ingest.ChunksIndexed)
	assert.Equal(t, "A", res.Result.Ingest.Name)

	bad := BadRequest("x", "Job not found", http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, bad.Error.Code)
	assert.Equal(t, "status/x", ToInitJobResponse("x", "").StatusURL)
}
