package googleEmbedding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/akolanti/ragchain/pkg/logger_i"
)

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: t}}})
	}
	return contents
}

func (c *Client) getInlinedBatchRequests(texts []string) *genai.EmbedContentBatch {
	return &genai.EmbedContentBatch{
		Config:   c.embedConfig(),
		Contents: getContent(texts),
	}
}

// embedLarge submits an asynchronous batch job and waits for it.
func (c *Client) embedLarge(ctx context.Context, texts []string) ([][]float32, error) {
	displayName := uuid.NewString()
	log := c.logger.With("batchJob", displayName, "texts", len(texts))

	src := genai.EmbeddingsBatchJobSource{InlinedRequests: c.getInlinedBatchRequests(texts)}
	job, err := c.genAi.Batches.CreateEmbeddings(ctx, &c.model, &src, &genai.CreateEmbeddingsBatchJobConfig{DisplayName: displayName})
	if err != nil {
		log.Error("Error creating batch embedding job", "error", err)
		return nil, fmt.Errorf("create batch embedding job: %w", err)
	}

	done, err := c.pollForAnswer(ctx, job.Name, log)
	if err != nil {
		return nil, err
	}
	return downloadAnswer(done, len(texts))
}

func (c *Client) pollForAnswer(ctx context.Context, jobName string, log *logger_i.Logger) (*genai.BatchJob, error) {
	ticker := time.NewTicker(batchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Error("pollForAnswer cancelled", "error", ctx.Err())
			return nil, ctx.Err()

		case <-ticker.C:
			bJob, err := c.genAi.Batches.Get(ctx, jobName, nil)
			if err != nil {
				log.Warn("Error getting batch job", "error", err)
				continue
			}

			//https://pkg.go.dev/google.golang.org/genai@v1.41.1#JobState
			switch bJob.State {
			case "JOB_STATE_SUCCEEDED":
				log.Debug("batch job succeeded")
				return bJob, nil
			case "JOB_STATE_FAILED", "JOB_STATE_CANCELLED", "JOB_STATE_EXPIRED", "JOB_STATE_PARTIALLY_SUCCEEDED":
				log.Error("batch job ended early", "state", bJob.State)
				return nil, fmt.Errorf("batch embedding job %s ended in state %s", jobName, bJob.State)
			}
		}
	}
}

func downloadAnswer(job *genai.BatchJob, want int) ([][]float32, error) {
	if job.Dest == nil {
		return nil, fmt.Errorf("batch job %s has no destination", job.Name)
	}
	res := job.Dest.InlinedEmbedContentResponses
	if len(res) != want {
		return nil, fmt.Errorf("batch job %s returned %d of %d embeddings", job.Name, len(res), want)
	}

	out := make([][]float32, 0, len(res))
	for i, r := range res {
		if r == nil || r.Error != nil || r.Response == nil || r.Response.Embedding == nil {
			return nil, fmt.Errorf("batch job %s: embedding %d failed", job.Name, i)
		}
		out = append(out, r.Response.Embedding.Values)
	}
	return out, nil
}
