package googleEmbedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/rag/embedding"
	"github.com/akolanti/ragchain/internal/rag/transient"
	"github.com/akolanti/ragchain/internal/util"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

const (
	// texts above this count go through an asynchronous batch job
	largeDataSetThreshold = 2000
	batchPollInterval     = 30 * time.Second
)

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	policy    util.RetryPolicy
	logger    *logger_i.Logger
}

func New(ctx context.Context, apiKey string, model string, policy util.RetryPolicy) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create google embedding client: %w", err)
	}
	if model == "" {
		model = config.DefaultGoogleEmbeddingModel
	}
	log := logger_i.NewLogger("google_embedding")
	log.Debug("Google Embedding client created", "model", model)

	return &Client{
		genAi:     c,
		model:     model,
		dimension: config.EmbeddingOutputDimensionality,
		policy:    policy,
		logger:    log,
	}, nil
}

func (c *Client) Model() string { return c.model }

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.doCall(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) > largeDataSetThreshold {
		return c.embedLarge(ctx, texts)
	}
	return embedding.InBatches(ctx, texts, config.EmbeddingBatchSize, c.doCall)
}

func (c *Client) doCall(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY))

	return util.Retry(ctx, c.policy, func(ctx context.Context) ([][]float32, error) {
		res, err := c.genAi.Models.EmbedContent(ctx, c.model, getContent(texts), c.embedConfig())
		if err != nil {
			if transient.Retryable(err) {
				log.Warn("Rate limit or outage from Google, retrying", "error", err)
			} else {
				log.Error("Error getting Embeddings from Google", "error", err)
			}
			return nil, transient.Classify("google embeddings", err)
		}
		if res == nil || len(res.Embeddings) != len(texts) {
			return nil, fmt.Errorf("google embeddings: expected %d vectors", len(texts))
		}

		out := make([][]float32, 0, len(res.Embeddings))
		for _, e := range res.Embeddings {
			out = append(out, e.Values)
		}
		return out, nil
	})
}

func (c *Client) embedConfig() *genai.EmbedContentConfig {
	dim := c.dimension
	return &genai.EmbedContentConfig{OutputDimensionality: &dim, TaskType: "RETRIEVAL_DOCUMENT"}
}
