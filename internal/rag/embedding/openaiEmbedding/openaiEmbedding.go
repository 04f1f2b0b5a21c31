package openaiEmbedding

import (
	"context"
	"sort"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/rag/embedding"
	"github.com/akolanti/ragchain/internal/rag/transient"
	"github.com/akolanti/ragchain/internal/util"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type Client struct {
	api    openai.Client
	model  string
	policy util.RetryPolicy
	logger *logger_i.Logger
}

// New builds an OpenAI embedder. Retries are handled by policy, so the SDK's
// own retry loop is switched off.
func New(apiKey string, model string, policy util.RetryPolicy, opts ...option.RequestOption) *Client {
	if model == "" {
		model = config.DefaultOpenAIEmbeddingModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Client{
		api:    openai.NewClient(opts...),
		model:  model,
		policy: policy,
		logger: logger_i.NewLogger("openai_embedding"),
	}
}

func (c *Client) Model() string { return c.model }

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.InBatches(ctx, texts, config.EmbeddingBatchSize, c.doCall)
}

func (c *Client) doCall(ctx context.Context, batch []string) ([][]float32, error) {
	log := c.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY))

	return util.Retry(ctx, c.policy, func(ctx context.Context) ([][]float32, error) {
		resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
			Model: openai.EmbeddingModel(c.model),
		})
		if err != nil {
			log.Error("Error getting embeddings from OpenAI", "error", err, "batch", len(batch))
			return nil, transient.Classify("openai embeddings", err)
		}

		data := resp.Data
		sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

		out := make([][]float32, len(data))
		for i, d := range data {
			vec := make([]float32, len(d.Embedding))
			for k, f := range d.Embedding {
				vec[k] = float32(f)
			}
			out[i] = vec
		}
		return out, nil
	})
}
