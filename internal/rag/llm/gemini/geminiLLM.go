package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/transient"
	"github.com/akolanti/ragchain/internal/util"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type Client struct {
	client    *genai.Client
	modelName string
	policy    util.RetryPolicy
	logger    *logger_i.Logger
}

func New(ctx context.Context, apiKey string, modelName string, policy util.RetryPolicy) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	log := logger_i.NewLogger("llm_gemini")
	log.Info("Gemini client created", "model", modelName)
	return &Client{client: c, modelName: modelName, policy: policy, logger: log}, nil
}

func (c *Client) Name() string { return config.ProviderGemini + ":" + c.modelName }

func (c *Client) Complete(ctx context.Context, messages []commonModels.Message) (string, error) {
	log := c.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY))

	system, rest := commonModels.SplitSystem(messages)
	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](config.ModelTemperature),
	}
	if len(system) > 0 {
		contentConfig.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	contents := toContents(rest)

	return util.Retry(ctx, c.policy, func(ctx context.Context) (string, error) {
		result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
		if err != nil {
			log.Error("Gemini generation failed", "error", err)
			return "", transient.Classify("gemini generate", err)
		}
		if result == nil {
			return "", errors.New("gemini generate: empty response")
		}
		return result.Text(), nil
	})
}

func toContents(messages []commonModels.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == commonModels.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}
