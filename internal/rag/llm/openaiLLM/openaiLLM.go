package openaiLLM

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
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

func New(apiKey string, model string, policy util.RetryPolicy, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Client{
		api:    openai.NewClient(opts...),
		model:  model,
		policy: policy,
		logger: logger_i.NewLogger("llm_openai"),
	}
}

func (c *Client) Name() string { return config.ProviderOpenAI + ":" + c.model }

func (c *Client) Complete(ctx context.Context, messages []commonModels.Message) (string, error) {
	log := c.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toParams(messages),
		Temperature: openai.Float(config.ModelTemperature),
	}

	return util.Retry(ctx, c.policy, func(ctx context.Context) (string, error) {
		resp, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			log.Error("OpenAI completion failed", "error", err)
			return "", transient.Classify("openai chat", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("openai chat: empty response")
		}
		return resp.Choices[0].Message.Content, nil
	})
}

func toParams(messages []commonModels.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case commonModels.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case commonModels.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
