package anthropicLLM

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/transient"
	"github.com/akolanti/ragchain/internal/util"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type Client struct {
	api    anthropic.Client
	model  string
	policy util.RetryPolicy
	logger *logger_i.Logger
}

func New(apiKey string, model string, policy util.RetryPolicy, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Client{
		api:    anthropic.NewClient(opts...),
		model:  model,
		policy: policy,
		logger: logger_i.NewLogger("llm_anthropic"),
	}
}

func (c *Client) Name() string { return config.ProviderAnthropic + ":" + c.model }

func (c *Client) Complete(ctx context.Context, messages []commonModels.Message) (string, error) {
	log := c.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY))

	system, rest := commonModels.SplitSystem(messages)
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   config.AnthropicMaxTokens,
		Messages:    toParams(rest),
		Temperature: anthropic.Float(config.ModelTemperature),
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}

	return util.Retry(ctx, c.policy, func(ctx context.Context) (string, error) {
		msg, err := c.api.Messages.New(ctx, params)
		if err != nil {
			log.Error("Anthropic completion failed", "error", err)
			return "", transient.Classify("anthropic messages", err)
		}

		var b strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		if b.Len() == 0 {
			return "", errors.New("anthropic messages: no text in response")
		}
		return b.String(), nil
	})
}

func toParams(messages []commonModels.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		if m.Role == commonModels.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	return out
}
