package llm

import (
	"context"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/llm/anthropicLLM"
	"github.com/akolanti/ragchain/internal/rag/llm/gemini"
	"github.com/akolanti/ragchain/internal/rag/llm/openaiLLM"
)

// ChatModel turns an ordered message list into a single text completion.
type ChatModel interface {
	Complete(ctx context.Context, messages []commonModels.Message) (string, error)
	Name() string
}

// New builds the chat model for provider using the model configured for it.
// An empty provider means cfg.LLMProvider.
func New(ctx context.Context, cfg *config.Config, provider string) (ChatModel, error) {
	if provider == "" {
		provider = cfg.LLMProvider
	}
	if err := cfg.RequireKeys(provider); err != nil {
		return nil, err
	}

	model := config.DefaultChatModel(provider)
	if provider == cfg.LLMProvider && cfg.ChatModel != "" {
		model = cfg.ChatModel
	}
	key, _ := cfg.APIKeyFor(provider)
	policy := cfg.RetryPolicy()

	switch provider {
	case config.ProviderOpenAI:
		return openaiLLM.New(key, model, policy), nil
	case config.ProviderAnthropic:
		return anthropicLLM.New(key, model, policy), nil
	case config.ProviderGemini, config.ProviderGoogle:
		c, err := gemini.New(ctx, key, model, policy)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, apperrors.NewConfigError("LLM_PROVIDER", "unknown provider %q", provider)
}
