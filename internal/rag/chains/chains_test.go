package chains

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/llm/llmtest"
	"github.com/akolanti/ragchain/internal/rag/pipeline"
)

func TestBasic(t *testing.T) {
	model := llmtest.Reply("why did the lawyer cross the road")

	out, err := pipeline.Run[string](context.Background(), Basic(model, time.Second),
		map[string]any{"topic": "lawyers", "joke_count": 3})
	require.NoError(t, err)
	assert.Equal(t, "why did the lawyer cross the road", out)

	msgs := model.Calls()[0]
	assert.Equal(t, commonModels.SystemMessage("You are a comedian who tells jokes about lawyers."), msgs[0])
	assert.Equal(t, commonModels.UserMessage("Tell me 3 jokes."), msgs[1])
}

func TestExtended(t *testing.T) {
	out, err := pipeline.Run[string](context.Background(), Extended(llmtest.Reply("two words"), time.Second),
		map[string]any{"topic": "cats", "joke_count": 1})
	require.NoError(t, err)
	assert.Equal(t, "Word count: 2\nTWO WORDS", out)
}

func TestWithWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Word count: 0\n"},
		{"one", "Word count: 1\none"},
		{"  spread \n over\tlines ", "Word count: 3\n  spread \n over\tlines "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WithWordCount(tt.in))
	}
}

func TestProductReview(t *testing.T) {
	var calls int32
	model := &llmtest.MockChatModel{OnComplete: func(ctx context.Context, msgs []commonModels.Message) (string, error) {
		atomic.AddInt32(&calls, 1)
		q := llmtest.LastUser(msgs)
		switch {
		case strings.HasPrefix(q, "List the main features"):
			return "retina screen", nil
		case strings.HasSuffix(q, "list the pros of these features."):
			return "sharp", nil
		case strings.HasSuffix(q, "list the cons of these features."):
			return "pricey", nil
		}
		return "", nil
	}}

	out, err := pipeline.Run[string](context.Background(), ProductReview(model, time.Second),
		map[string]any{"product_name": "MacBook Pro"})
	require.NoError(t, err)
	assert.Equal(t, "Pros:\nsharp\n\nCons:\npricey", out)
	assert.Equal(t, int32(3), calls)

	for _, msgs := range model.Calls()[1:] {
		assert.Contains(t, llmtest.LastUser(msgs), "Given these features: retina screen,")
	}
}

func TestProductReview_BranchFailure(t *testing.T) {
	model := &llmtest.MockChatModel{OnComplete: func(ctx context.Context, msgs []commonModels.Message) (string, error) {
		if strings.Contains(llmtest.LastUser(msgs), "cons") {
			return "", assert.AnError
		}
		return "ok", nil
	}}

	_, err := pipeline.Run[string](context.Background(), ProductReview(model, time.Second),
		map[string]any{"product_name": "x"})

	var be *pipeline.BranchErrors
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Errs, "cons")
	assert.NotContains(t, be.Errs, "pros")
}
