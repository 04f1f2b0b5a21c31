package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/llm/llmtest"
)

func fixedClock() time.Time { return time.Date(2024, 5, 1, 15, 4, 0, 0, time.Local) }

// scripted replies with replies[i] on the i-th call.
func scripted(replies ...string) *llmtest.MockChatModel {
	i := 0
	return &llmtest.MockChatModel{OnComplete: func(ctx context.Context, _ []commonModels.Message) (string, error) {
		if i >= len(replies) {
			return "", errors.New("no more replies")
		}
		i++
		return replies[i-1], nil
	}}
}

func TestTimeTool(t *testing.T) {
	out, err := TimeTool(fixedClock).Call(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "03:04 PM", out)
}

func TestExecutor_UsesToolThenAnswers(t *testing.T) {
	model := scripted(
		" I need the time.\nAction: Time\nAction Input: now\nObservation: made up",
		" I now know the final answer\nFinal Answer: It is 03:04 PM.",
	)
	exec := NewExecutor(model, []Tool{TimeTool(fixedClock)}, 5, time.Second)

	res, err := exec.Run(context.Background(), nil, "What time is it?")
	require.NoError(t, err)

	assert.Equal(t, "It is 03:04 PM.", res.Output)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "Time", res.Steps[0].Tool)
	assert.Equal(t, "03:04 PM", res.Steps[0].Observation)

	second := model.Calls()[1]
	last := second[len(second)-1].Content
	assert.Contains(t, last, "Action Input: now\nObservation: 03:04 PM\nThought: ")
	assert.NotContains(t, last, "made up")
	assert.Contains(t, second[0].Content, "Time: Useful for when you need to know the current time.")
	assert.Contains(t, second[0].Content, "should be one of [Time]")
}

func TestExecutor_BadOutputFedBack(t *testing.T) {
	model := scripted(
		"I am confused",
		"Action: Search\nAction Input: cats",
		"Final Answer: done",
	)
	exec := NewExecutor(model, []Tool{TimeTool(fixedClock)}, 5, time.Second)

	res, err := exec.Run(context.Background(), nil, "q")
	require.NoError(t, err)
	require.Len(t, res.Steps, 2)
	assert.Contains(t, res.Steps[0].Observation, "Invalid Format")
	assert.Equal(t, "Search is not a valid tool, try one of [Time].", res.Steps[1].Observation)
	assert.Equal(t, "done", res.Output)
}

func TestExecutor_IterationLimit(t *testing.T) {
	model := &llmtest.MockChatModel{OnComplete: func(ctx context.Context, _ []commonModels.Message) (string, error) {
		return "Action: Time\nAction Input: x", nil
	}}
	exec := NewExecutor(model, []Tool{TimeTool(fixedClock)}, 3, time.Second)

	res, err := exec.Run(context.Background(), nil, "loop")
	assert.ErrorIs(t, err, ErrIterationLimit)
	assert.Len(t, res.Steps, 3)
	assert.Len(t, model.Calls(), 3)
}

func TestExecutor_HistoryInPrompt(t *testing.T) {
	model := scripted("Final Answer: hi Bob")
	history := []commonModels.Message{commonModels.UserMessage("I am Bob"), commonModels.AssistantMessage("Hello Bob")}

	_, err := NewExecutor(model, nil, 0, time.Second).Run(context.Background(), history, "who am I?")
	require.NoError(t, err)

	msgs := model.Calls()[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, history, msgs[1:3])
	assert.Equal(t, "Question: who am I?\nThought:", msgs[3].Content)
}

func TestWikipediaTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page/summary/Go_(programming_language)":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"type":"standard","extract":"Go is a language. It was designed at Google. It is compiled."}`))
		case "/page/summary/Mercury":
			w.Write([]byte(`{"type":"disambiguation","extract":"Mercury may refer to:"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tool := WikipediaTool(srv.URL, srv.Client())
	tests := []struct {
		query string
		want  string
	}{
		{"Go (programming language)", "Go is a language. It was designed at Google."},
		{"Mercury", wikipediaNotFound},
		{"Nothing here", wikipediaNotFound},
		{"  ", wikipediaNotFound},
	}
	for _, tt := range tests {
		got, err := tool.Call(context.Background(), tt.query)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestFirstSentences(t *testing.T) {
	assert.Equal(t, "A b. C d!", firstSentences("A b. C d! E f?", 2))
	assert.Equal(t, "Version 1.2 is out.", firstSentences("Version 1.2 is out.", 2))
	assert.Equal(t, "no end", firstSentences("no end", 2))
	assert.True(t, strings.HasSuffix(firstSentences("One. Two. Three.", 1), "One."))
}
