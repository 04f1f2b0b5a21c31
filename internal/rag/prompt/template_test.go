package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		vars    map[string]any
		want    string
		missing string
	}{
		{"single", "Tell me {joke_count} jokes.", map[string]any{"joke_count": 3}, "Tell me 3 jokes.", ""},
		{"repeated", "{topic} and {topic}", map[string]any{"topic": "cats"}, "cats and cats", ""},
		{"escaped braces", "json: {{\"a\": {n}}}", map[string]any{"n": 1}, "json: {\"a\": 1}", ""},
		{"non identifier kept", "set {1, 2} and { spaced }", nil, "set {1, 2} and { spaced }", ""},
		{"unclosed kept", "open {brace", nil, "open {brace", ""},
		{"missing", "You are a comedian who tells jokes about {topic}.", map[string]any{}, "", "topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.text, tt.vars)
			if tt.missing != "" {
				var mv *MissingVariableError
				require.ErrorAs(t, err, &mv)
				assert.Equal(t, tt.missing, mv.Name)
				assert.True(t, errors.Is(err, apperrors.ErrMissingVariable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompose_HistoryPlaceholder(t *testing.T) {
	tpl := New(
		System("Answer using this context:\n\n{context}"),
		MessagesPlaceholder("chat_history"),
		Human("{input}"),
	)
	history := []commonModels.Message{
		commonModels.UserMessage("who wrote the odyssey?"),
		commonModels.AssistantMessage("Homer."),
	}

	msgs, err := tpl.Compose(map[string]any{
		"context":      "passage one\n\npassage two",
		"chat_history": history,
		"input":        "when?",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, commonModels.RoleSystem, msgs[0].Role)
	assert.Equal(t, "Answer using this context:\n\npassage one\n\npassage two", msgs[0].Content)
	assert.Equal(t, history, msgs[1:3])
	assert.Equal(t, commonModels.UserMessage("when?"), msgs[3])
}

func TestCompose_EmptyHistory(t *testing.T) {
	tpl := New(MessagesPlaceholder("chat_history"), Human("{input}"))

	msgs, err := tpl.Compose(map[string]any{"chat_history": []commonModels.Message{}, "input": "hi"})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestCompose_MissingAnyVariableFails(t *testing.T) {
	tpl := New(
		System("You are an expert product reviewer."),
		MessagesPlaceholder("chat_history"),
		Human("Given these features: {features}, list the {kind}."),
	)
	full := map[string]any{
		"chat_history": []commonModels.Message(nil),
		"features":     "battery, screen",
		"kind":         "pros",
	}

	_, err := tpl.Compose(full)
	require.NoError(t, err)

	for _, name := range tpl.Variables() {
		vars := make(map[string]any, len(full))
		for k, v := range full {
			if k != name {
				vars[k] = v
			}
		}
		_, err := tpl.Compose(vars)
		assert.ErrorIs(t, err, apperrors.ErrMissingVariable, "omitting %q", name)
	}
}

func TestCompose_NoLeftoverPlaceholders(t *testing.T) {
	tpl := New(
		System("You are a facts expert who knows facts about {animal}."),
		Human("Tell me {fact_count} facts."),
	)
	msgs, err := tpl.Compose(map[string]any{"animal": "elephant", "fact_count": 2})
	require.NoError(t, err)

	for _, m := range msgs {
		for _, name := range tpl.Variables() {
			assert.False(t, strings.Contains(m.Content, "{"+name+"}"), "leftover %s in %q", name, m.Content)
		}
	}
}

func TestCompose_WrongHistoryType(t *testing.T) {
	tpl := New(MessagesPlaceholder("chat_history"))
	_, err := tpl.Compose(map[string]any{"chat_history": "not messages"})
	assert.ErrorIs(t, err, ErrNotMessages)
}

func TestVariables(t *testing.T) {
	tpl := New(
		System("{a} {{literal}} {b}"),
		MessagesPlaceholder("chat_history"),
		Human("{a} {input}"),
	)
	assert.Equal(t, []string{"a", "b", "chat_history", "input"}, tpl.Variables())
}

func TestFromMessages_RoleNames(t *testing.T) {
	tpl := FromMessages(
		[2]string{"system", "s"},
		[2]string{"human", "h"},
		[2]string{"ai", "a"},
	)
	msgs, err := tpl.Compose(nil)
	require.NoError(t, err)
	assert.Equal(t, []commonModels.Message{
		commonModels.SystemMessage("s"),
		commonModels.UserMessage("h"),
		commonModels.AssistantMessage("a"),
	}, msgs)
}

func TestCompose_FewShotAssistantTurn(t *testing.T) {
	tpl := New(
		Human("What is {a} + {a}?"),
		Assistant("{a} + {a} is 2."),
		Human("{input}"),
	)
	msgs, err := tpl.Compose(map[string]any{"a": 1, "input": "And 2 + 2?"})
	require.NoError(t, err)
	assert.Equal(t, commonModels.AssistantMessage("1 + 1 is 2."), msgs[1])
	assert.Equal(t, commonModels.UserMessage("And 2 + 2?"), msgs[2])
}
