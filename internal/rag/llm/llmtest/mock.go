// Package llmtest holds a scriptable ChatModel for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

type MockChatModel struct {
	OnComplete func(ctx context.Context, messages []commonModels.Message) (string, error)

	mu    sync.Mutex
	calls [][]commonModels.Message
}

func (m *MockChatModel) Complete(ctx context.Context, messages []commonModels.Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]commonModels.Message(nil), messages...))
	m.mu.Unlock()

	if m.OnComplete != nil {
		return m.OnComplete(ctx, messages)
	}
	return "mock answer", nil
}

func (m *MockChatModel) Name() string { return "mock" }

func (m *MockChatModel) Calls() [][]commonModels.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]commonModels.Message(nil), m.calls...)
}

// Reply returns a model that always answers text.
func Reply(text string) *MockChatModel {
	return &MockChatModel{OnComplete: func(ctx context.Context, _ []commonModels.Message) (string, error) {
		return text, nil
	}}
}

// LastUser is the content of the last user message in messages.
func LastUser(messages []commonModels.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == commonModels.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
