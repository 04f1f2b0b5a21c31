package rag

import (
	"context"
	"sync"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

type mockEmbedder struct {
	OnEmbed func(ctx context.Context, text string) ([]float32, error)

	mu    sync.Mutex
	texts []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *mockEmbedder) Model() string { return "mock-embed" }

type mockIndex struct {
	OnQuery func(ctx context.Context, v []float32, k int, threshold *float32) (commonModels.RetrievalResult, error)
}

func (m *mockIndex) Insert(ctx context.Context, records []commonModels.VectorRecord) error { return nil }
func (m *mockIndex) DeleteDocument(ctx context.Context, docId string) error                 { return nil }

func (m *mockIndex) Query(ctx context.Context, v []float32, k int, threshold *float32) (commonModels.RetrievalResult, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, v, k, threshold)
	}
	return commonModels.RetrievalResult{
		{Content: "default context", Score: 0.9, Metadata: commonModels.Metadata{"source": "doc"}},
	}, nil
}

func (m *mockIndex) Count(ctx context.Context) (int, error) { return 0, nil }
func (m *mockIndex) Close() error                           { return nil }

type mockChatStore struct {
	OnLoad   func(ctx context.Context, id string) ([]commonModels.Message, error)
	OnAppend func(ctx context.Context, id string, msgs ...commonModels.Message) error

	saved map[string][]commonModels.Message
}

func (m *mockChatStore) Exists(ctx context.Context, id string) bool {
	_, ok := m.saved[id]
	return ok
}

func (m *mockChatStore) Init(ctx context.Context, id string) error { return nil }

func (m *mockChatStore) Load(ctx context.Context, id string) ([]commonModels.Message, error) {
	if m.OnLoad != nil {
		return m.OnLoad(ctx, id)
	}
	return append([]commonModels.Message(nil), m.saved[id]...), nil
}

func (m *mockChatStore) Append(ctx context.Context, id string, msgs ...commonModels.Message) error {
	if m.OnAppend != nil {
		return m.OnAppend(ctx, id, msgs...)
	}
	if m.saved == nil {
		m.saved = map[string][]commonModels.Message{}
	}
	m.saved[id] = append(m.saved[id], msgs...)
	return nil
}
