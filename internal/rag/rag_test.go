package rag

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/internal/rag/conversation"
	"github.com/akolanti/ragchain/internal/rag/llm/llmtest"
)

func newChain(model *llmtest.MockChatModel, e *mockEmbedder, idx *mockIndex) *ConversationalRAG {
	return NewConversationalRAG(model, e, idx, Options{K: 3, CallTimeout: time.Second})
}

func TestTurn_EmptyHistorySkipsReformulation(t *testing.T) {
	model := llmtest.Reply("4")
	e := &mockEmbedder{}
	state := conversation.New()

	res, err := newChain(model, e, &mockIndex{}).Turn(context.Background(), state, "What is 2+2?")
	require.NoError(t, err)

	assert.Equal(t, "4", res.Answer)
	assert.Equal(t, "What is 2+2?", res.Query)
	assert.Len(t, model.Calls(), 1)
	assert.Equal(t, []string{"What is 2+2?"}, e.texts)

	msgs := state.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, commonModels.UserMessage("What is 2+2?"), msgs[0])
	assert.Equal(t, commonModels.AssistantMessage("4"), msgs[1])
}

func TestTurn_WithHistoryRetrievesStandaloneQuestion(t *testing.T) {
	model := &llmtest.MockChatModel{OnComplete: func(ctx context.Context, msgs []commonModels.Message) (string, error) {
		if strings.HasPrefix(msgs[0].Content, "Given a chat history") {
			return "  When did Homer write the Odyssey?\n", nil
		}
		return "Around the 8th century BC.", nil
	}}
	e := &mockEmbedder{}
	state := conversation.New()
	require.NoError(t, state.Append(context.Background(),
		commonModels.UserMessage("Who wrote the Odyssey?"),
		commonModels.AssistantMessage("Homer.")))

	res, err := newChain(model, e, &mockIndex{}).Turn(context.Background(), state, "When did he write it?")
	require.NoError(t, err)

	assert.Equal(t, "When did Homer write the Odyssey?", res.Query)
	assert.Equal(t, []string{"When did Homer write the Odyssey?"}, e.texts)
	calls := model.Calls()
	require.Len(t, calls, 2)

	// Answer prompt: system with context, two history turns, original input.
	answer := calls[1]
	require.Len(t, answer, 4)
	assert.True(t, strings.HasSuffix(answer[0].Content, "\n\ndefault context"))
	assert.Equal(t, "When did he write it?", answer[3].Content)
	assert.Equal(t, 4, state.Len())
}

func TestReformulate_BlankFallsBackToInput(t *testing.T) {
	model := llmtest.Reply("   ")
	history := []commonModels.Message{commonModels.UserMessage("hi"), commonModels.AssistantMessage("hello")}

	got, err := newChain(model, &mockEmbedder{}, &mockIndex{}).Reformulate(context.Background(), history, "and you?")
	require.NoError(t, err)
	assert.Equal(t, "and you?", got)
}

func TestAnswer_PassagesJoined(t *testing.T) {
	model := llmtest.Reply("ok")
	passages := commonModels.RetrievalResult{{Content: "first"}, {Content: "second"}}

	_, err := newChain(model, &mockEmbedder{}, &mockIndex{}).Answer(context.Background(), nil, "q", passages)
	require.NoError(t, err)

	sys := model.Calls()[0][0]
	assert.Equal(t, commonModels.RoleSystem, sys.Role)
	assert.True(t, strings.HasSuffix(sys.Content, "\n\nfirst\n\nsecond"))
}

func TestTurn_FailureLeavesStateUnchanged(t *testing.T) {
	model := &llmtest.MockChatModel{OnComplete: func(ctx context.Context, _ []commonModels.Message) (string, error) {
		return "", apperrors.Transient("llm", errors.New("overloaded"))
	}}
	state := conversation.New()

	_, err := newChain(model, &mockEmbedder{}, &mockIndex{}).Turn(context.Background(), state, "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
	assert.True(t, state.Empty())
}

func TestRetriever_PassesSearchParameters(t *testing.T) {
	var gotK int
	var gotThreshold *float32
	idx := &mockIndex{OnQuery: func(ctx context.Context, v []float32, k int, th *float32) (commonModels.RetrievalResult, error) {
		gotK, gotThreshold = k, th
		return nil, nil
	}}
	th := float32(0.4)

	r := NewRetriever(&mockEmbedder{}, idx, Options{}).WithSearch(5, &th)
	res, err := r.Retrieve(context.Background(), "q")

	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, 5, gotK)
	assert.Equal(t, &th, gotThreshold)

	NewRetriever(&mockEmbedder{}, idx, Options{}).Retrieve(context.Background(), "q")
	assert.Equal(t, config.DefaultRetrievalK, gotK)
}

func TestProcessChat_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *mockEmbedder, v *mockIndex, l *llmtest.MockChatModel, s *mockChatStore)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedErr    string
		expectedRetry  bool
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *mockEmbedder, v *mockIndex, l *llmtest.MockChatModel, s *mockChatStore) {
				l.OnComplete = func(ctx context.Context, _ []commonModels.Message) (string, error) { return "final answer", nil }
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: "final answer",
		},
		{
			name: "Failure_History_Load",
			setupMocks: func(e *mockEmbedder, v *mockIndex, l *llmtest.MockChatModel, s *mockChatStore) {
				s.OnLoad = func(ctx context.Context, id string) ([]commonModels.Message, error) {
					return nil, errors.New("redis down")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "HISTORY_LOAD_FAILURE",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *mockEmbedder, v *mockIndex, l *llmtest.MockChatModel, s *mockChatStore) {
				e.OnEmbed = func(ctx context.Context, text string) ([]float32, error) {
					return nil, apperrors.Transient("embedding", errors.New("api limit"))
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "RETRIEVAL_FAILURE",
			expectedRetry:  true,
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *mockEmbedder, v *mockIndex, l *llmtest.MockChatModel, s *mockChatStore) {
				v.OnQuery = func(ctx context.Context, _ []float32, _ int, _ *float32) (commonModels.RetrievalResult, error) {
					return nil, errors.New("db closed")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "RETRIEVAL_FAILURE",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *mockEmbedder, v *mockIndex, l *llmtest.MockChatModel, s *mockChatStore) {
				l.OnComplete = func(ctx context.Context, _ []commonModels.Message) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "LLM_GENERATION_FAILURE",
		},
		{
			name: "Failure_History_Save",
			setupMocks: func(e *mockEmbedder, v *mockIndex, l *llmtest.MockChatModel, s *mockChatStore) {
				s.OnAppend = func(ctx context.Context, id string, msgs ...commonModels.Message) error {
					return errors.New("redis down")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "HISTORY_SAVE_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &mockEmbedder{}
			mIdx := &mockIndex{}
			mLLM := &llmtest.MockChatModel{}
			mStore := &mockChatStore{}
			tt.setupMocks(mEmbed, mIdx, mLLM, mStore)

			s := NewService(newChain(mLLM, mEmbed, mIdx), mStore, nil, 5*time.Second)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id:         "test-job",
				ChatId:     "chat-1",
				JobPayload: jobModel.JobPayload{Question: "test question"},
			}

			result := s.ProcessChat(ctx, job)

			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, tt.expectedStep, result.CurrentStep)
			if tt.expectedAnswer != "" {
				assert.Equal(t, tt.expectedAnswer, result.JobPayload.Answer)
				assert.Equal(t, []string{"doc"}, result.JobPayload.Sources)
				assert.Len(t, mStore.saved["chat-1"], 2)
			}
			if tt.expectedErr != "" {
				assert.Equal(t, http.StatusInternalServerError, result.Error.Code)
				assert.Equal(t, tt.expectedErr, result.Error.Message)
				assert.Equal(t, tt.expectedRetry, result.Error.Retry)
			}
		})
	}
}

func TestProcessChat_UsesStoredHistory(t *testing.T) {
	mLLM := llmtest.Reply("standalone")
	mStore := &mockChatStore{saved: map[string][]commonModels.Message{
		"chat-1": {commonModels.UserMessage("earlier"), commonModels.AssistantMessage("reply")},
	}}
	s := NewService(newChain(mLLM, &mockEmbedder{}, &mockIndex{}), mStore, nil, 0)

	result := s.ProcessChat(context.Background(), jobModel.Job{Id: "j", ChatId: "chat-1", JobPayload: jobModel.JobPayload{Question: "next"}})

	assert.Equal(t, jobModel.JobStatusComplete, result.Status)
	assert.Equal(t, "standalone", result.JobPayload.StandaloneQuery)
	assert.Len(t, mLLM.Calls(), 2)
	assert.Len(t, mStore.saved["chat-1"], 4)
}

func TestIngestDocument_NoIngester(t *testing.T) {
	s := NewService(newChain(llmtest.Reply("x"), &mockEmbedder{}, &mockIndex{}), &mockChatStore{}, nil, 0)

	result := s.IngestDocument(context.Background(), jobModel.Job{Id: "j", JobType: jobModel.JobTypeIngest})
	assert.Equal(t, jobModel.JobStatusError, result.Status)
	assert.Equal(t, "INGESTION_FAILURE", result.Error.Message)
}
