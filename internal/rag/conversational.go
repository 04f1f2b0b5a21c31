package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/internal/rag/conversation"
	"github.com/akolanti/ragchain/internal/rag/embedding"
	"github.com/akolanti/ragchain/internal/rag/llm"
	"github.com/akolanti/ragchain/internal/rag/pipeline"
	"github.com/akolanti/ragchain/internal/rag/vectorDB"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type Options struct {
	K           int
	Threshold   *float32
	CallTimeout time.Duration
}

// ConversationalRAG answers a user turn in two steps: reformulate the input
// into a standalone question using the chat history, then retrieve passages
// for it and answer from them.
type ConversationalRAG struct {
	model     llm.ChatModel
	retriever *Retriever
	timeout   time.Duration

	reformulate *pipeline.SequentialStage
	answer      *pipeline.SequentialStage
	logger      *logger_i.Logger
}

type Result struct {
	Input    string
	Query    string
	Answer   string
	Passages commonModels.RetrievalResult
}

// StepObserver is told which step a turn is in.
type StepObserver func(step jobModel.InternalStatus)

func NewConversationalRAG(model llm.ChatModel, e embedding.Embedder, index vectorDB.VectorIndex, opts Options) *ConversationalRAG {
	return &ConversationalRAG{
		model:       model,
		retriever:   NewRetriever(e, index, opts),
		timeout:     opts.CallTimeout,
		reformulate: pipeline.Sequential(pipeline.Prompt(ContextualizePrompt), pipeline.Model(model, opts.CallTimeout), pipeline.StrOutput()),
		answer:      pipeline.Sequential(pipeline.Prompt(QAPrompt), pipeline.Model(model, opts.CallTimeout), pipeline.StrOutput()),
		logger:      logger_i.NewLogger("conversational_rag"),
	}
}

func (c *ConversationalRAG) Retriever() *Retriever { return c.retriever }

// Turn runs one user turn against state and, on success, appends the
// (user, assistant) pair. On failure state is unchanged.
func (c *ConversationalRAG) Turn(ctx context.Context, state *conversation.State, input string) (Result, error) {
	res, err := c.Run(ctx, state.Messages(), input, nil)
	if err != nil {
		return Result{}, err
	}
	err = state.Append(ctx, commonModels.UserMessage(input), commonModels.AssistantMessage(res.Answer))
	return res, err
}

// Run answers input given history without touching any state.
func (c *ConversationalRAG) Run(ctx context.Context, history []commonModels.Message, input string, observe StepObserver) (Result, error) {
	if observe == nil {
		observe = func(jobModel.InternalStatus) {}
	}
	log := c.logger.With("turn", len(history)/2)
	res := Result{Input: input}

	observe(jobModel.Reformulate)
	query, err := c.executeReformulateStep(ctx, log, history, input)
	if err != nil {
		return res, fmt.Errorf("reformulate: %w", err)
	}
	res.Query = query

	observe(jobModel.Retrieve)
	passages, err := c.retriever.Retrieve(ctx, query)
	if err != nil {
		return res, fmt.Errorf("retrieve: %w", err)
	}
	res.Passages = passages

	observe(jobModel.LLMCall)
	answer, err := c.executeAnswerStep(ctx, log, history, input, passages)
	if err != nil {
		return res, fmt.Errorf("answer: %w", err)
	}
	res.Answer = answer
	return res, nil
}

// Reformulate returns input unchanged when history is empty; otherwise it
// asks the model for a standalone version of the question.
func (c *ConversationalRAG) Reformulate(ctx context.Context, history []commonModels.Message, input string) (string, error) {
	if len(history) == 0 {
		return input, nil
	}
	out, err := pipeline.Run[string](ctx, c.reformulate, map[string]any{
		varHistory: history,
		varInput:   input,
	})
	if err != nil {
		return "", err
	}
	if out = strings.TrimSpace(out); out == "" {
		return input, nil
	}
	return out, nil
}

// Answer asks the model to answer input from passages. Zero passages still
// produce an answer; the prompt tells the model to admit it does not know.
func (c *ConversationalRAG) Answer(ctx context.Context, history []commonModels.Message, input string, passages commonModels.RetrievalResult) (string, error) {
	out, err := pipeline.Run[string](ctx, c.answer, map[string]any{
		varContext: strings.Join(passages.Contents(), "\n\n"),
		varHistory: history,
		varInput:   input,
	})
	return strings.TrimSpace(out), err
}
