package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akolanti/ragchain/internal/app"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/data/redisStore"
	"github.com/akolanti/ragchain/internal/data/store"
	"github.com/akolanti/ragchain/internal/rag"
	"github.com/akolanti/ragchain/internal/rag/conversation"
)

var chatSession string

// NewChatCmd creates chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about the indexed documents",
		Long: `Start an interactive conversation over the collection. Follow-up
questions are rewritten into standalone ones using the chat history before
retrieval. Type 'exit' to end the conversation.

With --session the history is kept in Redis and resumed on the next run.

Examples:
  ragchat chat
  ragchat chat --session odyssey`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatSession, "session", "", "Persist and resume history under this session id")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	sess, err := app.Open(ctx, cfg, app.NeedModel|app.NeedRetrieval)
	if err != nil {
		return err
	}
	defer sess.Close()

	state, closeState, err := openState(ctx, cfg, chatSession)
	if err != nil {
		return err
	}
	defer closeState()

	if !state.Empty() {
		fmt.Fprintf(out, "Resumed session %s with %d message(s)\n", state.SessionId(), state.Len())
	}
	return chatLoop(ctx, cmd.InOrStdin(), out, sess.ConversationalRAG(), state)
}

func chatLoop(ctx context.Context, in io.Reader, out io.Writer, chain *rag.ConversationalRAG, state *conversation.State) error {
	fmt.Fprintln(out, "Start chatting with the AI! Type 'exit' to end the conversation.")
	return repl(ctx, in, out, func(ctx context.Context, input string) (string, error) {
		res, err := chain.Turn(ctx, state, input)
		if err != nil {
			return "", err
		}
		return res.Answer, nil
	})
}

// openState returns an in-memory conversation, or one backed by the Redis
// history store when a session id is given.
func openState(ctx context.Context, cfg *config.Config, sessionId string) (*conversation.State, func(), error) {
	if sessionId == "" {
		return conversation.New(), func() {}, nil
	}

	rs, err := redisStore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, config.RedisHistoryStore)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to history store: %w", err)
	}
	closeFn := func() { _ = rs.Close() }

	history := store.NewRedisHistoryStore(rs, config.RedisHistoryStoreTTL)
	if !history.Exists(ctx, sessionId) {
		if err := history.Init(ctx, sessionId); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("creating session %s: %w", sessionId, err)
		}
	}

	state, err := conversation.Resume(ctx, history, sessionId)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return state, closeFn, nil
}
