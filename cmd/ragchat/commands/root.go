package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// NewRootCmd builds the ragchat command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragchat",
		Short: "Chat with your documents",
		Long: `ragchat indexes documents into a vector store and answers questions
about them with a chat model, keeping track of the conversation.

Configuration comes from the environment or a .env file:
  LLM_PROVIDER, OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY,
  EMBEDDING_PROVIDER, VECTOR_BACKEND, VECTOR_DB_PATH, REDIS_ADDR, ...`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewChainCmd())
	cmd.AddCommand(NewAgentCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewServeCmd())

	return cmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
