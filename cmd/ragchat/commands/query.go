package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akolanti/ragchain/internal/app"
	"github.com/akolanti/ragchain/internal/config"
)

var (
	queryK         int
	queryThreshold float64
)

// NewQueryCmd creates query command
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Show the passages retrieved for a question",
		Long: `Embed a question and print the most similar chunks of the collection
with their source, without calling a chat model.

Examples:
  ragchat query "Who is Odysseus' wife?"
  ragchat query --k 1 --threshold 0.2 "How can I learn more about LangChain?"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().IntVar(&queryK, "k", config.DefaultRetrievalK, "Number of passages to return")
	cmd.Flags().Float64Var(&queryThreshold, "threshold", config.DefaultScoreThreshold, "Minimum similarity score (0 disables)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("k") {
		cfg.RetrievalK = queryK
	}
	if cmd.Flags().Changed("threshold") {
		cfg.ScoreThreshold = queryThreshold
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, err := app.Open(ctx, cfg, app.NeedRetrieval)
	if err != nil {
		return err
	}
	defer sess.Close()

	passages, err := sess.Retriever().Retrieve(ctx, args[0])
	if err != nil {
		return fmt.Errorf("retrieving: %w", err)
	}
	printPassages(cmd.OutOrStdout(), passages)
	return nil
}
