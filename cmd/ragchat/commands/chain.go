package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akolanti/ragchain/internal/app"
	"github.com/akolanti/ragchain/internal/rag/chains"
	"github.com/akolanti/ragchain/internal/rag/llm"
	"github.com/akolanti/ragchain/internal/rag/pipeline"
)

var (
	chainTopic   string
	chainCount   int
	chainProduct string
)

var chainNames = []string{"basic", "extended", "review"}

// NewChainCmd creates chain command
func NewChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <basic|extended|review>",
		Short: "Run one of the example prompt pipelines",
		Long: `Run a ready-made pipeline against the configured chat model.

  basic     tell --count jokes about --topic
  extended  basic, upper-cased and prefixed with a word count
  review    list the features of --product, then its pros and cons in parallel

Examples:
  ragchat chain basic --topic lawyers --count 3
  ragchat chain review --product "MacBook Pro"`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: chainNames,
		RunE:      runChain,
	}

	cmd.Flags().StringVar(&chainTopic, "topic", "lawyers", "Joke topic for basic and extended")
	cmd.Flags().IntVar(&chainCount, "count", 3, "Number of jokes for basic and extended")
	cmd.Flags().StringVar(&chainProduct, "product", "MacBook Pro", "Product name for review")

	return cmd
}

func runChain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	sess, err := app.Open(ctx, cfg, app.NeedModel)
	if err != nil {
		return err
	}
	defer sess.Close()

	stage, input, err := buildChain(args[0], sess.Model, cfg.CallTimeout)
	if err != nil {
		return err
	}
	out, err := pipeline.Run[string](ctx, stage, input)
	if err != nil {
		return fmt.Errorf("running %s chain: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func buildChain(name string, model llm.ChatModel, timeout time.Duration) (pipeline.Stage, map[string]any, error) {
	switch name {
	case "basic":
		return chains.Basic(model, timeout), map[string]any{"topic": chainTopic, "joke_count": chainCount}, nil
	case "extended":
		return chains.Extended(model, timeout), map[string]any{"topic": chainTopic, "joke_count": chainCount}, nil
	case "review":
		return chains.ProductReview(model, timeout), map[string]any{"product_name": chainProduct}, nil
	}
	return nil, nil, fmt.Errorf("unknown chain %q, want one of %v", name, chainNames)
}
