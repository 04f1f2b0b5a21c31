package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/llm"
	"github.com/akolanti/ragchain/internal/rag/pipeline"
)

var (
	askProviders []string
	askSystem    string
)

// NewAskCmd creates ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Send one question to several chat providers",
		Long: `Send the same system and user message to every listed provider at
once and print each answer. A provider without credentials or failing its
call is reported without stopping the others.

Examples:
  ragchat ask "What is 81 divided by 9?"
  ragchat ask --providers openai,gemini --system "Answer in French" "Hello"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringSliceVar(&askProviders, "providers",
		[]string{config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderGemini}, "Providers to ask")
	cmd.Flags().StringVar(&askSystem, "system", "Solve the following math problems", "System message")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	models := make(map[string]llm.ChatModel, len(askProviders))
	failed := make(map[string]error)
	for _, p := range askProviders {
		m, err := llm.New(ctx, cfg, p)
		if err != nil {
			failed[p] = err
			continue
		}
		models[p] = m
	}

	messages := []commonModels.Message{
		commonModels.SystemMessage(askSystem),
		commonModels.UserMessage(args[0]),
	}
	answers, errs := compareProviders(ctx, models, messages, cfg.CallTimeout)
	for p, err := range failed {
		errs[p] = err
	}
	printAnswers(cmd.OutOrStdout(), answers, errs)

	if len(answers) == 0 {
		return errors.New("no provider answered")
	}
	return nil
}

// compareProviders runs every model on the same messages concurrently.
func compareProviders(ctx context.Context, models map[string]llm.ChatModel, messages []commonModels.Message, timeout time.Duration) (map[string]string, map[string]error) {
	branches := make(map[string]pipeline.Stage, len(models))
	for name, m := range models {
		branches[name] = pipeline.Sequential(pipeline.Model(m, timeout), pipeline.StrOutput())
	}

	answers := make(map[string]string)
	errs := make(map[string]error)

	out, err := pipeline.Parallel(branches).Invoke(ctx, messages)
	var be *pipeline.BranchErrors
	if errors.As(err, &be) {
		for name, e := range be.Errs {
			errs[name] = e
		}
	}
	results, _ := out.(map[string]any)
	for name, v := range results {
		answers[name], _ = v.(string)
	}
	return answers, errs
}

func printAnswers(w io.Writer, answers map[string]string, errs map[string]error) {
	names := make([]string, 0, len(answers)+len(errs))
	for n := range answers {
		names = append(names, n)
	}
	for n := range errs {
		if _, ok := answers[n]; !ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	for _, n := range names {
		if err, ok := errs[n]; ok {
			fmt.Fprintf(w, "Error from %s: %v\n", n, err)
			continue
		}
		fmt.Fprintf(w, "Answer from %s: %s\n", n, answers[n])
	}
}
