package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/akolanti/ragchain/internal/agent"
	"github.com/akolanti/ragchain/internal/app"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/conversation"
)

var agentMaxSteps int

// NewAgentCmd creates agent command
func NewAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Chat with a tool-using agent",
		Long: `Start an interactive ReAct agent that can look up the current time and
Wikipedia summaries. The agent remembers earlier turns of the conversation.
Type 'exit' to end the conversation.

Examples:
  ragchat agent
  ragchat agent --max-steps 3`,
		Args: cobra.NoArgs,
		RunE: runAgent,
	}

	cmd.Flags().IntVar(&agentMaxSteps, "max-steps", config.AgentMaxIterations, "Maximum tool calls per question")

	return cmd
}

func runAgent(cmd *cobra.Command, args []string) error {
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

	tools := []agent.Tool{
		agent.TimeTool(time.Now),
		agent.WikipediaTool(cfg.WikipediaURL, nil),
	}
	executor := agent.NewExecutor(sess.Model, tools, agentMaxSteps, cfg.CallTimeout)
	return agentLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), executor)
}

func agentLoop(ctx context.Context, in io.Reader, out io.Writer, executor *agent.Executor) error {
	memory := conversation.New()
	fmt.Fprintln(out, "Ask the agent anything! Type 'exit' to end the conversation.")
	return repl(ctx, in, out, func(ctx context.Context, input string) (string, error) {
		res, err := executor.Run(ctx, memory.Messages(), input)
		if err != nil {
			return "", err
		}
		if err := memory.Append(ctx, commonModels.UserMessage(input), commonModels.AssistantMessage(res.Output)); err != nil {
			return "", err
		}
		return res.Output, nil
	})
}
