// Package agent runs a ReAct loop that lets a chat model call tools.
package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/internal/rag/llm"
	"github.com/akolanti/ragchain/internal/rag/pipeline"
	"github.com/akolanti/ragchain/internal/rag/prompt"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

const reactInstructions = `Answer the following questions as best you can. You have access to the following tools:

{tools}

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{tool_names}]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Begin!`

var ReActPrompt = prompt.New(
	prompt.System(reactInstructions),
	prompt.MessagesPlaceholder("chat_history"),
	prompt.Human("Question: {input}\nThought:{agent_scratchpad}"),
)

var ErrIterationLimit = errors.New("agent stopped due to iteration limit")

var actionPattern = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)

const finalAnswerMarker = "Final Answer:"

// Step is one tool call the agent made.
type Step struct {
	Log         string
	Tool        string
	Input       string
	Observation string
}

type Result struct {
	Output string
	Steps  []Step
}

type Executor struct {
	tools         []Tool
	byName        map[string]Tool
	maxIterations int
	think         *pipeline.SequentialStage
	logger        *logger_i.Logger
}

func NewExecutor(model llm.ChatModel, tools []Tool, maxIterations int, timeout time.Duration) *Executor {
	if maxIterations <= 0 {
		maxIterations = config.AgentMaxIterations
	}
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Executor{
		tools:         tools,
		byName:        byName,
		maxIterations: maxIterations,
		think:         pipeline.Sequential(pipeline.Prompt(ReActPrompt), pipeline.Model(model, timeout), pipeline.StrOutput()),
		logger:        logger_i.NewLogger("agent"),
	}
}

// Run answers input, calling tools for at most maxIterations model turns.
func (e *Executor) Run(ctx context.Context, history []commonModels.Message, input string) (Result, error) {
	var res Result
	vars := map[string]any{
		"tools":        e.describeTools(),
		"tool_names":   e.toolNames(),
		"chat_history": history,
		"input":        input,
	}

	for i := 0; i < e.maxIterations; i++ {
		vars["agent_scratchpad"] = scratchpad(res.Steps)

		start := time.Now()
		out, err := pipeline.Run[string](ctx, e.think, vars)
		metrics.CaptureExecutionMetrics("agent_step", time.Since(start))
		if err != nil {
			return res, err
		}
		out = truncateAtObservation(out)

		if idx := strings.LastIndex(out, finalAnswerMarker); idx >= 0 {
			res.Output = strings.TrimSpace(out[idx+len(finalAnswerMarker):])
			return res, nil
		}

		step := Step{Log: out}
		m := actionPattern.FindStringSubmatch(out)
		if m == nil {
			step.Tool = "_Exception"
			step.Observation = "Invalid Format: Missing 'Action:' after 'Thought:'"
		} else {
			step.Tool = strings.TrimSpace(m[1])
			step.Input = strings.Trim(strings.TrimSpace(m[2]), `"`)
			step.Observation = e.callTool(ctx, step.Tool, step.Input)
		}
		e.logger.Debug("agent step", "iteration", i, "tool", step.Tool, "input", step.Input)
		res.Steps = append(res.Steps, step)
	}
	return res, fmt.Errorf("%w (%d)", ErrIterationLimit, e.maxIterations)
}

func (e *Executor) callTool(ctx context.Context, name string, input string) string {
	t, ok := e.byName[name]
	if !ok {
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", name, e.toolNames())
	}
	out, err := t.Call(ctx, input)
	if err != nil {
		e.logger.Warn("tool failed", "tool", name, "error", err)
		return "Error: " + err.Error()
	}
	return out
}

func (e *Executor) describeTools() string {
	lines := make([]string, 0, len(e.tools))
	for _, t := range e.tools {
		lines = append(lines, t.Name+": "+t.Description)
	}
	return strings.Join(lines, "\n")
}

func (e *Executor) toolNames() string {
	names := make([]string, 0, len(e.tools))
	for _, t := range e.tools {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func scratchpad(steps []Step) string {
	var b strings.Builder
	for _, s := range steps {
		b.WriteString(s.Log)
		b.WriteString("\nObservation: ")
		b.WriteString(s.Observation)
		b.WriteString("\nThought: ")
	}
	return b.String()
}

// truncateAtObservation drops anything the model invented after its action.
func truncateAtObservation(out string) string {
	if idx := strings.Index(out, "\nObservation:"); idx >= 0 {
		return out[:idx]
	}
	return out
}
