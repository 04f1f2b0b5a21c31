package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/internal/rag/llm"
	"github.com/akolanti/ragchain/internal/rag/prompt"
)

// Prompt renders a template from a map[string]any input.
func Prompt(tpl prompt.Template) Stage {
	return StageFunc(func(ctx context.Context, input any) (any, error) {
		vars, err := expect[map[string]any]("prompt", input)
		if err != nil {
			return nil, err
		}
		return tpl.Compose(vars)
	})
}

// Model sends a message list to the chat model, bounded by timeout when it
// is positive.
func Model(m llm.ChatModel, timeout time.Duration) Stage {
	return StageFunc(func(ctx context.Context, input any) (any, error) {
		msgs, err := expect[[]commonModels.Message]("model", input)
		if err != nil {
			return nil, err
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

		return m.Complete(ctx, msgs)
	})
}

// StrOutput turns a model reply into a plain string.
func StrOutput() Stage {
	return StageFunc(func(ctx context.Context, input any) (any, error) {
		switch v := input.(type) {
		case string:
			return v, nil
		case commonModels.Message:
			return v.Content, nil
		case fmt.Stringer:
			return v.String(), nil
		default:
			return nil, fmt.Errorf("str output: unexpected input %T", input)
		}
	})
}

// Lambda adapts a typed function into a stage.
func Lambda[In any, Out any](fn func(In) (Out, error)) Stage {
	return StageFunc(func(ctx context.Context, input any) (any, error) {
		v, err := expect[In]("lambda", input)
		if err != nil {
			return nil, err
		}
		return fn(v)
	})
}

// Const ignores its input and yields value. Useful as a parallel branch that
// passes a fixed value through.
func Const(value any) Stage {
	return StageFunc(func(ctx context.Context, input any) (any, error) { return value, nil })
}

// Passthrough yields its input unchanged.
func Passthrough() Stage {
	return StageFunc(func(ctx context.Context, input any) (any, error) { return input, nil })
}

// Run invokes s and asserts the final output type.
func Run[Out any](ctx context.Context, s Stage, input any) (Out, error) {
	var zero Out
	out, err := s.Invoke(ctx, input)
	if err != nil {
		return zero, err
	}
	return expect[Out]("result", out)
}

func expect[T any](stage string, input any) (T, error) {
	v, ok := input.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: expected %T, got %T", stage, zero, input)
	}
	return v, nil
}
