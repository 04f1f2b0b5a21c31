package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/llm/llmtest"
	"github.com/akolanti/ragchain/internal/rag/prompt"
)

func counting(counter *int32, fn func(any) (any, error)) Stage {
	return StageFunc(func(ctx context.Context, in any) (any, error) {
		atomic.AddInt32(counter, 1)
		return fn(in)
	})
}

func TestSequential_Composition(t *testing.T) {
	var cf, cg, ch int32
	f := counting(&cf, func(in any) (any, error) { return in.(int) + 1, nil })
	g := counting(&cg, func(in any) (any, error) { return in.(int) * 10, nil })
	h := counting(&ch, func(in any) (any, error) { return in.(int) - 3, nil })

	out, err := Sequential(f, g, h).Invoke(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, (4+1)*10-3, out)
	assert.Equal(t, []int32{1, 1, 1}, []int32{cf, cg, ch})
}

func TestSequential_ShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	var cf, cg, ch int32
	f := counting(&cf, func(in any) (any, error) { return nil, boom })
	g := counting(&cg, func(in any) (any, error) { return in, nil })
	h := counting(&ch, func(in any) (any, error) { return in, nil })

	_, err := Sequential(f, g, h).Invoke(context.Background(), 1)

	require.ErrorIs(t, err, boom)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Index)
	assert.Equal(t, int32(1), cf)
	assert.Zero(t, cg)
	assert.Zero(t, ch)
}

func TestSequential_PipeDoesNotMutate(t *testing.T) {
	base := Sequential(Passthrough())
	longer := base.Pipe(Const("x"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, longer.Len())
}

func TestParallel_KeysRegardlessOfOrder(t *testing.T) {
	slow := StageFunc(func(ctx context.Context, in any) (any, error) {
		time.Sleep(20 * time.Millisecond)
		return "a(" + in.(string) + ")", nil
	})
	fast := StageFunc(func(ctx context.Context, in any) (any, error) {
		return "b(" + in.(string) + ")", nil
	})

	out, err := Parallel(map[string]Stage{"A": slow, "B": fast}).Invoke(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"A": "a(x)", "B": "b(x)"}, out)
}

func TestParallel_CollectsAllFailures(t *testing.T) {
	var completed int32
	ok := StageFunc(func(ctx context.Context, in any) (any, error) {
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&completed, 1)
		return "fine", nil
	})
	bad := func(msg string) Stage {
		return StageFunc(func(ctx context.Context, in any) (any, error) { return nil, errors.New(msg) })
	}

	out, err := Parallel(map[string]Stage{"ok": ok, "x": bad("x failed"), "y": bad("y failed")}).
		Invoke(context.Background(), nil)

	var be *BranchErrors
	require.ErrorAs(t, err, &be)
	assert.Len(t, be.Errs, 2)
	assert.Contains(t, err.Error(), "x: x failed")
	assert.Contains(t, err.Error(), "y: y failed")
	assert.Equal(t, int32(1), completed)
	assert.Equal(t, map[string]any{"ok": "fine"}, out)
}

func TestParallel_InsideSequential(t *testing.T) {
	combine := Lambda(func(m map[string]any) (string, error) {
		return m["pros"].(string) + " | " + m["cons"].(string), nil
	})
	p := Sequential(
		Parallel(map[string]Stage{
			"pros": Lambda(func(s string) (string, error) { return "pros of " + s, nil }),
			"cons": Lambda(func(s string) (string, error) { return "cons of " + s, nil }),
		}),
		combine,
	)

	out, err := Run[string](context.Background(), p, "phone")
	require.NoError(t, err)
	assert.Equal(t, "pros of phone | cons of phone", out)
}

func TestPromptModelStrOutput(t *testing.T) {
	model := llmtest.MockChatModel{OnComplete: func(ctx context.Context, msgs []commonModels.Message) (string, error) {
		return strings.ToUpper(llmtest.LastUser(msgs)), nil
	}}
	tpl := prompt.New(
		prompt.System("You love facts and you tell facts about {animal}"),
		prompt.Human("Tell me {count} facts."),
	)

	chain := Sequential(Prompt(tpl), Model(&model, time.Second), StrOutput())
	out, err := Run[string](context.Background(), chain, map[string]any{"animal": "elephant", "count": 1})

	require.NoError(t, err)
	assert.Equal(t, "TELL ME 1 FACTS.", out)
	calls := model.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "You love facts and you tell facts about elephant", calls[0][0].Content)
}

func TestModel_Timeout(t *testing.T) {
	model := llmtest.MockChatModel{OnComplete: func(ctx context.Context, msgs []commonModels.Message) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}

	_, err := Model(&model, 5*time.Millisecond).Invoke(context.Background(), []commonModels.Message{commonModels.UserMessage("hi")})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTypeMismatch(t *testing.T) {
	_, err := Prompt(prompt.New()).Invoke(context.Background(), "not a map")
	assert.Error(t, err)

	_, err = StrOutput().Invoke(context.Background(), 42)
	assert.Error(t, err)
}
