// Package pipeline composes stages into sequential and parallel flows.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

type Stage interface {
	Invoke(ctx context.Context, input any) (any, error)
}

type StageFunc func(ctx context.Context, input any) (any, error)

func (f StageFunc) Invoke(ctx context.Context, input any) (any, error) { return f(ctx, input) }

type StageError struct {
	Index int
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %d: %v", e.Index, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

type SequentialStage struct {
	stages []Stage
}

// Sequential feeds each stage's output into the next. The first failure
// stops the run; later stages are not invoked.
func Sequential(stages ...Stage) *SequentialStage {
	return &SequentialStage{stages: append([]Stage(nil), stages...)}
}

// Pipe returns a new pipeline with next appended.
func (s *SequentialStage) Pipe(next ...Stage) *SequentialStage {
	stages := make([]Stage, 0, len(s.stages)+len(next))
	stages = append(stages, s.stages...)
	stages = append(stages, next...)
	return &SequentialStage{stages: stages}
}

func (s *SequentialStage) Len() int { return len(s.stages) }

func (s *SequentialStage) Invoke(ctx context.Context, input any) (any, error) {
	value := input
	for i, st := range s.stages {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Index: i, Err: err}
		}
		out, err := st.Invoke(ctx, value)
		if err != nil {
			return nil, &StageError{Index: i, Err: err}
		}
		value = out
	}
	return value, nil
}

// BranchErrors lists every branch of a Parallel stage that failed.
type BranchErrors struct {
	Errs map[string]error
}

func (e *BranchErrors) Error() string {
	names := make([]string, 0, len(e.Errs))
	for n := range e.Errs {
		names = append(names, n)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", n, e.Errs[n]))
	}
	return fmt.Sprintf("%d branch(es) failed: %s", len(names), strings.Join(parts, "; "))
}

func (e *BranchErrors) Unwrap() []error {
	out := make([]error, 0, len(e.Errs))
	for _, err := range e.Errs {
		out = append(out, err)
	}
	return out
}

type ParallelStage struct {
	branches map[string]Stage
}

// Parallel runs every branch on the same input concurrently and waits for
// all of them. The output is a map[string]any keyed by branch name holding
// each successful result. If any branch failed the map is still returned,
// together with a *BranchErrors.
func Parallel(branches map[string]Stage) *ParallelStage {
	copied := make(map[string]Stage, len(branches))
	for k, v := range branches {
		copied[k] = v
	}
	return &ParallelStage{branches: copied}
}

func (p *ParallelStage) Invoke(ctx context.Context, input any) (any, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]any, len(p.branches))
		failed  = make(map[string]error)
		g       errgroup.Group
	)

	for name, branch := range p.branches {
		g.Go(func() error {
			out, err := branch.Invoke(ctx, input)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[name] = err
				return nil
			}
			results[name] = out
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		return results, &BranchErrors{Errs: failed}
	}
	return results, nil
}
