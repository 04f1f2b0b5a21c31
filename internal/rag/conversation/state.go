// Package conversation keeps the ordered turn log of one chat session.
package conversation

import (
	"context"
	"fmt"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

// HistoryStore persists a session's messages between runs.
type HistoryStore interface {
	Load(ctx context.Context, sessionId string) ([]commonModels.Message, error)
	Append(ctx context.Context, sessionId string, messages ...commonModels.Message) error
}

// State is append-only. It is owned by a single session loop and is not
// safe for concurrent writers.
type State struct {
	sessionId string
	turns     []commonModels.Message
	store     HistoryStore
}

func New() *State {
	return &State{}
}

// Resume loads the stored turns of sessionId and persists every later append.
func Resume(ctx context.Context, store HistoryStore, sessionId string) (*State, error) {
	turns, err := store.Load(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", sessionId, err)
	}
	return &State{sessionId: sessionId, turns: turns, store: store}, nil
}

func (s *State) SessionId() string { return s.sessionId }

// Append adds user or assistant turns. The in-memory log is only extended
// once the store, if any, accepted them.
func (s *State) Append(ctx context.Context, turns ...commonModels.Message) error {
	for _, t := range turns {
		if t.Role != commonModels.RoleUser && t.Role != commonModels.RoleAssistant {
			return fmt.Errorf("conversation turn must be user or assistant, got %q", t.Role)
		}
	}
	if s.store != nil {
		if err := s.store.Append(ctx, s.sessionId, turns...); err != nil {
			return fmt.Errorf("persist history %s: %w", s.sessionId, err)
		}
	}
	s.turns = append(s.turns, turns...)
	return nil
}

// Messages returns a copy of the log.
func (s *State) Messages() []commonModels.Message {
	return append([]commonModels.Message{}, s.turns...)
}

func (s *State) Len() int    { return len(s.turns) }
func (s *State) Empty() bool { return len(s.turns) == 0 }
