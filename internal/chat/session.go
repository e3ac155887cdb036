// Package chat implements the retrieval-augmented conversation pipeline:
// context assembly, session state, response streaming and the exchange
// orchestration that ties them together.
package chat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/raphaelgruber/docchat/internal/models"
)

// State is the turn-taking state of a session.
type State string

const (
	// StateIdle means no exchange is pending.
	StateIdle State = "idle"

	// StateAwaitingContext means a human turn was received and retrieval
	// is in flight.
	StateAwaitingContext State = "awaiting_context"

	// StateAwaitingCompletion means context is assembled and generation
	// is in flight.
	StateAwaitingCompletion State = "awaiting_completion"
)

// Session holds the ordered turn history of one conversation and enforces
// the turn-taking state machine. History lives only for the session's
// lifetime; nothing is persisted.
//
// A single goroutine drives the active exchange; the mutex guards reads
// from the rendering side.
type Session struct {
	mu           sync.Mutex
	id           uuid.UUID
	state        State
	turns        []models.Turn
	pendingClear bool
}

// NewSession creates an empty session in the idle state.
func NewSession() *Session {
	return &Session{
		id:    uuid.New(),
		state: StateIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the current turn-taking state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Turns returns a copy of the full turn history, including any in-flight
// human turn.
func (s *Session) Turns() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// History returns the turns of completed exchanges only: while an exchange
// is in flight its human turn is excluded, so the prompt history never
// duplicates the current query.
func (s *Session) History() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.turns
	if s.state != StateIdle && len(turns) > 0 {
		turns = turns[:len(turns)-1]
	}
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out
}

// Submit starts an exchange with a human query. Valid only when idle.
// The human turn is appended immediately; a later Fail removes it again.
func (s *Session) Submit(query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("cannot submit while %s", s.state)
	}
	s.pendingClear = false
	s.turns = append(s.turns, models.NewTurn(models.RoleHuman, query))
	s.state = StateAwaitingContext
	return nil
}

// ContextReady marks retrieval as finished for the active exchange.
func (s *Session) ContextReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingContext {
		return fmt.Errorf("context ready while %s", s.state)
	}
	s.state = StateAwaitingCompletion
	return nil
}

// CompletionReady finishes the active exchange with the assistant reply.
func (s *Session) CompletionReady(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingCompletion {
		return fmt.Errorf("completion ready while %s", s.state)
	}
	s.turns = append(s.turns, models.NewTurn(models.RoleAssistant, text))
	s.state = StateIdle
	return nil
}

// Fail aborts the active exchange and rolls the session back to idle.
// The pending human turn is removed so a failed exchange never leaves an
// unanswered turn in history. Calling Fail while idle is a no-op.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return
	}
	if n := len(s.turns); n > 0 && s.turns[n-1].Role == models.RoleHuman {
		s.turns = s.turns[:n-1]
	}
	s.state = StateIdle
}

// Clear requests a history wipe. The first call arms the pending clear and
// returns false; a second call confirms and empties history. Valid only
// when idle. Any intervening Submit disarms the pending clear.
func (s *Session) Clear() (cleared bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return false, fmt.Errorf("cannot clear while %s", s.state)
	}
	if !s.pendingClear {
		s.pendingClear = true
		return false, nil
	}
	s.pendingClear = false
	s.turns = nil
	return true, nil
}

// ClearPending reports whether a clear request is armed and awaiting
// confirmation.
func (s *Session) ClearPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingClear
}

// Reset empties the history without a confirmation step, for an explicit
// "start over". Valid in any state; an in-flight exchange is abandoned.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.pendingClear = false
	s.state = StateIdle
}
