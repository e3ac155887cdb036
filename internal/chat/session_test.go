package chat

import (
	"testing"

	"github.com/raphaelgruber/docchat/internal/models"
)

func TestSessionSuccessPath(t *testing.T) {
	s := NewSession()

	if s.State() != StateIdle {
		t.Fatalf("new session state = %s, want idle", s.State())
	}

	if err := s.Submit("what is a cat?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.State() != StateAwaitingContext {
		t.Fatalf("state after submit = %s, want awaiting_context", s.State())
	}

	if err := s.ContextReady(); err != nil {
		t.Fatalf("ContextReady: %v", err)
	}
	if s.State() != StateAwaitingCompletion {
		t.Fatalf("state after context = %s, want awaiting_completion", s.State())
	}

	if err := s.CompletionReady("a small felid"); err != nil {
		t.Fatalf("CompletionReady: %v", err)
	}
	if s.State() != StateIdle {
		t.Fatalf("state after completion = %s, want idle", s.State())
	}

	turns := s.Turns()
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0].Role != models.RoleHuman || turns[1].Role != models.RoleAssistant {
		t.Errorf("turn roles = %s, %s; want human, assistant", turns[0].Role, turns[1].Role)
	}
	if turns[0].Timestamp == "" || turns[1].Timestamp == "" {
		t.Error("turns missing timestamps")
	}
}

func TestSessionFailureRollsBack(t *testing.T) {
	s := NewSession()

	// Seed one completed exchange.
	mustExchange(t, s, "q1", "a1")
	before := s.Turns()

	if err := s.Submit("q2"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	s.Fail()

	if s.State() != StateIdle {
		t.Errorf("state after fail = %s, want idle", s.State())
	}
	after := s.Turns()
	if len(after) != len(before) {
		t.Fatalf("failed exchange changed history: %d turns, want %d", len(after), len(before))
	}
	for i := range after {
		if after[i].Content != before[i].Content {
			t.Errorf("turn %d changed: %q != %q", i, after[i].Content, before[i].Content)
		}
	}
}

func TestSessionFailDuringGeneration(t *testing.T) {
	s := NewSession()
	if err := s.Submit("q"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.ContextReady(); err != nil {
		t.Fatalf("ContextReady: %v", err)
	}
	s.Fail()

	if got := len(s.Turns()); got != 0 {
		t.Errorf("history has %d turns after failed generation, want 0", got)
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
}

func TestSessionInvalidTransitions(t *testing.T) {
	s := NewSession()

	if err := s.ContextReady(); err == nil {
		t.Error("ContextReady from idle accepted")
	}
	if err := s.CompletionReady("x"); err == nil {
		t.Error("CompletionReady from idle accepted")
	}

	if err := s.Submit("q"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.Submit("q2"); err == nil {
		t.Error("double submit accepted")
	}
	if _, err := s.Clear(); err == nil {
		t.Error("clear during exchange accepted")
	}
}

func TestSessionClearConfirmation(t *testing.T) {
	s := NewSession()
	mustExchange(t, s, "q", "a")

	cleared, err := s.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared {
		t.Fatal("first clear call wiped history without confirmation")
	}
	if len(s.Turns()) != 2 {
		t.Fatal("unconfirmed clear touched history")
	}
	if !s.ClearPending() {
		t.Fatal("clear not armed after first call")
	}

	cleared, err = s.Clear()
	if err != nil {
		t.Fatalf("Clear (confirm): %v", err)
	}
	if !cleared {
		t.Fatal("second clear call did not confirm")
	}
	if len(s.Turns()) != 0 {
		t.Errorf("history has %d turns after confirmed clear, want 0", len(s.Turns()))
	}
}

func TestSessionSubmitDisarmsClear(t *testing.T) {
	s := NewSession()
	mustExchange(t, s, "q", "a")

	if _, err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	mustExchange(t, s, "q2", "a2")

	cleared, err := s.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared {
		t.Error("clear confirmed across an intervening exchange")
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession()
	mustExchange(t, s, "q", "a")

	s.Reset()
	if len(s.Turns()) != 0 {
		t.Errorf("history has %d turns after reset, want 0", len(s.Turns()))
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
}

func TestSessionHistoryExcludesInFlightTurn(t *testing.T) {
	s := NewSession()
	mustExchange(t, s, "q1", "a1")

	if err := s.Submit("q2"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	history := s.History()
	if len(history) != 2 {
		t.Fatalf("history has %d turns during exchange, want 2", len(history))
	}
	for _, turn := range history {
		if turn.Content == "q2" {
			t.Error("in-flight query leaked into history")
		}
	}

	// Full turn list still includes it.
	if got := len(s.Turns()); got != 3 {
		t.Errorf("Turns() = %d, want 3", got)
	}
}

func mustExchange(t *testing.T, s *Session, query, answer string) {
	t.Helper()
	if err := s.Submit(query); err != nil {
		t.Fatalf("Submit(%q): %v", query, err)
	}
	if err := s.ContextReady(); err != nil {
		t.Fatalf("ContextReady: %v", err)
	}
	if err := s.CompletionReady(answer); err != nil {
		t.Fatalf("CompletionReady: %v", err)
	}
}
