package chat

import (
	"testing"
	"time"

	"github.com/raphaelgruber/docchat/internal/models"
)

func TestAnalyze(t *testing.T) {
	turns := []models.Turn{
		{Role: models.RoleHuman, Content: "q1", Timestamp: "10:00:00"},
		{Role: models.RoleAssistant, Content: "a1", Timestamp: "10:00:04"},
		{Role: models.RoleHuman, Content: "q2", Timestamp: "10:01:00"},
		{Role: models.RoleAssistant, Content: "a2", Timestamp: "10:01:02"},
	}

	a := Analyze(turns)
	if a.Messages != 4 {
		t.Errorf("Messages = %d, want 4", a.Messages)
	}
	if a.Questions != 2 {
		t.Errorf("Questions = %d, want 2", a.Questions)
	}
	if len(a.ResponseTimes) != 2 {
		t.Fatalf("ResponseTimes = %v, want 2 entries", a.ResponseTimes)
	}
	if a.ResponseTimes[0] != 4*time.Second || a.ResponseTimes[1] != 2*time.Second {
		t.Errorf("ResponseTimes = %v, want [4s 2s]", a.ResponseTimes)
	}
}

func TestAnalyzeSkipsBadTimestamps(t *testing.T) {
	turns := []models.Turn{
		{Role: models.RoleHuman, Content: "q", Timestamp: "not a time"},
		{Role: models.RoleAssistant, Content: "a", Timestamp: "10:00:01"},
	}

	a := Analyze(turns)
	if len(a.ResponseTimes) != 0 {
		t.Errorf("ResponseTimes = %v, want empty for unparseable timestamps", a.ResponseTimes)
	}
	if a.Messages != 2 || a.Questions != 1 {
		t.Errorf("counts = %d/%d, want 2/1", a.Messages, a.Questions)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(nil)
	if a.Messages != 0 || a.Questions != 0 || len(a.ResponseTimes) != 0 {
		t.Errorf("Analyze(nil) = %+v, want zero values", a)
	}
}
