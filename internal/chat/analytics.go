package chat

import (
	"time"

	"github.com/raphaelgruber/docchat/internal/models"
)

// Analytics summarizes a session's turn history.
type Analytics struct {
	Messages      int
	Questions     int
	ResponseTimes []time.Duration
}

// Analyze computes message counts and the response-time distribution from
// paired human/assistant turn timestamps. Unparseable timestamps are
// skipped rather than failing the summary.
func Analyze(turns []models.Turn) Analytics {
	a := Analytics{Messages: len(turns)}
	for _, t := range turns {
		if t.Role == models.RoleHuman {
			a.Questions++
		}
	}

	for i := 1; i < len(turns); i += 2 {
		asked, err1 := time.Parse(models.TimestampLayout, turns[i-1].Timestamp)
		answered, err2 := time.Parse(models.TimestampLayout, turns[i].Timestamp)
		if err1 != nil || err2 != nil {
			continue
		}
		if d := answered.Sub(asked); d >= 0 {
			a.ResponseTimes = append(a.ResponseTimes, d)
		}
	}
	return a
}
