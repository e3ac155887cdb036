// Package models defines the shared data types for conversations and retrieval.
package models

import "time"

// Role identifies the author of a conversation turn or prompt message.
type Role string

const (
	// RoleSystem is the instruction message that carries retrieved context.
	RoleSystem Role = "system"

	// RoleHuman is a user message.
	RoleHuman Role = "human"

	// RoleAssistant is a model-generated message.
	RoleAssistant Role = "assistant"
)

// TimestampLayout is the wall-clock format recorded on turns.
const TimestampLayout = "15:04:05"

// Turn is a single message in a conversation, in submission order.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewTurn creates a turn stamped with the current wall-clock time.
func NewTurn(role Role, content string) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format(TimestampLayout),
	}
}

// Message is a prompt message sent to the chat model.
// Unlike Turn it carries no timestamp; it exists only for the
// duration of a single completion request.
type Message struct {
	Role    Role
	Content string
}
