package core

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn authored by the assistant.
	RoleAssistant Role = "assistant"
)

// Turn is one message within a session. Turns are append-only: once committed
// to a memory buffer they are never edited, only evicted from the oldest end.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
