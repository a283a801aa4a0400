package chat

import "time"

// Roles a conversation message may carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message persists individual turns for audit/debug. Messages are
// append-only: once stored they are never mutated.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
