package interview

import "time"

// Turn roles. The engine only ever appends these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session captures one user's interview lifetime.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is one message in a session transcript. Turns are immutable once
// appended; insertion order is the only meaningful order.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Dimension Dimension `json:"dimension,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
