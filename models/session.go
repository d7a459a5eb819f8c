package models

import "time"

// Message is one turn in a session's conversation history.
type Message struct {
	Role      string         `json:"role"` // user, assistant
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Session is the cached conversation state keyed by an opaque session ID.
// History is optional context for generation, never a correctness
// dependency.
type Session struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Messages  []Message      `json:"messages"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
