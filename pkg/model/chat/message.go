package chat

import "time"

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation. Assistant messages start empty and
// grow as streamed text arrives.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is the wire form of a message inside a chat request body.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
