package interfaces

import "context"

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string `json:"role"`

	// Content contains the text content of the message
	Content string `json:"content"`
}

// LLMService is the interface to the reasoning delegate. The core treats
// it strictly as text in, text out: prompt assembly happens on the
// caller's side and no structured schema is enforced in either direction.
// Retry and rate limiting are the implementation's concern, not the
// caller's.
type LLMService interface {
	// Chat generates a completion from the conversation history. Messages
	// are in chronological order and may include a system prompt.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the delegate is reachable and configured.
	HealthCheck(ctx context.Context) error

	// Close releases provider clients.
	Close() error
}
