package interfaces

import (
	"context"

	"github.com/ternarybob/geoscope/internal/models"
)

// AnswerSource identifies how a chat answer was produced.
type AnswerSource string

const (
	// AnswerSourceDeterministic means the answer came straight from the
	// statistics engine with no LLM involvement.
	AnswerSourceDeterministic AnswerSource = "deterministic"

	// AnswerSourceDelegated means the question was handed to the reasoning
	// delegate with a context bundle attached.
	AnswerSourceDelegated AnswerSource = "delegated"
)

// ChatRequest represents one question about the loaded datasets.
type ChatRequest struct {
	// User's message
	Message string `json:"message"`

	// Conversation history (optional)
	History []Message `json:"history,omitempty"`
}

// ChatResponse represents the answer to a chat request.
type ChatResponse struct {
	// Answer text (markdown when delegated)
	Message string `json:"message"`

	// Answer rendered as HTML for the chat widget
	MessageHTML string `json:"message_html,omitempty"`

	// How the answer was produced
	Source AnswerSource `json:"source"`

	// Attribute matched by the router, when any
	Attribute string `json:"attribute,omitempty"`

	// Aggregates computed for a statistic-intent question, when any
	Aggregates *models.AttributeAggregates `json:"aggregates,omitempty"`
}

// ChatService answers natural-language questions about the session's
// datasets, deterministically where possible and by delegation otherwise.
type ChatService interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// HealthCheck verifies the underlying reasoning delegate is usable.
	HealthCheck(ctx context.Context) error
}
