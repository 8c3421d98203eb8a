package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	EventDatasetLoaded  EventType = "dataset_loaded"
	EventDatasetFailed  EventType = "dataset_failed"
	EventSessionReload  EventType = "session_reload"
	EventRefreshStarted EventType = "refresh_started"
)

// Event represents a system event
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages the in-process pub/sub event bus feeding the
// websocket broadcaster.
type EventService interface {
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish sends an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	Close() error
}
