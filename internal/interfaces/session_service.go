package interfaces

import (
	"context"

	"github.com/ternarybob/geoscope/internal/models"
)

// SourceStatus reports the outcome of loading one source URL.
type SourceStatus struct {
	URL     string `json:"url"`
	Loaded  bool   `json:"loaded"`
	Error   string `json:"error,omitempty"`
	Dataset string `json:"dataset_id,omitempty"`
}

// LoadResult is the outcome of a load or reload operation.
type LoadResult struct {
	SessionID string                   `json:"session_id"`
	Sources   []SourceStatus           `json:"sources"`
	Profiles  []*models.DatasetProfile `json:"profiles"`
}

// SessionSnapshot is the immutable published state of a session: either
// the old complete snapshot or the new one is observed, never a mix.
type SessionSnapshot struct {
	Session  *models.Session
	Datasets []*models.Dataset
	Profiles []*models.DatasetProfile
}

// SessionService owns the session lifecycle: created on first load,
// replaced wholesale on reload, discarded when the interaction ends.
type SessionService interface {
	// Load fetches, normalizes and profiles the given sources, replacing
	// the current snapshot. It succeeds when at least one source loads;
	// per-source failures are reported in the result.
	Load(ctx context.Context, urls []string, center models.Center, zoom int) (*LoadResult, error)

	// Reload re-fetches the current session's source URLs.
	Reload(ctx context.Context) (*LoadResult, error)

	// Snapshot returns the current published snapshot, or nil before the
	// first successful load.
	Snapshot() *SessionSnapshot

	// AppendHistory records a chat exchange against the current session.
	AppendHistory(role, content string) error

	// History returns the current session's conversation in order.
	History() ([]models.ChatMessage, error)

	Close() error
}
