package interfaces

import "github.com/ternarybob/geoscope/internal/models"

// SessionStorage persists sessions and chat history. The default backing
// store runs in memory, so nothing survives a restart.
type SessionStorage interface {
	SaveSession(session *models.Session) error
	GetSession(id string) (*models.Session, error)
	DeleteSession(id string) error

	SaveMessage(msg *models.ChatMessage) error
	GetMessages(sessionID string) ([]models.ChatMessage, error)
	DeleteMessages(sessionID string) error

	Close() error
}
