package models

import "time"

// Session records one interactive session: the source URLs it was loaded
// from and the requested map view. The canonical datasets themselves live
// in the session service's in-memory snapshot; only the durable facts are
// stored here.
type Session struct {
	ID         string    `badgerhold:"key" json:"id"`
	SourceURLs []string  `json:"source_urls"`
	Center     Center    `json:"center"`
	Zoom       int       `json:"zoom"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ChatMessage is one entry of a session's conversation history.
type ChatMessage struct {
	ID        string    `badgerhold:"key" json:"id"`
	SessionID string    `badgerholdIndex:"SessionID" json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
