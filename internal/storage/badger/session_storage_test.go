package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/common"
	"github.com/ternarybob/geoscope/internal/models"
)

func newTestStorage(t *testing.T) *SessionStorage {
	t.Helper()

	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSessionStorage(db, logger)
}

func TestSaveAndGetSession(t *testing.T) {
	storage := newTestStorage(t)

	session := &models.Session{
		ID:         "session-1",
		SourceURLs: []string{"https://example.com/data.geojson"},
		Center:     models.Center{Latitude: -33.87, Longitude: 151.21},
		Zoom:       11,
	}
	require.NoError(t, storage.SaveSession(session))
	assert.False(t, session.CreatedAt.IsZero())
	assert.False(t, session.UpdatedAt.IsZero())

	got, err := storage.GetSession("session-1")
	require.NoError(t, err)
	assert.Equal(t, session.SourceURLs, got.SourceURLs)
	assert.Equal(t, 11, got.Zoom)
}

func TestSaveSession_RequiresID(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.SaveSession(&models.Session{})
	assert.Error(t, err)
}

func TestSaveSession_UpdatePreservesCreatedAt(t *testing.T) {
	storage := newTestStorage(t)

	session := &models.Session{ID: "session-1"}
	require.NoError(t, storage.SaveSession(session))
	created := session.CreatedAt

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, storage.SaveSession(session))

	assert.Equal(t, created, session.CreatedAt)
	assert.True(t, session.UpdatedAt.After(created))
}

func TestGetSession_NotFound(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.GetSession("missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteSession(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveSession(&models.Session{ID: "session-1"}))
	require.NoError(t, storage.DeleteSession("session-1"))

	_, err := storage.GetSession("session-1")
	assert.Error(t, err)

	// Deleting twice is not an error
	assert.NoError(t, storage.DeleteSession("session-1"))
}

func TestMessages(t *testing.T) {
	storage := newTestStorage(t)

	base := time.Now()
	msgs := []models.ChatMessage{
		{ID: "m-2", SessionID: "session-1", Role: "assistant", Content: "hi", CreatedAt: base.Add(time.Second)},
		{ID: "m-1", SessionID: "session-1", Role: "user", Content: "hello", CreatedAt: base},
		{ID: "m-3", SessionID: "other", Role: "user", Content: "unrelated", CreatedAt: base},
	}
	for i := range msgs {
		require.NoError(t, storage.SaveMessage(&msgs[i]))
	}

	got, err := storage.GetMessages("session-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Chronological order regardless of insertion order
	assert.Equal(t, "m-1", got[0].ID)
	assert.Equal(t, "m-2", got[1].ID)
}

func TestSaveMessage_Validation(t *testing.T) {
	storage := newTestStorage(t)

	assert.Error(t, storage.SaveMessage(&models.ChatMessage{SessionID: "s"}))
	assert.Error(t, storage.SaveMessage(&models.ChatMessage{ID: "m"}))
}

func TestDeleteMessages(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveMessage(&models.ChatMessage{ID: "m-1", SessionID: "session-1", Role: "user", Content: "hello"}))
	require.NoError(t, storage.SaveMessage(&models.ChatMessage{ID: "m-2", SessionID: "other", Role: "user", Content: "kept"}))

	require.NoError(t, storage.DeleteMessages("session-1"))

	got, err := storage.GetMessages("session-1")
	require.NoError(t, err)
	assert.Empty(t, got)

	kept, err := storage.GetMessages("other")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
