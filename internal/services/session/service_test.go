package session

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/common"
	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/models"
	"github.com/ternarybob/geoscope/internal/services/profiler"
)

// stubFetcher serves canned payloads keyed by URL.
type stubFetcher struct {
	payloads map[string]string
	errs     map[string]error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) interfaces.FetchResult {
	if err, ok := f.errs[url]; ok {
		return interfaces.FetchResult{URL: url, Err: err}
	}
	return interfaces.FetchResult{URL: url, Payload: json.RawMessage(f.payloads[url])}
}

func (f *stubFetcher) FetchAll(ctx context.Context, urls []string) []interfaces.FetchResult {
	results := make([]interfaces.FetchResult, 0, len(urls))
	for _, u := range urls {
		results = append(results, f.Fetch(ctx, u))
	}
	return results
}

// memoryStorage keeps sessions and messages in plain maps.
type memoryStorage struct {
	sessions map[string]*models.Session
	messages map[string][]models.ChatMessage
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		sessions: map[string]*models.Session{},
		messages: map[string][]models.ChatMessage{},
	}
}

func (m *memoryStorage) SaveSession(s *models.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *memoryStorage) GetSession(id string) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return s, nil
}

func (m *memoryStorage) DeleteSession(id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *memoryStorage) SaveMessage(msg *models.ChatMessage) error {
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], *msg)
	return nil
}

func (m *memoryStorage) GetMessages(sessionID string) ([]models.ChatMessage, error) {
	return m.messages[sessionID], nil
}

func (m *memoryStorage) DeleteMessages(sessionID string) error {
	delete(m.messages, sessionID)
	return nil
}

func (m *memoryStorage) Close() error { return nil }

const goodPayload = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"name": "A"}}
	]
}`

func newTestService(fetcher interfaces.FetchService) (*Service, *memoryStorage) {
	logger := arbor.NewLogger()
	storage := newMemoryStorage()
	svc := NewService(fetcher, profiler.NewService(logger), storage, nil, common.NewDefaultConfig(), logger)
	return svc, storage
}

func TestLoad(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string]string{"https://a.example/data": goodPayload}}
	service, storage := newTestService(fetcher)

	result, err := service.Load(context.Background(), []string{"https://a.example/data"}, models.Center{Latitude: 1, Longitude: 2}, 8)
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.True(t, result.Sources[0].Loaded)
	require.Len(t, result.Profiles, 1)
	assert.Equal(t, 1, result.Profiles[0].FeatureCount)

	snapshot := service.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, result.SessionID, snapshot.Session.ID)
	assert.Equal(t, 8, snapshot.Session.Zoom)
	assert.Len(t, snapshot.Datasets, 1)

	// Session persisted
	_, err = storage.GetSession(result.SessionID)
	assert.NoError(t, err)
}

func TestLoad_PartialFailure(t *testing.T) {
	fetcher := &stubFetcher{
		payloads: map[string]string{"https://a.example/good": goodPayload},
		errs:     map[string]error{"https://b.example/bad": fmt.Errorf("connection refused")},
	}
	service, _ := newTestService(fetcher)

	result, err := service.Load(context.Background(), []string{"https://a.example/good", "https://b.example/bad"}, models.Center{}, 0)
	require.NoError(t, err)

	require.Len(t, result.Sources, 2)
	assert.True(t, result.Sources[0].Loaded)
	assert.False(t, result.Sources[1].Loaded)
	assert.Contains(t, result.Sources[1].Error, "connection refused")

	// Only the surviving source becomes a dataset
	assert.Len(t, service.Snapshot().Datasets, 1)
}

func TestLoad_MalformedSourceIsolated(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string]string{
		"https://a.example/good": goodPayload,
		"https://b.example/junk": `{"data": "not a feature collection"}`,
	}}
	service, _ := newTestService(fetcher)

	result, err := service.Load(context.Background(), []string{"https://a.example/good", "https://b.example/junk"}, models.Center{}, 0)
	require.NoError(t, err)

	assert.True(t, result.Sources[0].Loaded)
	assert.False(t, result.Sources[1].Loaded)
	assert.NotEmpty(t, result.Sources[1].Error)
}

func TestLoad_AllSourcesFail(t *testing.T) {
	fetcher := &stubFetcher{errs: map[string]error{
		"https://a.example/x": fmt.Errorf("timeout"),
		"https://b.example/y": fmt.Errorf("timeout"),
	}}
	service, _ := newTestService(fetcher)

	_, err := service.Load(context.Background(), []string{"https://a.example/x", "https://b.example/y"}, models.Center{}, 0)
	assert.Error(t, err)
	assert.Nil(t, service.Snapshot())
}

func TestLoad_NoURLs(t *testing.T) {
	service, _ := newTestService(&stubFetcher{})

	_, err := service.Load(context.Background(), []string{"", "  "}, models.Center{}, 0)
	assert.Error(t, err)
}

func TestLoad_TooManySources(t *testing.T) {
	service, _ := newTestService(&stubFetcher{})

	urls := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	_, err := service.Load(context.Background(), urls, models.Center{}, 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "too many sources")
}

func TestLoad_DefaultZoomApplied(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string]string{"https://a.example/data": goodPayload}}
	service, _ := newTestService(fetcher)

	_, err := service.Load(context.Background(), []string{"https://a.example/data"}, models.Center{}, 0)
	require.NoError(t, err)

	assert.Equal(t, common.NewDefaultConfig().Map.DefaultZoom, service.Snapshot().Session.Zoom)
}

func TestReload_KeepsSessionIdentity(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string]string{"https://a.example/data": goodPayload}}
	service, _ := newTestService(fetcher)

	result, err := service.Load(context.Background(), []string{"https://a.example/data"}, models.Center{}, 0)
	require.NoError(t, err)
	firstDataset := service.Snapshot().Datasets[0].ID

	reloaded, err := service.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, result.SessionID, reloaded.SessionID)
	// Datasets are replaced wholesale, with fresh identities
	assert.NotEqual(t, firstDataset, service.Snapshot().Datasets[0].ID)
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string]string{"https://a.example/data": goodPayload}}
	service, _ := newTestService(fetcher)

	_, err := service.Load(context.Background(), []string{"https://a.example/data"}, models.Center{}, 0)
	require.NoError(t, err)
	before := service.Snapshot()

	fetcher.errs = map[string]error{"https://a.example/data": fmt.Errorf("source gone")}
	_, err = service.Reload(context.Background())
	assert.Error(t, err)

	// Previous snapshot still served
	assert.Same(t, before, service.Snapshot())
}

func TestReload_WithoutLoad(t *testing.T) {
	service, _ := newTestService(&stubFetcher{})

	_, err := service.Reload(context.Background())
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string]string{"https://a.example/data": goodPayload}}
	service, _ := newTestService(fetcher)

	// History before any load is empty, not an error
	history, err := service.History()
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.Error(t, service.AppendHistory("user", "hello"))

	_, err = service.Load(context.Background(), []string{"https://a.example/data"}, models.Center{}, 0)
	require.NoError(t, err)

	require.NoError(t, service.AppendHistory("user", "hello"))
	require.NoError(t, service.AppendHistory("assistant", "hi"))

	history, err = service.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
}

func TestLoad_ReplacingSessionDropsOldHistory(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string]string{"https://a.example/data": goodPayload}}
	service, storage := newTestService(fetcher)

	first, err := service.Load(context.Background(), []string{"https://a.example/data"}, models.Center{}, 0)
	require.NoError(t, err)
	require.NoError(t, service.AppendHistory("user", "hello"))

	second, err := service.Load(context.Background(), []string{"https://a.example/data"}, models.Center{}, 0)
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	// Old session and its messages are gone
	_, err = storage.GetSession(first.SessionID)
	assert.Error(t, err)
	assert.Empty(t, storage.messages[first.SessionID])
}
