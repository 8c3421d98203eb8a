package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/models"
)

// stubSession implements interfaces.SessionService with canned results.
type stubSession struct {
	snapshot   *interfaces.SessionSnapshot
	loadResult *interfaces.LoadResult
	loadErr    error
	lastURLs   []string
	lastCenter models.Center
	lastZoom   int
}

func (s *stubSession) Load(ctx context.Context, urls []string, center models.Center, zoom int) (*interfaces.LoadResult, error) {
	s.lastURLs = urls
	s.lastCenter = center
	s.lastZoom = zoom
	return s.loadResult, s.loadErr
}

func (s *stubSession) Reload(ctx context.Context) (*interfaces.LoadResult, error) {
	return s.loadResult, s.loadErr
}

func (s *stubSession) Snapshot() *interfaces.SessionSnapshot    { return s.snapshot }
func (s *stubSession) AppendHistory(role, content string) error { return nil }
func (s *stubSession) History() ([]models.ChatMessage, error)   { return nil, nil }
func (s *stubSession) Close() error                             { return nil }

func loadedSnapshot() *interfaces.SessionSnapshot {
	return &interfaces.SessionSnapshot{
		Session: &models.Session{
			ID:     "test-session",
			Center: models.Center{Latitude: -33.87, Longitude: 151.21},
			Zoom:   11,
		},
		Datasets: []*models.Dataset{
			{
				ID:        "ds-1",
				SourceURL: "https://example.com/parks.geojson",
				Collection: &models.FeatureCollection{
					Type:     "FeatureCollection",
					Features: []*models.Feature{},
				},
			},
		},
		Profiles: []*models.DatasetProfile{
			{SourceURL: "https://example.com/parks.geojson", FeatureCount: 3},
		},
	}
}

func TestLoadHandler(t *testing.T) {
	session := &stubSession{
		loadResult: &interfaces.LoadResult{
			SessionID: "test-session",
			Sources:   []interfaces.SourceStatus{{URL: "https://example.com/parks.geojson", Loaded: true}},
		},
	}
	handler := NewDatasetHandler(session, arbor.NewLogger())

	body := `{"urls": ["https://example.com/parks.geojson"], "center": "-33.87, 151.21", "zoom": 11}`
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/load", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.LoadHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"https://example.com/parks.geojson"}, session.lastURLs)
	assert.InDelta(t, -33.87, session.lastCenter.Latitude, 0.001)
	assert.Equal(t, 11, session.lastZoom)

	var resp interfaces.LoadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test-session", resp.SessionID)
}

func TestLoadHandler_InvalidCenter(t *testing.T) {
	handler := NewDatasetHandler(&stubSession{}, arbor.NewLogger())

	tests := []struct {
		name   string
		center string
	}{
		{"not a coordinate", "somewhere in Sydney"},
		{"latitude out of range", "191.0, 151.21"},
		{"missing longitude", "-33.87"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := fmt.Sprintf(`{"urls": ["https://example.com/a"], "center": %q}`, tt.center)
			req := httptest.NewRequest(http.MethodPost, "/api/datasets/load", strings.NewReader(body))
			rec := httptest.NewRecorder()

			handler.LoadHandler(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoadHandler_InvalidBody(t *testing.T) {
	handler := NewDatasetHandler(&stubSession{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/load", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.LoadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadHandler_AllSourcesFail(t *testing.T) {
	session := &stubSession{
		loadResult: &interfaces.LoadResult{
			SessionID: "test-session",
			Sources:   []interfaces.SourceStatus{{URL: "https://example.com/down", Error: "503"}},
		},
		loadErr: fmt.Errorf("all 1 sources failed to load"),
	}
	handler := NewDatasetHandler(session, arbor.NewLogger())

	body := `{"urls": ["https://example.com/down"], "center": "0, 0"}`
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/load", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.LoadHandler(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "sources")
}

func TestLoadHandler_MethodNotAllowed(t *testing.T) {
	handler := NewDatasetHandler(&stubSession{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/load", nil)
	rec := httptest.NewRecorder()

	handler.LoadHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListHandler(t *testing.T) {
	handler := NewDatasetHandler(&stubSession{snapshot: loadedSnapshot()}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	rec := httptest.NewRecorder()

	handler.ListHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SessionID string                   `json:"session_id"`
		Profiles  []*models.DatasetProfile `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test-session", resp.SessionID)
	require.Len(t, resp.Profiles, 1)
	assert.Equal(t, 3, resp.Profiles[0].FeatureCount)
}

func TestListHandler_NoSession(t *testing.T) {
	handler := NewDatasetHandler(&stubSession{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	rec := httptest.NewRecorder()

	handler.ListHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profiles":[]`)
}

func TestReloadHandler_NoSession(t *testing.T) {
	handler := NewDatasetHandler(&stubSession{loadErr: fmt.Errorf("no session loaded")}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/reload", nil)
	rec := httptest.NewRecorder()

	handler.ReloadHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReloadHandler(t *testing.T) {
	session := &stubSession{
		loadResult: &interfaces.LoadResult{SessionID: "test-session"},
	}
	handler := NewDatasetHandler(session, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/reload", nil)
	rec := httptest.NewRecorder()

	handler.ReloadHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test-session")
}
