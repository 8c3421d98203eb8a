package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/services/maps"
)

func TestViewHandler(t *testing.T) {
	logger := arbor.NewLogger()
	handler := NewMapHandler(maps.NewService(logger), &stubSession{snapshot: loadedSnapshot()}, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/map", nil)
	rec := httptest.NewRecorder()

	handler.ViewHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var view interfaces.MapView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.InDelta(t, -33.87, view.Center.Latitude, 0.001)
	assert.Equal(t, 11, view.Zoom)
	require.Len(t, view.Layers, 1)
	assert.Equal(t, "parks", view.Layers[0].Name)
}

func TestViewHandler_NoSession(t *testing.T) {
	logger := arbor.NewLogger()
	handler := NewMapHandler(maps.NewService(logger), &stubSession{}, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/map", nil)
	rec := httptest.NewRecorder()

	handler.ViewHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingMapService struct{}

func (f *failingMapService) BuildView(snapshot *interfaces.SessionSnapshot) (*interfaces.MapView, error) {
	return nil, fmt.Errorf("no datasets loaded")
}

func TestViewHandler_BuildFailure(t *testing.T) {
	handler := NewMapHandler(&failingMapService{}, &stubSession{snapshot: loadedSnapshot()}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/map", nil)
	rec := httptest.NewRecorder()

	handler.ViewHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
