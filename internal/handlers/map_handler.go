package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/interfaces"
)

// MapHandler serves the current map view.
type MapHandler struct {
	mapService     interfaces.MapService
	sessionService interfaces.SessionService
	logger         arbor.ILogger
}

// NewMapHandler creates a new map handler
func NewMapHandler(mapService interfaces.MapService, sessionService interfaces.SessionService, logger arbor.ILogger) *MapHandler {
	return &MapHandler{
		mapService:     mapService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// ViewHandler handles GET /api/map. Returns 404 until a load has
// succeeded; a partial map is never served.
func (h *MapHandler) ViewHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot := h.sessionService.Snapshot()
	if snapshot == nil {
		WriteError(w, http.StatusNotFound, "No datasets loaded")
		return
	}

	view, err := h.mapService.BuildView(snapshot)
	if err != nil {
		h.logger.Error().Err(err).Msg("Map view build failed")
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, view)
}
