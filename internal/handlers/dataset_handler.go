package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/models"
)

// DatasetHandler exposes dataset load and listing endpoints.
type DatasetHandler struct {
	sessionService interfaces.SessionService
	logger         arbor.ILogger
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(sessionService interfaces.SessionService, logger arbor.ILogger) *DatasetHandler {
	return &DatasetHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// LoadRequest is the body of POST /api/datasets/load.
type LoadRequest struct {
	URLs   []string `json:"urls"`
	Center string   `json:"center"`
	Zoom   int      `json:"zoom"`
}

// LoadHandler handles POST /api/datasets/load. Per-source failures are
// reported in the response body; the request fails outright only when
// nothing loads or the map center cannot be parsed.
func (h *DatasetHandler) LoadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	center, err := models.ParseCenter(req.Center)
	if err != nil {
		var parseErr *models.CoordinateParseError
		if errors.As(err, &parseErr) {
			WriteError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid center: "+err.Error())
		return
	}

	result, err := h.sessionService.Load(r.Context(), req.URLs, center, req.Zoom)
	if err != nil {
		h.logger.Error().Err(err).Msg("Dataset load failed")
		if result != nil {
			// All sources failed; return the per-source detail.
			WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
				"status":  "error",
				"error":   err.Error(),
				"sources": result.Sources,
			})
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// ListHandler handles GET /api/datasets, returning the current session's
// dataset profiles.
func (h *DatasetHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot := h.sessionService.Snapshot()
	if snapshot == nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"session_id": "",
			"profiles":   []*models.DatasetProfile{},
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": snapshot.Session.ID,
		"profiles":   snapshot.Profiles,
	})
}

// ReloadHandler handles POST /api/datasets/reload, re-fetching the
// current session's sources.
func (h *DatasetHandler) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	result, err := h.sessionService.Reload(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Dataset reload failed")
		status := http.StatusBadGateway
		if result == nil {
			status = http.StatusNotFound
		}
		WriteError(w, status, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
