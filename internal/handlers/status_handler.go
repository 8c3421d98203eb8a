package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/common"
	"github.com/ternarybob/geoscope/internal/interfaces"
)

// StatusHandler serves the ops endpoints.
type StatusHandler struct {
	sessionService interfaces.SessionService
	logger         arbor.ILogger
	startedAt      time.Time
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(sessionService interfaces.SessionService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		sessionService: sessionService,
		logger:         logger,
		startedAt:      time.Now(),
	}
}

// HealthHandler handles GET /api/health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	loaded := h.sessionService.Snapshot() != nil

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"session_loaded": loaded,
	})
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.Version,
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}
