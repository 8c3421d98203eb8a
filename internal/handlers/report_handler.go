package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/interfaces"
)

// ReportHandler serves the dataset profile report.
type ReportHandler struct {
	reportService  interfaces.ReportService
	sessionService interfaces.SessionService
	logger         arbor.ILogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService interfaces.ReportService, sessionService interfaces.SessionService, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// ProfileReportHandler handles GET /api/report, returning the current
// snapshot's profiles as a PDF download.
func (h *ReportHandler) ProfileReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot := h.sessionService.Snapshot()
	if snapshot == nil {
		WriteError(w, http.StatusNotFound, "No datasets loaded")
		return
	}

	pdf, err := h.reportService.ProfileReport(snapshot)
	if err != nil {
		h.logger.Error().Err(err).Msg("Report generation failed")
		WriteError(w, http.StatusInternalServerError, "Failed to generate report: "+err.Error())
		return
	}

	filename := fmt.Sprintf("geoscope-profiles-%s.pdf", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
