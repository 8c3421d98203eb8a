package server

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Datasets
	mux.HandleFunc("/api/datasets/load", s.app.DatasetHandler.LoadHandler)
	mux.HandleFunc("/api/datasets/reload", s.app.DatasetHandler.ReloadHandler)
	mux.HandleFunc("/api/datasets", s.app.DatasetHandler.ListHandler)

	// API routes - Chat
	mux.HandleFunc("/api/chat", s.app.ChatHandler.ChatHandler)
	mux.HandleFunc("/api/chat/health", s.app.ChatHandler.HealthHandler)

	// API routes - Map and report
	mux.HandleFunc("/api/map", s.app.MapHandler.ViewHandler)
	mux.HandleFunc("/api/report", s.app.ReportHandler.ProfileReportHandler)

	// API routes - Ops
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	return mux
}
