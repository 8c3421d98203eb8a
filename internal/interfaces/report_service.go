package interfaces

// ReportService renders dataset profiles into downloadable documents.
type ReportService interface {
	// ProfileReport renders the current snapshot's profiles as a PDF.
	ProfileReport(snapshot *SessionSnapshot) ([]byte, error)
}
