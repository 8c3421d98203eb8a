package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/geoscope/internal/interfaces"
	"github.com/ternarybob/geoscope/internal/models"
)

// Service renders dataset profiles as downloadable PDF reports.
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a new report service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// ProfileReport renders one page per dataset profile.
func (s *Service) ProfileReport(snapshot *interfaces.SessionSnapshot) ([]byte, error) {
	if snapshot == nil || len(snapshot.Profiles) == 0 {
		return nil, fmt.Errorf("no datasets loaded")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Dataset Profile Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Session: %s", snapshot.Session.ID), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for i, profile := range snapshot.Profiles {
		if i > 0 {
			pdf.AddPage()
		}
		s.renderProfile(pdf, i+1, profile)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().
		Int("pdf_size", buf.Len()).
		Int("profile_count", len(snapshot.Profiles)).
		Msg("Profile report generated")

	return buf.Bytes(), nil
}

func (s *Service) renderProfile(pdf *fpdf.Fpdf, index int, profile *models.DatasetProfile) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Dataset %d", index), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, fmt.Sprintf("Source: %s", profile.SourceURL), "", "L", false)
	pdf.CellFormat(0, 5, fmt.Sprintf("Features: %d", profile.FeatureCount), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Profiled: %s", profile.ProfiledAt.Format("2006-01-02 15:04:05 MST")), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(profile.GeometryCounts) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Geometry types", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)

		types := make([]string, 0, len(profile.GeometryCounts))
		for t := range profile.GeometryCounts {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			pdf.CellFormat(0, 5, fmt.Sprintf("%s: %d", t, profile.GeometryCounts[t]), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if len(profile.Attributes) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Attributes", "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(70, 6, "Name", "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 6, "Type", "1", 0, "L", true, 0, "")
		pdf.CellFormat(90, 6, "Sample", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, attr := range profile.Attributes {
			sample := fmt.Sprintf("%v", attr.Sample)
			if len(sample) > 60 {
				sample = sample[:57] + "..."
			}
			pdf.CellFormat(70, 6, attr.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, string(attr.Type), "1", 0, "L", false, 0, "")
			pdf.CellFormat(90, 6, sample, "1", 1, "L", false, 0, "")
		}
	}
}
