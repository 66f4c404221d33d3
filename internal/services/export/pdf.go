package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

// RenderReportPDF renders a stored report as a single-column PDF document:
// a bold title, a generation timestamp, then one line per data point.
func RenderReportPDF(rep models.Report) ([]byte, error) {
	lines, err := reportLines(rep)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(true, 72)
	pdf.SetMargins(72, 72, 72)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 20, rep.Title, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, fmt.Sprintf("Generated on: %s",
		rep.CreatedAt.Format("January 2, 2006 at 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	for _, line := range lines {
		pdf.CellFormat(0, 14, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// reportLines converts a report's stored data into text lines for the PDF
// body. The switch over report types is exhaustive.
func reportLines(rep models.Report) ([]string, error) {
	switch rep.ReportType {
	case models.ReportAlumniSummary:
		var stats models.AlumniStats
		if err := json.Unmarshal(rep.Data, &stats); err != nil {
			return nil, fmt.Errorf("decoding alumni summary data: %w", err)
		}
		lines := []string{
			fmt.Sprintf("Total alumni: %d", stats.Total),
			fmt.Sprintf("Active alumni: %d", stats.Active),
			fmt.Sprintf("Inactive alumni: %d", stats.Total-stats.Active),
			"",
			"By degree:",
		}
		lines = append(lines, countLines(stats.ByDegree)...)
		return lines, nil

	case models.ReportPartnerSummary:
		var stats models.PartnerStats
		if err := json.Unmarshal(rep.Data, &stats); err != nil {
			return nil, fmt.Errorf("decoding partner summary data: %w", err)
		}
		lines := []string{
			fmt.Sprintf("Total partners: %d", stats.Total),
			"",
			"By type:",
		}
		lines = append(lines, countLines(stats.ByType)...)
		lines = append(lines, "", "By engagement level:")
		lines = append(lines, countLines(stats.ByLevel)...)
		return lines, nil

	case models.ReportEngagementAnalytics:
		var stats models.EngagementStats
		if err := json.Unmarshal(rep.Data, &stats); err != nil {
			return nil, fmt.Errorf("decoding engagement analytics data: %w", err)
		}
		lines := []string{
			fmt.Sprintf("Total engagements: %d", stats.Total),
			"",
			"By type:",
		}
		lines = append(lines, countLines(stats.ByType)...)
		lines = append(lines, "", "Top partners:")
		for _, p := range stats.TopPartners {
			lines = append(lines, fmt.Sprintf("- %s: %d", p.Name, p.Count))
		}
		return lines, nil
	}

	return nil, fmt.Errorf("unknown report type: %q", rep.ReportType)
}

// countLines renders a counts map as sorted "- key: n" lines.
func countLines(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %d", k, counts[k]))
	}
	return lines
}

// PDFFilename returns the attachment filename for a rendered report.
func PDFFilename(rep models.Report, now time.Time) string {
	return fmt.Sprintf("%s_%s.pdf", rep.ReportType, now.Format("20060102"))
}
