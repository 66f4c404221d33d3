package models

import (
	"encoding/json"
	"time"
)

// ReportType is the closed set of report kinds. Dispatch on it is always an
// exhaustive switch; an unknown value is a validation error, never a no-op.
type ReportType string

const (
	ReportAlumniSummary       ReportType = "alumni_summary"
	ReportPartnerSummary      ReportType = "partner_summary"
	ReportEngagementAnalytics ReportType = "engagement_analytics"
)

// ValidReportType reports whether t is one of the known report types.
func ValidReportType(t ReportType) bool {
	switch t {
	case ReportAlumniSummary, ReportPartnerSummary, ReportEngagementAnalytics:
		return true
	}
	return false
}

// Report stores a generated analytics snapshot. Data is the raw aggregate
// payload, stored as JSON.
type Report struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	ReportType  ReportType      `json:"report_type"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	GeneratedBy *string         `json:"generated_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type NewReport struct {
	Title       string
	ReportType  ReportType
	Description string
	Data        json.RawMessage
	GeneratedBy *string
}

// ReportFilter narrows and pages a report listing.
type ReportFilter struct {
	ReportType string
	Page       int
	PageSize   int
}
