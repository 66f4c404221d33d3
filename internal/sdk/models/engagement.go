package models

import "time"

// Engagement types.
const (
	EngagementNetworking    = "networking_event"
	EngagementMentorship    = "mentorship"
	EngagementInterview     = "interview"
	EngagementCollaboration = "collaboration"
	EngagementDonation      = "donation"
	EngagementOther         = "other"
)

// ValidEngagementType reports whether t is one of the known types.
func ValidEngagementType(t string) bool {
	switch t {
	case EngagementNetworking, EngagementMentorship, EngagementInterview,
		EngagementCollaboration, EngagementDonation, EngagementOther:
		return true
	}
	return false
}

// Engagement records an interaction between an alumnus and a partner.
type Engagement struct {
	ID             string    `json:"id"`
	AlumnusID      string    `json:"alumni_id"`
	PartnerID      string    `json:"partner_id"`
	AlumnusName    string    `json:"alumni_name,omitempty"`
	PartnerName    string    `json:"partner_name,omitempty"`
	EngagementType string    `json:"engagement_type"`
	Description    string    `json:"description"`
	EngagementDate time.Time `json:"engagement_date"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type NewEngagement struct {
	AlumnusID      string
	PartnerID      string
	EngagementType string
	Description    string
	EngagementDate time.Time
	Notes          string
}

// EngagementFilter narrows and pages an engagement listing.
type EngagementFilter struct {
	AlumnusID      string
	PartnerID      string
	EngagementType string
	Search         string
	Page           int
	PageSize       int
}

// PartnerEngagementCount pairs a partner with its engagement tally.
type PartnerEngagementCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// EngagementStats is the aggregate view behind the analytics report.
type EngagementStats struct {
	Total       int                      `json:"total_engagements"`
	ByType      map[string]int           `json:"by_type"`
	TopPartners []PartnerEngagementCount `json:"top_partners"`
}
