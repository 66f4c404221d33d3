package models

import "time"

// Partner types.
const (
	PartnerCorporate   = "corporate"
	PartnerNonprofit   = "nonprofit"
	PartnerGovernment  = "government"
	PartnerEducational = "educational"
	PartnerOther       = "other"
)

// Partner engagement levels.
const (
	LevelGold        = "gold"
	LevelSilver      = "silver"
	LevelBronze      = "bronze"
	LevelProspective = "prospective"
)

// ValidPartnerType reports whether t is one of the known partner types.
func ValidPartnerType(t string) bool {
	switch t {
	case PartnerCorporate, PartnerNonprofit, PartnerGovernment, PartnerEducational, PartnerOther:
		return true
	}
	return false
}

// ValidEngagementLevel reports whether l is one of the known levels.
func ValidEngagementLevel(l string) bool {
	switch l {
	case LevelGold, LevelSilver, LevelBronze, LevelProspective:
		return true
	}
	return false
}

// Partner is an industry or institutional partner organization.
type Partner struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	PartnerType           string     `json:"partner_type"`
	Description           string     `json:"description"`
	Website               *string    `json:"website,omitempty"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone"`
	Address               string     `json:"address"`
	City                  string     `json:"city"`
	State                 string     `json:"state"`
	Country               string     `json:"country"`
	PrimaryContactName    string     `json:"primary_contact_name"`
	PrimaryContactEmail   string     `json:"primary_contact_email"`
	PrimaryContactPhone   string     `json:"primary_contact_phone"`
	EngagementLevel       string     `json:"engagement_level"`
	Industry              string     `json:"industry"`
	EmployeeCount         *int       `json:"employee_count,omitempty"`
	PartnershipStartDate  *time.Time `json:"partnership_start_date,omitempty"`
	Notes                 string     `json:"notes"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	LastEngagement        *time.Time `json:"last_engagement,omitempty"`
	EngagementCount       int        `json:"engagement_count,omitempty"`
}

type NewPartner struct {
	Name                 string
	PartnerType          string
	Description          string
	Website              *string
	Email                string
	Phone                string
	Address              string
	City                 string
	State                string
	Country              string
	PrimaryContactName   string
	PrimaryContactEmail  string
	PrimaryContactPhone  string
	EngagementLevel      string
	Industry             string
	EmployeeCount        *int
	PartnershipStartDate *time.Time
	Notes                string
}

// PartnerPatch carries a partial update. Nil fields are left untouched.
type PartnerPatch struct {
	Name                 *string    `json:"name"`
	PartnerType          *string    `json:"partner_type"`
	Description          *string    `json:"description"`
	Website              *string    `json:"website"`
	Email                *string    `json:"email"`
	Phone                *string    `json:"phone"`
	Address              *string    `json:"address"`
	City                 *string    `json:"city"`
	State                *string    `json:"state"`
	Country              *string    `json:"country"`
	PrimaryContactName   *string    `json:"primary_contact_name"`
	PrimaryContactEmail  *string    `json:"primary_contact_email"`
	PrimaryContactPhone  *string    `json:"primary_contact_phone"`
	EngagementLevel      *string    `json:"engagement_level"`
	Industry             *string    `json:"industry"`
	EmployeeCount        *int       `json:"employee_count"`
	PartnershipStartDate *time.Time `json:"partnership_start_date"`
	Notes                *string    `json:"notes"`
}

// PartnerFilter narrows and pages a partner listing.
type PartnerFilter struct {
	PartnerType     string
	EngagementLevel string
	Industry        string
	Search          string
	Page            int
	PageSize        int
}

// PartnerStats is the aggregate view used by the statistics endpoint
// and the partner summary report.
type PartnerStats struct {
	Total      int            `json:"total_partners"`
	ByType     map[string]int `json:"by_type"`
	ByLevel    map[string]int `json:"by_engagement_level"`
	ByIndustry map[string]int `json:"by_industry"`
}
