package models

import "time"

// Alumnus statuses.
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusLostContact = "lost_contact"
)

// ValidAlumnusStatus reports whether s is one of the known statuses.
func ValidAlumnusStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusLostContact:
		return true
	}
	return false
}

// Alumnus is the domain profile, optionally linked one-to-one to a User.
type Alumnus struct {
	ID             string     `json:"id"`
	UserID         *string    `json:"user_id,omitempty"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	Degree         string     `json:"degree"`
	FieldOfStudy   string     `json:"field_of_study"`
	GraduationYear int        `json:"graduation_year"`
	CurrentCompany string     `json:"current_company"`
	JobTitle       string     `json:"job_title"`
	Industry       string     `json:"industry"`
	Status         string     `json:"status"`
	LinkedinURL    *string    `json:"linkedin_url,omitempty"`
	Bio            string     `json:"bio"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastEngagement *time.Time `json:"last_engagement,omitempty"`
}

type NewAlumnus struct {
	UserID         *string
	FirstName      string
	LastName       string
	Email          string
	Phone          *string
	Degree         string
	FieldOfStudy   string
	GraduationYear int
	CurrentCompany string
	JobTitle       string
	Industry       string
	Status         string
	LinkedinURL    *string
	Bio            string
}

// AlumnusPatch carries a partial update. Nil fields are left untouched.
type AlumnusPatch struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Degree         *string `json:"degree"`
	FieldOfStudy   *string `json:"field_of_study"`
	GraduationYear *int    `json:"graduation_year"`
	CurrentCompany *string `json:"current_company"`
	JobTitle       *string `json:"job_title"`
	Industry       *string `json:"industry"`
	Status         *string `json:"status"`
	LinkedinURL    *string `json:"linkedin_url"`
	Bio            *string `json:"bio"`
}

// AlumniFilter narrows and pages an alumni listing.
type AlumniFilter struct {
	Status            string
	Degree            string
	GraduationYear    int
	GraduationYearMin int
	GraduationYearMax int
	Industry          string
	Company           string
	Search            string
	Page              int
	PageSize          int
}

// AlumniStats is the aggregate view used by the statistics endpoint
// and the alumni summary report.
type AlumniStats struct {
	Total      int            `json:"total_alumni"`
	Active     int            `json:"active_alumni"`
	ByDegree   map[string]int `json:"by_degree"`
	ByYear     map[string]int `json:"by_graduation_year"`
	ByIndustry map[string]int `json:"by_industry"`
}
