package app

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/middleware"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
)

// fieldChange records one changed field for an audit diff.
type fieldChange struct {
	Field string
	Old   string
	New   string
}

// recordAudit appends an audit entry for an admin-mediated mutation. The
// write is best-effort: a failure is reported and logged but never alters
// the outcome of the mutation it describes.
func (a *App) recordAudit(c *gin.Context, kind EntityKind, action, label string, changes []fieldChange) {
	cfg, ok := a.adminConfig(kind)
	if !ok {
		return
	}

	var actorName string
	var actorID *string
	if actor, ok := middleware.CurrentUser(c); ok {
		actorName = actor.Username
		id := actor.ID
		actorID = &id
	}

	description := "by " + actorName
	if len(changes) > 0 {
		description += ". Changed: " + formatChanges(changes)
	}

	entry := models.NewAuditEntry{
		Title:       fmt.Sprintf("%s %s: %s", cfg.DisplayName, action, label),
		Category:    string(kind),
		Description: description,
		ActorID:     actorID,
	}

	if _, err := a.db.CreateAuditEntry(c.Request.Context(), entry); err != nil {
		a.toSentry(c, "audit", "db", sentry.LevelWarning, err)
		slog.Warn("audit entry not recorded", "title", entry.Title, "error", err)
	}
}

// formatChanges renders changed fields as "field: 'old' -> 'new'" pairs.
func formatChanges(changes []fieldChange) string {
	parts := make([]string, 0, len(changes))
	for _, ch := range changes {
		parts = append(parts, fmt.Sprintf("%s: '%s' -> '%s'", ch.Field, ch.Old, ch.New))
	}
	return strings.Join(parts, "; ")
}

// diffSnapshots returns only the fields whose values differ, sorted by
// field name.
func diffSnapshots(before, after map[string]string) []fieldChange {
	var changes []fieldChange
	for field, oldVal := range before {
		if newVal, ok := after[field]; ok && newVal != oldVal {
			changes = append(changes, fieldChange{Field: field, Old: oldVal, New: newVal})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

func alumnusSnapshot(a models.Alumnus) map[string]string {
	return map[string]string{
		"first_name":      a.FirstName,
		"last_name":       a.LastName,
		"email":           a.Email,
		"phone":           strVal(a.Phone),
		"degree":          a.Degree,
		"field_of_study":  a.FieldOfStudy,
		"graduation_year": strconv.Itoa(a.GraduationYear),
		"current_company": a.CurrentCompany,
		"job_title":       a.JobTitle,
		"industry":        a.Industry,
		"status":          a.Status,
		"linkedin_url":    strVal(a.LinkedinURL),
		"bio":             a.Bio,
	}
}

func partnerSnapshot(p models.Partner) map[string]string {
	snap := map[string]string{
		"name":                  p.Name,
		"partner_type":          p.PartnerType,
		"description":           p.Description,
		"website":               strVal(p.Website),
		"email":                 p.Email,
		"phone":                 p.Phone,
		"address":               p.Address,
		"city":                  p.City,
		"state":                 p.State,
		"country":               p.Country,
		"primary_contact_name":  p.PrimaryContactName,
		"primary_contact_email": p.PrimaryContactEmail,
		"primary_contact_phone": p.PrimaryContactPhone,
		"engagement_level":      p.EngagementLevel,
		"industry":              p.Industry,
		"notes":                 p.Notes,
	}
	if p.EmployeeCount != nil {
		snap["employee_count"] = strconv.Itoa(*p.EmployeeCount)
	} else {
		snap["employee_count"] = ""
	}
	return snap
}

func userSnapshot(u models.User) map[string]string {
	return map[string]string{
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"is_active":  strconv.FormatBool(u.IsActive),
	}
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
