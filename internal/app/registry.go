package app

import "github.com/jvtaylar/alumni-partner-db/internal/services/export"

// EntityKind names a tracked entity class in the admin surface.
type EntityKind string

const (
	KindAlumni      EntityKind = "alumni"
	KindPartners    EntityKind = "partners"
	KindEngagements EntityKind = "engagements"
	KindReports     EntityKind = "reports"
	KindUsers       EntityKind = "users"
)

// Bulk actions on alumni.
const (
	BulkActivate        = "activate"
	BulkDeactivate      = "deactivate"
	BulkMarkLostContact = "mark_lost_contact"
	BulkDelete          = "delete"
)

// Bulk actions on partners.
const (
	BulkSetGold        = "set_gold"
	BulkSetSilver      = "set_silver"
	BulkSetBronze      = "set_bronze"
	BulkSetProspective = "set_prospective"
)

// AdminConfig describes how the admin surface treats one entity kind.
type AdminConfig struct {
	DisplayName string
	CSVColumns  []string
	BulkActions []string
	Exportable  bool
}

// buildAdminRegistry assembles the static entity-kind registry. It is built
// once in NewApp and never mutated afterwards.
func buildAdminRegistry() map[EntityKind]AdminConfig {
	return map[EntityKind]AdminConfig{
		KindAlumni: {
			DisplayName: "Alumni",
			CSVColumns:  export.AlumniColumns,
			BulkActions: []string{BulkActivate, BulkDeactivate, BulkMarkLostContact, BulkDelete},
			Exportable:  true,
		},
		KindPartners: {
			DisplayName: "Partner",
			CSVColumns:  export.PartnerColumns,
			BulkActions: []string{BulkSetGold, BulkSetSilver, BulkSetBronze, BulkSetProspective, BulkDelete},
			Exportable:  true,
		},
		KindEngagements: {
			DisplayName: "Engagement",
			CSVColumns:  export.EngagementColumns,
			Exportable:  true,
		},
		KindReports: {
			DisplayName: "Report",
		},
		KindUsers: {
			DisplayName: "User",
		},
	}
}

func (a *App) adminConfig(kind EntityKind) (AdminConfig, bool) {
	cfg, ok := a.registry[kind]
	return cfg, ok
}

func allowedBulkAction(cfg AdminConfig, action string) bool {
	for _, allowed := range cfg.BulkActions {
		if allowed == action {
			return true
		}
	}
	return false
}
