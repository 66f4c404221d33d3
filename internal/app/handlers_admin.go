package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/export"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
)

func (a *App) HandleListUsers(c *gin.Context) {
	users, err := a.db.ListUsers(c.Request.Context())
	if err != nil {
		a.toSentry(c, "list_users", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	results := make([]UserResponse, 0, len(users))
	for _, u := range users {
		results = append(results, toUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (a *App) HandleToggleUserStatus(c *gin.Context) {
	user, err := a.db.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "toggle_user_status", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	updated, err := a.db.SetUserActive(c.Request.Context(), user.ID, !user.IsActive)
	if err != nil {
		a.toSentry(c, "toggle_user_status", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	changes := diffSnapshots(userSnapshot(user), userSnapshot(updated))
	a.recordAudit(c, KindUsers, "Status Toggled", updated.Username, changes)
	c.JSON(http.StatusOK, toUserResponse(updated))
}

func (a *App) HandleListAuditLogs(c *gin.Context) {
	page, pageSize := pageParams(c)
	entries, total, err := a.db.ListAuditEntries(c.Request.Context(), page, pageSize)
	if err != nil {
		a.toSentry(c, "list_audit_logs", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: total, Page: page, PageSize: pageSize, Results: entries})
}

func (a *App) HandleAlumniBulkAction(c *gin.Context) {
	var req BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	cfg, _ := a.adminConfig(KindAlumni)
	if !allowedBulkAction(cfg, req.Action) {
		writeError(c, ErrInvalidBulkAction, map[string]string{"action": "unknown_action"})
		return
	}
	if req.Status != "" && !models.ValidAlumnusStatus(req.Status) {
		writeError(c, ErrValidation, map[string]string{"status": "invalid_status"})
		return
	}
	// Status actions need an explicit selector. Without one the update
	// would touch every row.
	if req.Action != BulkDelete && len(req.IDs) == 0 && req.Status == "" {
		writeError(c, ErrValidation, map[string]string{"ids": "ids_or_status_required"})
		return
	}

	var (
		count int64
		err   error
	)

	switch req.Action {
	case BulkActivate:
		count, err = a.db.BulkSetAlumniStatus(c.Request.Context(), req.Status, models.StatusActive, req.IDs)
	case BulkDeactivate:
		count, err = a.db.BulkSetAlumniStatus(c.Request.Context(), req.Status, models.StatusInactive, req.IDs)
	case BulkMarkLostContact:
		count, err = a.db.BulkSetAlumniStatus(c.Request.Context(), req.Status, models.StatusLostContact, req.IDs)
	case BulkDelete:
		count, err = a.db.BulkDeleteAlumni(c.Request.Context(), req.IDs)
	default:
		// The registry check above already rejected unknown actions.
		writeError(c, ErrInvalidBulkAction, nil)
		return
	}
	if err != nil {
		a.toSentry(c, "alumni_bulk_action", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	// Exactly one audit entry per bulk action.
	a.recordAudit(c, KindAlumni, "Bulk Action",
		fmt.Sprintf("%s (%d records)", req.Action, count), nil)
	c.JSON(http.StatusOK, BulkActionResponse{Action: req.Action, Updated: count})
}

func (a *App) HandlePartnerBulkAction(c *gin.Context) {
	var req BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	cfg, _ := a.adminConfig(KindPartners)
	if !allowedBulkAction(cfg, req.Action) {
		writeError(c, ErrInvalidBulkAction, map[string]string{"action": "unknown_action"})
		return
	}

	var (
		count int64
		err   error
	)

	switch req.Action {
	case BulkSetGold:
		count, err = a.db.BulkSetPartnerLevel(c.Request.Context(), models.LevelGold, req.IDs)
	case BulkSetSilver:
		count, err = a.db.BulkSetPartnerLevel(c.Request.Context(), models.LevelSilver, req.IDs)
	case BulkSetBronze:
		count, err = a.db.BulkSetPartnerLevel(c.Request.Context(), models.LevelBronze, req.IDs)
	case BulkSetProspective:
		count, err = a.db.BulkSetPartnerLevel(c.Request.Context(), models.LevelProspective, req.IDs)
	case BulkDelete:
		count, err = a.db.BulkDeletePartners(c.Request.Context(), req.IDs)
	default:
		writeError(c, ErrInvalidBulkAction, nil)
		return
	}
	if err != nil {
		a.toSentry(c, "partner_bulk_action", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindPartners, "Bulk Action",
		fmt.Sprintf("%s (%d records)", req.Action, count), nil)
	c.JSON(http.StatusOK, BulkActionResponse{Action: req.Action, Updated: count})
}

func (a *App) HandleExportData(c *gin.Context) {
	kind := EntityKind(c.Param("data_type"))
	cfg, ok := a.adminConfig(kind)
	if !ok || !cfg.Exportable {
		writeError(c, ErrInvalidExportType, map[string]string{"data_type": "unknown_export_type"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition",
		`attachment; filename="`+export.Filename(string(kind), time.Now())+`"`)

	var err error
	switch kind {
	case KindAlumni:
		var rows []models.Alumnus
		if rows, err = a.allAlumni(c); err == nil {
			err = export.WriteAlumniCSV(c.Writer, rows)
		}
	case KindPartners:
		var rows []models.Partner
		if rows, err = a.allPartners(c); err == nil {
			err = export.WritePartnersCSV(c.Writer, rows)
		}
	case KindEngagements:
		var rows []models.Engagement
		if rows, err = a.allEngagements(c); err == nil {
			err = export.WriteEngagementsCSV(c.Writer, rows)
		}
	default:
		writeError(c, ErrInvalidExportType, nil)
		return
	}
	if err != nil {
		a.toSentry(c, "export_data", "export", sentry.LevelError, err)
		writeError(c, ErrExportData, nil)
		return
	}
}

// The listing queries cap a page at 100 rows, so exports walk the pages.

func (a *App) allAlumni(c *gin.Context) ([]models.Alumnus, error) {
	var all []models.Alumnus
	for page := 1; ; page++ {
		batch, total, err := a.db.ListAlumni(c.Request.Context(),
			models.AlumniFilter{Page: page, PageSize: 100})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

func (a *App) allPartners(c *gin.Context) ([]models.Partner, error) {
	var all []models.Partner
	for page := 1; ; page++ {
		batch, total, err := a.db.ListPartners(c.Request.Context(),
			models.PartnerFilter{Page: page, PageSize: 100})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

func (a *App) allEngagements(c *gin.Context) ([]models.Engagement, error) {
	var all []models.Engagement
	for page := 1; ; page++ {
		batch, total, err := a.db.ListEngagements(c.Request.Context(),
			models.EngagementFilter{Page: page, PageSize: 100})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(all) >= total {
			return all, nil
		}
	}
}
