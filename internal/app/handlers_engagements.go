package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
)

const recentEngagementsLimit = 10

// EngagementRequest is the create body. A missing engagement_date defaults
// to now.
type EngagementRequest struct {
	AlumnusID      string     `json:"alumni_id"`
	PartnerID      string     `json:"partner_id"`
	EngagementType string     `json:"engagement_type"`
	Description    string     `json:"description"`
	EngagementDate *time.Time `json:"engagement_date"`
	Notes          string     `json:"notes"`
}

func (a *App) HandleListEngagements(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := models.EngagementFilter{
		AlumnusID:      c.Query("alumni_id"),
		PartnerID:      c.Query("partner_id"),
		EngagementType: c.Query("engagement_type"),
		Search:         c.Query("search"),
		Page:           page,
		PageSize:       pageSize,
	}

	list, total, err := a.db.ListEngagements(c.Request.Context(), filter)
	if err != nil {
		a.toSentry(c, "list_engagements", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: total, Page: page, PageSize: pageSize, Results: list})
}

func (a *App) HandleGetEngagement(c *gin.Context) {
	engagement, err := a.db.GetEngagementByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "get_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, engagement)
}

func (a *App) HandleCreateEngagement(c *gin.Context) {
	var req EngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	when := time.Now()
	if req.EngagementDate != nil {
		when = *req.EngagementDate
	}

	ne := models.NewEngagement{
		AlumnusID:      req.AlumnusID,
		PartnerID:      req.PartnerID,
		EngagementType: req.EngagementType,
		Description:    req.Description,
		EngagementDate: when,
		Notes:          req.Notes,
	}

	if validationErrors := validateNewEngagement(ne); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	engagement, err := a.db.CreateEngagement(c.Request.Context(), ne)
	if err != nil {
		if errors.Is(err, sqldb.ErrForeignKeyViolation) {
			writeError(c, ErrValidation, map[string]string{
				"alumni_id": "referenced_record_not_found",
			})
			return
		}
		a.toSentry(c, "create_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindEngagements, "Created",
		engagement.AlumnusName+" / "+engagement.PartnerName, nil)
	c.JSON(http.StatusCreated, engagement)
}

func (a *App) HandleDeleteEngagement(c *gin.Context) {
	engagement, err := a.db.GetEngagementByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "delete_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	if err := a.db.DeleteEngagement(c.Request.Context(), engagement.ID); err != nil {
		a.toSentry(c, "delete_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindEngagements, "Deleted",
		engagement.AlumnusName+" / "+engagement.PartnerName, nil)
	c.Status(http.StatusNoContent)
}

func (a *App) HandleRecentEngagements(c *gin.Context) {
	list, _, err := a.db.ListEngagements(c.Request.Context(), models.EngagementFilter{
		Page:     1,
		PageSize: recentEngagementsLimit,
	})
	if err != nil {
		a.toSentry(c, "recent_engagements", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": list})
}

func (a *App) HandleEngagementsByType(c *gin.Context) {
	engagementType := c.Query("type")
	if !models.ValidEngagementType(engagementType) {
		writeError(c, ErrValidation, map[string]string{"type": "invalid_engagement_type"})
		return
	}

	page, pageSize := pageParams(c)
	list, total, err := a.db.ListEngagements(c.Request.Context(), models.EngagementFilter{
		EngagementType: engagementType,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		a.toSentry(c, "engagements_by_type", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: total, Page: page, PageSize: pageSize, Results: list})
}

func (a *App) HandleEngagementStatistics(c *gin.Context) {
	stats, err := a.db.EngagementStatistics(c.Request.Context())
	if err != nil {
		a.toSentry(c, "engagement_statistics", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}
