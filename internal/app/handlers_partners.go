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

const defaultTopEngagedLimit = 10

// PartnerRequest is the directory create body.
type PartnerRequest struct {
	Name                 string     `json:"name"`
	PartnerType          string     `json:"partner_type"`
	Description          string     `json:"description"`
	Website              *string    `json:"website"`
	Email                string     `json:"email"`
	Phone                string     `json:"phone"`
	Address              string     `json:"address"`
	City                 string     `json:"city"`
	State                string     `json:"state"`
	Country              string     `json:"country"`
	PrimaryContactName   string     `json:"primary_contact_name"`
	PrimaryContactEmail  string     `json:"primary_contact_email"`
	PrimaryContactPhone  string     `json:"primary_contact_phone"`
	EngagementLevel      string     `json:"engagement_level"`
	Industry             string     `json:"industry"`
	EmployeeCount        *int       `json:"employee_count"`
	PartnershipStartDate *time.Time `json:"partnership_start_date"`
	Notes                string     `json:"notes"`
}

func (a *App) HandleListPartners(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := models.PartnerFilter{
		PartnerType:     c.Query("partner_type"),
		EngagementLevel: c.Query("engagement_level"),
		Industry:        c.Query("industry"),
		Search:          c.Query("search"),
		Page:            page,
		PageSize:        pageSize,
	}

	list, total, err := a.db.ListPartners(c.Request.Context(), filter)
	if err != nil {
		a.toSentry(c, "list_partners", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: total, Page: page, PageSize: pageSize, Results: list})
}

func (a *App) HandleGetPartner(c *gin.Context) {
	partner, err := a.db.GetPartnerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "get_partner", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, partner)
}

func (a *App) HandleCreatePartner(c *gin.Context) {
	var req PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if req.EngagementLevel == "" {
		req.EngagementLevel = models.LevelProspective
	}

	np := models.NewPartner{
		Name:                 req.Name,
		PartnerType:          req.PartnerType,
		Description:          req.Description,
		Website:              req.Website,
		Email:                req.Email,
		Phone:                req.Phone,
		Address:              req.Address,
		City:                 req.City,
		State:                req.State,
		Country:              req.Country,
		PrimaryContactName:   req.PrimaryContactName,
		PrimaryContactEmail:  req.PrimaryContactEmail,
		PrimaryContactPhone:  req.PrimaryContactPhone,
		EngagementLevel:      req.EngagementLevel,
		Industry:             req.Industry,
		EmployeeCount:        req.EmployeeCount,
		PartnershipStartDate: req.PartnershipStartDate,
		Notes:                req.Notes,
	}

	if validationErrors := validateNewPartner(np); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	partner, err := a.db.CreatePartner(c.Request.Context(), np)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBDuplicatedEntry) {
			writeError(c, ErrValidation, map[string]string{"name": "name_already_exists"})
			return
		}
		a.toSentry(c, "create_partner", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindPartners, "Created", partner.Name, nil)
	c.JSON(http.StatusCreated, partner)
}

func (a *App) HandleUpdatePartner(c *gin.Context) {
	var patch models.PartnerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if validationErrors := validatePartnerPatch(patch); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	before, err := a.db.GetPartnerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "update_partner", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	partner, err := a.db.UpdatePartner(c.Request.Context(), before.ID, patch)
	if err != nil {
		a.toSentry(c, "update_partner", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	changes := diffSnapshots(partnerSnapshot(before), partnerSnapshot(partner))
	a.recordAudit(c, KindPartners, "Updated", partner.Name, changes)
	c.JSON(http.StatusOK, partner)
}

func (a *App) HandleDeletePartner(c *gin.Context) {
	partner, err := a.db.GetPartnerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "delete_partner", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	if err := a.db.DeletePartner(c.Request.Context(), partner.ID); err != nil {
		a.toSentry(c, "delete_partner", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindPartners, "Deleted", partner.Name, nil)
	c.Status(http.StatusNoContent)
}

func (a *App) HandlePartnerStatistics(c *gin.Context) {
	stats, err := a.db.PartnerStatistics(c.Request.Context())
	if err != nil {
		a.toSentry(c, "partner_statistics", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *App) HandleTopEngagedPartners(c *gin.Context) {
	limit := intQuery(c, "limit")
	if limit <= 0 || limit > 100 {
		limit = defaultTopEngagedLimit
	}

	partners, err := a.db.TopEngagedPartners(c.Request.Context(), limit)
	if err != nil {
		a.toSentry(c, "top_engaged_partners", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": partners})
}

func (a *App) HandlePartnerRecordEngagement(c *gin.Context) {
	partner, err := a.db.GetPartnerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "partner_record_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	var req RecordEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	ne := models.NewEngagement{
		AlumnusID:      req.AlumnusID,
		PartnerID:      partner.ID,
		EngagementType: req.EngagementType,
		Description:    req.Description,
		Notes:          req.Notes,
	}
	if req.EngagementDate != nil {
		ne.EngagementDate = *req.EngagementDate
	}
	if validationErrors := validateNewEngagement(ne); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	if _, err := a.db.GetAlumnusByID(c.Request.Context(), req.AlumnusID); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "partner_record_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	engagement, err := a.db.CreateEngagement(c.Request.Context(), ne)
	if err != nil {
		if errors.Is(err, sqldb.ErrForeignKeyViolation) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "partner_record_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindPartners, "Engagement Recorded", partner.Name, nil)
	c.JSON(http.StatusCreated, engagement)
}
