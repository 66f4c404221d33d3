package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
)

// AlumnusRequest is the directory create body.
type AlumnusRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone"`
	Degree         string  `json:"degree"`
	FieldOfStudy   string  `json:"field_of_study"`
	GraduationYear int     `json:"graduation_year"`
	CurrentCompany string  `json:"current_company"`
	JobTitle       string  `json:"job_title"`
	Industry       string  `json:"industry"`
	Status         string  `json:"status"`
	LinkedinURL    *string `json:"linkedin_url"`
	Bio            string  `json:"bio"`
}

func (a *App) HandleListAlumni(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := models.AlumniFilter{
		Status:            c.Query("status"),
		Degree:            c.Query("degree"),
		GraduationYear:    intQuery(c, "graduation_year"),
		GraduationYearMin: intQuery(c, "graduation_year_min"),
		GraduationYearMax: intQuery(c, "graduation_year_max"),
		Industry:          c.Query("industry"),
		Company:           c.Query("company"),
		Search:            c.Query("search"),
		Page:              page,
		PageSize:          pageSize,
	}

	list, total, err := a.db.ListAlumni(c.Request.Context(), filter)
	if err != nil {
		a.toSentry(c, "list_alumni", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: total, Page: page, PageSize: pageSize, Results: list})
}

func (a *App) HandleGetAlumnus(c *gin.Context) {
	alumnus, err := a.db.GetAlumnusByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "get_alumnus", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, alumnus)
}

func (a *App) HandleCreateAlumnus(c *gin.Context) {
	var req AlumnusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	na := models.NewAlumnus{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Degree:         req.Degree,
		FieldOfStudy:   req.FieldOfStudy,
		GraduationYear: req.GraduationYear,
		CurrentCompany: req.CurrentCompany,
		JobTitle:       req.JobTitle,
		Industry:       req.Industry,
		Status:         req.Status,
		LinkedinURL:    req.LinkedinURL,
		Bio:            req.Bio,
	}

	if validationErrors := validateNewAlumnus(na); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	alumnus, err := a.db.CreateAlumnus(c.Request.Context(), na)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBDuplicatedEntry) {
			writeError(c, ErrValidation, map[string]string{"email": "email_already_exists"})
			return
		}
		a.toSentry(c, "create_alumnus", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindAlumni, "Created", alumnus.FirstName+" "+alumnus.LastName, nil)
	c.JSON(http.StatusCreated, alumnus)
}

func (a *App) HandleUpdateAlumnus(c *gin.Context) {
	var patch models.AlumnusPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if validationErrors := validateAlumnusPatch(patch); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	before, err := a.db.GetAlumnusByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "update_alumnus", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	alumnus, err := a.db.UpdateAlumnus(c.Request.Context(), before.ID, patch)
	if err != nil {
		a.toSentry(c, "update_alumnus", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	changes := diffSnapshots(alumnusSnapshot(before), alumnusSnapshot(alumnus))
	a.recordAudit(c, KindAlumni, "Updated", alumnus.FirstName+" "+alumnus.LastName, changes)
	c.JSON(http.StatusOK, alumnus)
}

func (a *App) HandleDeleteAlumnus(c *gin.Context) {
	alumnus, err := a.db.GetAlumnusByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "delete_alumnus", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	if err := a.db.DeleteAlumnus(c.Request.Context(), alumnus.ID); err != nil {
		a.toSentry(c, "delete_alumnus", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindAlumni, "Deleted", alumnus.FirstName+" "+alumnus.LastName, nil)
	c.Status(http.StatusNoContent)
}

func (a *App) HandleAlumniStatistics(c *gin.Context) {
	stats, err := a.db.AlumniStatistics(c.Request.Context())
	if err != nil {
		a.toSentry(c, "alumni_statistics", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *App) HandleAlumniSearchByCompany(c *gin.Context) {
	company := c.Query("company")
	if company == "" {
		writeError(c, ErrMissingFields, map[string]string{"company": "company_required"})
		return
	}

	page, pageSize := pageParams(c)
	list, total, err := a.db.ListAlumni(c.Request.Context(), models.AlumniFilter{
		Company:  company,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		a.toSentry(c, "alumni_search_by_company", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: total, Page: page, PageSize: pageSize, Results: list})
}

func (a *App) HandleAlumnusRecordEngagement(c *gin.Context) {
	alumnus, err := a.db.GetAlumnusByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "alumnus_record_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	var req RecordEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	ne := models.NewEngagement{
		AlumnusID:      alumnus.ID,
		PartnerID:      req.PartnerID,
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

	if _, err := a.db.GetPartnerByID(c.Request.Context(), req.PartnerID); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "alumnus_record_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	engagement, err := a.db.CreateEngagement(c.Request.Context(), ne)
	if err != nil {
		if errors.Is(err, sqldb.ErrForeignKeyViolation) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "alumnus_record_engagement", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindAlumni, "Engagement Recorded", alumnus.FirstName+" "+alumnus.LastName, nil)
	c.JSON(http.StatusCreated, engagement)
}
