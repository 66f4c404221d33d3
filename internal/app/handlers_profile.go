package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/middleware"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
)

// ProfileRequest is the create-my-profile body. Name and email fields left
// empty default from the owning account.
type ProfileRequest struct {
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
	LinkedinURL    *string `json:"linkedin_url"`
	Bio            string  `json:"bio"`
}

func (a *App) HandleGetMyProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	alumnus, err := a.db.GetAlumnusByUserID(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrProfileNotFound, nil)
			return
		}
		a.toSentry(c, "get_my_profile", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	c.JSON(http.StatusOK, alumnus)
}

func (a *App) HandleCreateMyProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	// Explicit existence check so the caller gets a structured conflict;
	// the unique constraint on user_id backstops the race.
	exists, err := a.db.AlumnusExistsForUser(c.Request.Context(), user.ID)
	if err != nil {
		a.toSentry(c, "create_my_profile", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	if exists {
		writeError(c, ErrProfileExists, nil)
		return
	}

	if req.FirstName == "" {
		req.FirstName = user.FirstName
	}
	if req.LastName == "" {
		req.LastName = user.LastName
	}
	if req.Email == "" {
		req.Email = user.Email
	}

	na := models.NewAlumnus{
		UserID:         &user.ID,
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
		Status:         models.StatusActive,
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
			writeError(c, ErrProfileExists, nil)
			return
		}
		a.toSentry(c, "create_my_profile", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	c.JSON(http.StatusCreated, alumnus)
}

func (a *App) HandleUpdateMyProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var patch models.AlumnusPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if validationErrors := validateAlumnusPatch(patch); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	current, err := a.db.GetAlumnusByUserID(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrProfileNotFound, nil)
			return
		}
		a.toSentry(c, "update_my_profile", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	alumnus, err := a.db.UpdateAlumnus(c.Request.Context(), current.ID, patch)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrProfileNotFound, nil)
			return
		}
		a.toSentry(c, "update_my_profile", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	c.JSON(http.StatusOK, alumnus)
}
