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

func (a *App) HandleUpdateAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var req AccountPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if validationErrors := validateAccountPatch(req); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	// Duplicate checks exclude the caller's own row.
	details := make(map[string]string)
	if req.Username != nil {
		taken, err := a.db.UsernameTaken(c.Request.Context(), *req.Username, user.ID)
		if err != nil {
			a.toSentry(c, "update_account", "db", sentry.LevelError, err)
			writeError(c, ErrRetrieve, nil)
			return
		}
		if taken {
			details["username"] = "username_already_exists"
		}
	}
	if req.Email != nil {
		taken, err := a.db.EmailTaken(c.Request.Context(), *req.Email, user.ID)
		if err != nil {
			a.toSentry(c, "update_account", "db", sentry.LevelError, err)
			writeError(c, ErrRetrieve, nil)
			return
		}
		if taken {
			details["email"] = "email_already_exists"
		}
	}
	if len(details) > 0 {
		writeError(c, ErrUserExists, details)
		return
	}

	updated, err := a.db.UpdateUserAccount(c.Request.Context(), user.ID, models.AccountPatch{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, sqldb.ErrDBDuplicatedEntry) {
			writeError(c, ErrUserExists, nil)
			return
		}
		a.toSentry(c, "update_account", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(updated))
}

func (a *App) HandleChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	errCode, validationErrors := validateChangePasswordInput(req)
	if errCode != "" {
		writeError(c, errCode, validationErrors)
		return
	}

	if !a.hash.CheckPasswordHash(req.CurrentPassword, user.Password) {
		writeError(c, ErrWrongPassword, map[string]string{
			"current_password": "incorrect_current_password",
		})
		return
	}

	hashed, err := a.hash.HashPassword(req.NewPassword)
	if err != nil {
		a.toSentry(c, "change_password", "bcrypt", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}

	if err := a.db.UpdateUserPassword(c.Request.Context(), user.ID, hashed); err != nil {
		a.toSentry(c, "change_password", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
