package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
	"github.com/jvtaylar/alumni-partner-db/internal/services/token"
)

const resetTokenTTL = 1 * time.Hour

// forgotPasswordMessage never varies with account existence.
const forgotPasswordMessage = "If the email exists, a password reset link has been sent"

func (a *App) HandleForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if req.Email == "" {
		writeError(c, ErrMissingFields, map[string]string{"email": "email_required"})
		return
	}

	user, err := a.db.GetUserByEmailFold(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
			return
		}
		a.toSentry(c, "forgot_password", "db", sentry.LevelError, err)
		writeError(c, ErrCreateResetToken, nil)
		return
	}

	resetToken, err := token.NewResetToken()
	if err != nil {
		a.toSentry(c, "forgot_password", "token_generation", sentry.LevelError, err)
		writeError(c, ErrCreateResetToken, nil)
		return
	}

	_, err = a.db.CreatePasswordResetToken(c.Request.Context(), models.NewPasswordResetToken{
		UserID:    user.ID,
		Token:     resetToken,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	})
	if err != nil {
		a.toSentry(c, "forgot_password", "db", sentry.LevelError, err)
		writeError(c, ErrCreateResetToken, nil)
		return
	}

	resetURL := fmt.Sprintf("%s?token=%s", a.resetBaseURL, resetToken)
	if err := a.email.SendPasswordReset(user.Email, user.FirstName, resetURL); err != nil {
		a.toSentry(c, "forgot_password", "email", sentry.LevelError, err)
		writeError(c, ErrSendResetEmail, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
}

func (a *App) HandleResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if req.Token == "" {
		writeError(c, ErrMissingFields, map[string]string{"token": "token_required"})
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(c, ErrPasswordTooShort, map[string]string{"password": "password_too_short"})
		return
	}
	if req.Password != req.Password2 {
		writeError(c, ErrPasswordMismatch, map[string]string{"password2": "passwords_do_not_match"})
		return
	}

	resetToken, err := a.db.GetPasswordResetToken(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrInvalidResetToken, nil)
			return
		}
		a.toSentry(c, "reset_password", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	if resetToken.UsedAt != nil {
		writeError(c, ErrInvalidResetToken, nil)
		return
	}
	if time.Now().After(resetToken.ExpiresAt) {
		writeError(c, ErrExpiredResetToken, nil)
		return
	}

	hashed, err := a.hash.HashPassword(req.Password)
	if err != nil {
		a.toSentry(c, "reset_password", "bcrypt", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}

	if err := a.db.UpdateUserPassword(c.Request.Context(), resetToken.UserID, hashed); err != nil {
		a.toSentry(c, "reset_password", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	// The password is already changed; a failed used-stamp is logged only.
	if err := a.db.MarkPasswordResetTokenUsed(c.Request.Context(), resetToken.ID); err != nil {
		a.toSentry(c, "reset_password", "db", sentry.LevelWarning, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}
