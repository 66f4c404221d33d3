package app

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/middleware"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
	"github.com/jvtaylar/alumni-partner-db/internal/services/session"
	"github.com/jvtaylar/alumni-partner-db/internal/services/token"
)

const sessionTTL = 14 * 24 * time.Hour

func (a *App) HandleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "register", "unmarshal", sentry.LevelError, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	errCode, validationErrors := validateRegisterInput(req)
	if errCode != "" {
		writeError(c, errCode, validationErrors)
		return
	}

	hashed, err := a.hash.HashPassword(req.Password)
	if err != nil {
		a.toSentry(c, "register", "bcrypt", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}

	user, err := a.db.CreateUser(c.Request.Context(), models.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, sqldb.ErrDBDuplicatedEntry) {
			writeError(c, ErrUserExists, a.duplicateAccountDetails(c, req.Username, req.Email))
			return
		}
		a.toSentry(c, "register", "db", sentry.LevelError, err)
		writeError(c, ErrCreateUser, nil)
		return
	}

	key, err := a.issueToken(c, user.ID)
	if err != nil {
		writeError(c, ErrGenerateToken, nil)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token:  key,
		User:   toUserResponse(user),
		Alumni: nil,
	})
}

func (a *App) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "login", "unmarshal", sentry.LevelError, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if validationErrors := validateLoginInput(req); len(validationErrors) > 0 {
		writeError(c, ErrMissingFields, validationErrors)
		return
	}

	user, err := a.resolveCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errCredentials) {
			// One generic answer for every resolution failure.
			writeError(c, ErrInvalidCredentials, nil)
			return
		}
		a.toSentry(c, "login", "db", sentry.LevelError, err)
		writeError(c, ErrProcessLogin, nil)
		return
	}

	if err := a.db.TouchLastLogin(c.Request.Context(), user.ID); err != nil {
		a.toSentry(c, "login", "db", sentry.LevelWarning, err)
	}

	key, err := a.issueToken(c, user.ID)
	if err != nil {
		writeError(c, ErrGenerateToken, nil)
		return
	}

	if err := a.establishSession(c, user.ID); err != nil {
		writeError(c, ErrCreateSession, nil)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:  key,
		User:   toUserResponse(user),
		Alumni: a.linkedProfile(c, user.ID),
	})
}

func (a *App) HandleLogout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	// Token revocation happens only in the logout-with-token flow; a plain
	// session logout leaves API tokens usable.
	if middleware.AuthKind(c) == middleware.AuthKindToken {
		if err := a.db.DeleteAuthTokenForUser(c.Request.Context(), user.ID); err != nil &&
			!errors.Is(err, sqldb.ErrDBNotFound) {
			a.toSentry(c, "logout", "db", sentry.LevelWarning, err)
		}
	}

	if value, err := c.Cookie(session.CookieName); err == nil {
		if sessionID, err := a.cookies.Parse(value); err == nil {
			if err := a.db.DeleteSession(c.Request.Context(), sessionID); err != nil &&
				!errors.Is(err, sqldb.ErrDBNotFound) {
				a.toSentry(c, "logout", "db", sentry.LevelWarning, err)
			}
		}
	}
	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a *App) HandleCurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:   toUserResponse(user),
		Alumni: a.linkedProfile(c, user.ID),
	})
}

// issueToken get-or-creates the account's API token.
func (a *App) issueToken(c *gin.Context, userID string) (string, error) {
	key, err := token.NewKey()
	if err != nil {
		a.toSentry(c, "auth", "token_generation", sentry.LevelError, err)
		return "", err
	}

	// The upsert returns the existing key when the account already has one.
	tok, err := a.db.GetOrCreateAuthToken(c.Request.Context(), userID, key)
	if err != nil {
		a.toSentry(c, "auth", "db_token", sentry.LevelError, err)
		return "", err
	}
	return tok.Key, nil
}

// establishSession creates a session row and sets the signed cookie.
func (a *App) establishSession(c *gin.Context, userID string) error {
	sess, err := a.db.CreateSession(c.Request.Context(), models.NewSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionTTL),
	})
	if err != nil {
		a.toSentry(c, "auth", "db_session", sentry.LevelError, err)
		return err
	}

	value, err := a.cookies.Sign(sess.ID)
	if err != nil {
		a.toSentry(c, "auth", "cookie_sign", sentry.LevelError, err)
		return err
	}

	c.SetCookie(session.CookieName, value, int(sessionTTL.Seconds()), "/", "", false, true)
	return nil
}

// linkedProfile returns the account's alumni profile, or nil when none is
// linked. Lookup failures other than not-found are reported, not surfaced.
func (a *App) linkedProfile(c *gin.Context, userID string) *models.Alumnus {
	alumnus, err := a.db.GetAlumnusByUserID(c.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, sqldb.ErrDBNotFound) {
			a.toSentry(c, "auth", "db_profile", sentry.LevelWarning, err)
		}
		return nil
	}
	return &alumnus
}

// duplicateAccountDetails pins the unique violation to a field.
func (a *App) duplicateAccountDetails(c *gin.Context, username, email string) map[string]string {
	details := make(map[string]string)
	if taken, err := a.db.UsernameTaken(c.Request.Context(), username, ""); err == nil && taken {
		details["username"] = "username_already_exists"
	}
	if taken, err := a.db.EmailTaken(c.Request.Context(), email, ""); err == nil && taken {
		details["email"] = "email_already_exists"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
