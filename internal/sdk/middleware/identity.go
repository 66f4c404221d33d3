package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/session"
)

// Identify resolves the requesting user and stores it in the gin context.
//
// An Authorization header always wins: when one is present with a "Token" or
// "Bearer" scheme, the request authenticates by API token or not at all. A
// bad token never falls back to the session cookie. Requests without an
// Authorization header may authenticate through the signed session cookie,
// with the sessions table as the authority on liveness.
//
// Identify never rejects a request itself; RequireAuth and Admin do that.
func Identify(db sqldb.Service, cookies *session.CookieService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key, ok := bearerKey(c.GetHeader("Authorization")); ok {
			if user, found := userForToken(c, db, key); found {
				c.Set(UserKey, user)
				c.Set(AuthKindKey, AuthKindToken)
			}
			c.Next()
			return
		}

		if user, found := userForCookie(c, db, cookies); found {
			c.Set(UserKey, user)
			c.Set(AuthKindKey, AuthKindSession)
		}
		c.Next()
	}
}

// bearerKey extracts the token key from an Authorization header. Both
// "Token <key>" and "Bearer <key>" schemes are accepted.
func bearerKey(header string) (string, bool) {
	for _, scheme := range []string{"Token ", "Bearer "} {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			key := strings.TrimSpace(header[len(scheme):])
			return key, key != ""
		}
	}
	return "", false
}

func userForToken(c *gin.Context, db sqldb.Service, key string) (models.User, bool) {
	tok, err := db.GetAuthTokenByKey(c.Request.Context(), key)
	if err != nil {
		return models.User{}, false
	}

	user, err := db.GetUserByID(c.Request.Context(), tok.UserID)
	if err != nil || !user.IsActive {
		return models.User{}, false
	}
	return user, true
}

func userForCookie(c *gin.Context, db sqldb.Service, cookies *session.CookieService) (models.User, bool) {
	value, err := c.Cookie(session.CookieName)
	if err != nil {
		return models.User{}, false
	}

	sessionID, err := cookies.Parse(value)
	if err != nil {
		return models.User{}, false
	}

	sess, err := db.GetSession(c.Request.Context(), sessionID)
	if err != nil || time.Now().After(sess.ExpiresAt) {
		return models.User{}, false
	}

	user, err := db.GetUserByID(c.Request.Context(), sess.UserID)
	if err != nil || !user.IsActive {
		return models.User{}, false
	}
	return user, true
}

// RequireAuth rejects requests that Identify left unauthenticated.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(UserKey); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Identify.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(UserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

// AuthKind returns how the current request authenticated: AuthKindToken,
// AuthKindSession, or "" when unauthenticated.
func AuthKind(c *gin.Context) string {
	val, exists := c.Get(AuthKindKey)
	if !exists {
		return ""
	}
	kind, _ := val.(string)
	return kind
}
