// Package app provides the HTTP handlers for the alumni relationship service.
package app

import (
	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/hash"
	"github.com/jvtaylar/alumni-partner-db/internal/services/mailer"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
	"github.com/jvtaylar/alumni-partner-db/internal/services/session"
)

type App struct {
	db       sqldb.Service
	sentry   *sentry.SentryService
	cookies  *session.CookieService
	email    *mailer.MailerService
	hash     *hash.HashService
	registry map[EntityKind]AdminConfig

	resetBaseURL string
}

func NewApp(
	db sqldb.Service,
	sentry *sentry.SentryService,
	cookies *session.CookieService,
	email *mailer.MailerService,
	resetBaseURL string,
) *App {
	return &App{
		db:           db,
		sentry:       sentry,
		cookies:      cookies,
		email:        email,
		hash:         hash.NewHashService(),
		registry:     buildAdminRegistry(),
		resetBaseURL: resetBaseURL,
	}
}

func (a *App) toSentry(c *gin.Context, handler, errType string, level sentry.Level, err error) {
	a.sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", handler)
		scope.SetExtra("error_type", errType)
		scope.SetLevel(level)
		if reqID := c.GetHeader("X-Request-ID"); reqID != "" {
			scope.SetTag("request_id", reqID)
		}
		a.sentry.CaptureException(err)
	})
}
