package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jvtaylar/alumni-partner-db/internal/app"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/config"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/mailer"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
	"github.com/jvtaylar/alumni-partner-db/internal/services/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	logger.Info("GOMAXPROCS", "cpu", runtime.GOMAXPROCS(0))

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Initialize Database
	dbService, err := sqldb.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbService.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sqldb.RunMigrations(migrateCtx, dbService); err != nil {
		return err
	}

	// 3. Initialize Services
	sentryService := sentry.NewSentryService(cfg.SentryDSN, cfg.SentryEnvironment)
	defer sentryService.Close()
	cookieService := session.NewCookieService(cfg.SessionSecret, time.Duration(cfg.SessionTTL)*time.Hour)
	mailerService := mailer.NewMailerService(cfg.MailAPIKey, cfg.MailAPIURL, cfg.MailFrom)

	// 4. Initialize App
	app := app.NewApp(dbService, sentryService, cookieService, mailerService, cfg.ResetBaseURL)

	// 5. Configure Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 6. Graceful Shutdown Logic
	done := make(chan bool, 1)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down gracefully, press Ctrl+C again to force")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}
		done <- true
	}()

	// 7. Start Server
	logger.Info("Starting server", "port", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	<-done
	logger.Info("Graceful shutdown complete")
	return nil
}
