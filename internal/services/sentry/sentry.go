// Package sentry wraps error tracking via Sentry.
package sentry

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

// Re-exported so handlers only import this package.
type (
	Scope = sentry.Scope
	Level = sentry.Level
)

const (
	LevelError   = sentry.LevelError
	LevelWarning = sentry.LevelWarning
	LevelInfo    = sentry.LevelInfo
)

// SentryService provides error tracking. A zero/unconfigured service is a
// no-op so local development works without a DSN.
type SentryService struct {
	initialized bool
}

// NewSentryService initializes the Sentry client. An empty DSN disables it.
func NewSentryService(dsn, environment string) *SentryService {
	if dsn == "" {
		log.Println("SENTRY_DSN not set, Sentry disabled")
		return &SentryService{initialized: false}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		TracesSampleRate: 1.0,
		EnableTracing:    true,
	})
	if err != nil {
		log.Printf("Sentry initialization failed: %v", err)
		return &SentryService{initialized: false}
	}

	return &SentryService{initialized: true}
}

// CaptureException sends an error to Sentry.
func (s *SentryService) CaptureException(err error) {
	if !s.initialized {
		return
	}
	sentry.CaptureException(err)
}

// CaptureMessage sends a message to Sentry.
func (s *SentryService) CaptureMessage(message string) {
	if !s.initialized {
		return
	}
	sentry.CaptureMessage(message)
}

// WithScope runs f in a temporary scope.
func (s *SentryService) WithScope(f func(scope *Scope)) {
	if !s.initialized {
		return
	}
	sentry.WithScope(f)
}

// Flush waits for buffered events to be sent.
func (s *SentryService) Flush(timeout time.Duration) bool {
	if !s.initialized {
		return true
	}
	return sentry.Flush(timeout)
}

// Close flushes and shuts down the client.
func (s *SentryService) Close() {
	s.Flush(2 * time.Second)
}

// Recover captures an in-flight panic.
func (s *SentryService) Recover() {
	if !s.initialized {
		return
	}
	if err := recover(); err != nil {
		sentry.CurrentHub().Recover(err)
		sentry.Flush(2 * time.Second)
	}
}
