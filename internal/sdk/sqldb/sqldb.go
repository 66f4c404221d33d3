// Package sqldb provides database operations for the alumni relationship service.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb/migrations"
)

// PostgreSQL error codes.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	notNullViolation    = "23502"
)

var (
	ErrDBNotFound          = sql.ErrNoRows
	ErrDBDuplicatedEntry   = errors.New("duplicated entry")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check constraint violation")
	ErrNotNullViolation    = errors.New("not null violation")
)

// Service is the storage contract the application layer depends on.
type Service interface {
	// Health returns a map of health status information.
	Health(ctx context.Context) map[string]string

	// Close terminates the database connection.
	Close() error

	// User operations
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByUsernameFold(ctx context.Context, username string) (models.User, error)
	GetUserByEmailFold(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, user models.NewUser) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserAccount(ctx context.Context, userID string, patch models.AccountPatch) (models.User, error)
	UpdateUserPassword(ctx context.Context, userID string, hash []byte) error
	SetUserActive(ctx context.Context, userID string, active bool) (models.User, error)
	TouchLastLogin(ctx context.Context, userID string) error
	UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error)
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)

	// Auth token operations
	GetOrCreateAuthToken(ctx context.Context, userID, key string) (models.AuthToken, error)
	GetAuthTokenByKey(ctx context.Context, key string) (models.AuthToken, error)
	DeleteAuthTokenForUser(ctx context.Context, userID string) error

	// Session operations
	CreateSession(ctx context.Context, ns models.NewSession) (models.Session, error)
	GetSession(ctx context.Context, sessionID string) (models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Password reset operations
	CreatePasswordResetToken(ctx context.Context, nt models.NewPasswordResetToken) (models.PasswordResetToken, error)
	GetPasswordResetToken(ctx context.Context, token string) (models.PasswordResetToken, error)
	MarkPasswordResetTokenUsed(ctx context.Context, tokenID string) error

	// Alumni operations
	GetAlumnusByID(ctx context.Context, alumnusID string) (models.Alumnus, error)
	GetAlumnusByUserID(ctx context.Context, userID string) (models.Alumnus, error)
	AlumnusExistsForUser(ctx context.Context, userID string) (bool, error)
	CreateAlumnus(ctx context.Context, na models.NewAlumnus) (models.Alumnus, error)
	UpdateAlumnus(ctx context.Context, alumnusID string, patch models.AlumnusPatch) (models.Alumnus, error)
	DeleteAlumnus(ctx context.Context, alumnusID string) error
	ListAlumni(ctx context.Context, f models.AlumniFilter) ([]models.Alumnus, int, error)
	AlumniStatistics(ctx context.Context) (models.AlumniStats, error)
	BulkSetAlumniStatus(ctx context.Context, matchStatus, newStatus string, ids []string) (int64, error)
	BulkDeleteAlumni(ctx context.Context, ids []string) (int64, error)

	// Partner operations
	GetPartnerByID(ctx context.Context, partnerID string) (models.Partner, error)
	CreatePartner(ctx context.Context, np models.NewPartner) (models.Partner, error)
	UpdatePartner(ctx context.Context, partnerID string, patch models.PartnerPatch) (models.Partner, error)
	DeletePartner(ctx context.Context, partnerID string) error
	ListPartners(ctx context.Context, f models.PartnerFilter) ([]models.Partner, int, error)
	PartnerStatistics(ctx context.Context) (models.PartnerStats, error)
	TopEngagedPartners(ctx context.Context, limit int) ([]models.Partner, error)
	BulkSetPartnerLevel(ctx context.Context, level string, ids []string) (int64, error)
	BulkDeletePartners(ctx context.Context, ids []string) (int64, error)

	// Engagement operations
	GetEngagementByID(ctx context.Context, engagementID string) (models.Engagement, error)
	CreateEngagement(ctx context.Context, ne models.NewEngagement) (models.Engagement, error)
	DeleteEngagement(ctx context.Context, engagementID string) error
	ListEngagements(ctx context.Context, f models.EngagementFilter) ([]models.Engagement, int, error)
	EngagementStatistics(ctx context.Context) (models.EngagementStats, error)

	// Report operations
	CreateReport(ctx context.Context, nr models.NewReport) (models.Report, error)
	GetReportByID(ctx context.Context, reportID string) (models.Report, error)
	ListReports(ctx context.Context, f models.ReportFilter) ([]models.Report, int, error)
	DeleteReport(ctx context.Context, reportID string) error

	// Audit operations
	CreateAuditEntry(ctx context.Context, ne models.NewAuditEntry) (models.AuditEntry, error)
	ListAuditEntries(ctx context.Context, page, pageSize int) ([]models.AuditEntry, int, error)
}

type service struct {
	db *sql.DB
}

// New opens a connection pool for the given DSN.
func New(dsn string) (Service, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &service{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *sql.DB) Service {
	return &service{db: db}
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, s Service) error {
	svc, ok := s.(*service)
	if !ok {
		return errors.New("migrations require a postgres-backed service")
	}
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, svc.db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Health checks the database connection by pinging it and returns pool stats.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	return s.db.Close()
}

// ---------------------------------------------
// Helpers
// ---------------------------------------------

// isPgError checks if the error is a PostgreSQL error with the given code.
func isPgError(err error, code string) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == code
	}
	return false
}

// translateConstraint maps constraint violations onto package errors so the
// application layer never inspects SQLSTATE itself.
func translateConstraint(err error) error {
	switch {
	case isPgError(err, uniqueViolation):
		return ErrDBDuplicatedEntry
	case isPgError(err, foreignKeyViolation):
		return ErrForeignKeyViolation
	case isPgError(err, checkViolation):
		return ErrCheckViolation
	case isPgError(err, notNullViolation):
		return ErrNotNullViolation
	}
	return nil
}

// NullString creates a sql.NullString from a string pointer.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullInt64 creates a sql.NullInt64 from an int pointer.
func NullInt64(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// NullTime creates a sql.NullTime from a time.Time pointer.
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// StringPtr returns a pointer to a string from sql.NullString.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// IntPtr returns a pointer to an int from sql.NullInt64.
func IntPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// TimePtr returns a pointer to a time.Time from sql.NullTime.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDBNotFound)
}

// IsDuplicateEntry checks if the error is a duplicate entry error.
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDBDuplicatedEntry)
}
