package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

// CreateAuditEntry appends an immutable audit record.
func (s *service) CreateAuditEntry(ctx context.Context, ne models.NewAuditEntry) (models.AuditEntry, error) {
	const query = `
		INSERT INTO audit_log (id, title, category, description, actor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, category, description, actor_id, created_at
	`

	var entry models.AuditEntry
	var actorID sql.NullString
	err := s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		ne.Title,
		ne.Category,
		ne.Description,
		NullString(ne.ActorID),
	).Scan(&entry.ID, &entry.Title, &entry.Category, &entry.Description, &actorID, &entry.CreatedAt)
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.AuditEntry{}, terr
		}
		return models.AuditEntry{}, fmt.Errorf("creating audit entry: %w", err)
	}
	entry.ActorID = StringPtr(actorID)
	return entry, nil
}

// ListAuditEntries retrieves audit entries newest first.
func (s *service) ListAuditEntries(ctx context.Context, page, pageSize int) ([]models.AuditEntry, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting audit entries: %w", err)
	}

	limit, offset := pageBounds(page, pageSize)
	query := fmt.Sprintf(`
		SELECT id, title, category, description, actor_id, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT %d OFFSET %d
	`, limit, offset)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var actorID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Category, &entry.Description, &actorID, &entry.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning audit entry: %w", err)
		}
		entry.ActorID = StringPtr(actorID)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating audit entries: %w", err)
	}
	return entries, total, nil
}
