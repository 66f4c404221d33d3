package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

const engagementColumns = `
	e.id,
	e.alumni_id,
	e.partner_id,
	a.first_name || ' ' || a.last_name,
	p.name,
	e.engagement_type,
	e.description,
	e.engagement_date,
	e.notes,
	e.created_at,
	e.updated_at
`

const engagementFrom = `
	FROM engagements e
	JOIN alumni a ON a.id = e.alumni_id
	JOIN partners p ON p.id = e.partner_id
`

func scanEngagement(row interface{ Scan(...any) error }) (models.Engagement, error) {
	var en models.Engagement
	err := row.Scan(
		&en.ID,
		&en.AlumnusID,
		&en.PartnerID,
		&en.AlumnusName,
		&en.PartnerName,
		&en.EngagementType,
		&en.Description,
		&en.EngagementDate,
		&en.Notes,
		&en.CreatedAt,
		&en.UpdatedAt,
	)
	if err != nil {
		return models.Engagement{}, err
	}
	return en, nil
}

// GetEngagementByID retrieves an engagement by ID.
func (s *service) GetEngagementByID(ctx context.Context, engagementID string) (models.Engagement, error) {
	query := `SELECT ` + engagementColumns + engagementFrom + ` WHERE e.id = $1`

	en, err := scanEngagement(s.db.QueryRowContext(ctx, query, engagementID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Engagement{}, ErrDBNotFound
		}
		return models.Engagement{}, fmt.Errorf("selecting engagement: %w", err)
	}
	return en, nil
}

// CreateEngagement inserts an engagement and stamps last_engagement on both
// the alumnus and the partner inside a single transaction.
func (s *service) CreateEngagement(ctx context.Context, ne models.NewEngagement) (models.Engagement, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Engagement{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO engagements (id, alumni_id, partner_id, engagement_type, description, engagement_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, ne.AlumnusID, ne.PartnerID, ne.EngagementType, ne.Description, ne.EngagementDate, ne.Notes)
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.Engagement{}, terr
		}
		return models.Engagement{}, fmt.Errorf("creating engagement: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE alumni SET last_engagement = $2 WHERE id = $1`, ne.AlumnusID, ne.EngagementDate); err != nil {
		return models.Engagement{}, fmt.Errorf("stamping alumnus engagement: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE partners SET last_engagement = $2 WHERE id = $1`, ne.PartnerID, ne.EngagementDate); err != nil {
		return models.Engagement{}, fmt.Errorf("stamping partner engagement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Engagement{}, fmt.Errorf("committing engagement: %w", err)
	}

	return s.GetEngagementByID(ctx, id)
}

// DeleteEngagement removes an engagement.
func (s *service) DeleteEngagement(ctx context.Context, engagementID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM engagements WHERE id = $1`, engagementID)
	if err != nil {
		return fmt.Errorf("deleting engagement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDBNotFound
	}
	return nil
}

// ListEngagements retrieves a filtered, paged list and the unpaged total.
func (s *service) ListEngagements(ctx context.Context, f models.EngagementFilter) ([]models.Engagement, int, error) {
	var where []string
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.AlumnusID != "" {
		add(`e.alumni_id = $%d`, f.AlumnusID)
	}
	if f.PartnerID != "" {
		add(`e.partner_id = $%d`, f.PartnerID)
	}
	if f.EngagementType != "" {
		add(`e.engagement_type = $%d`, f.EngagementType)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(a.first_name ILIKE $%d OR a.last_name ILIKE $%d OR p.name ILIKE $%d)`, n, n, n))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+engagementFrom+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting engagements: %w", err)
	}

	limit, offset := pageBounds(f.Page, f.PageSize)
	query := `SELECT ` + engagementColumns + engagementFrom + clause +
		fmt.Sprintf(` ORDER BY e.engagement_date DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing engagements: %w", err)
	}
	defer rows.Close()

	var engagements []models.Engagement
	for rows.Next() {
		en, err := scanEngagement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning engagement: %w", err)
		}
		engagements = append(engagements, en)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating engagements: %w", err)
	}
	return engagements, total, nil
}

// EngagementStatistics aggregates totals, per-type counts and the top
// partners by engagement count.
func (s *service) EngagementStatistics(ctx context.Context) (models.EngagementStats, error) {
	stats := models.EngagementStats{ByType: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM engagements`).Scan(&stats.Total); err != nil {
		return models.EngagementStats{}, fmt.Errorf("counting engagements: %w", err)
	}

	if err := s.groupCount(ctx,
		`SELECT engagement_type, COUNT(*) FROM engagements GROUP BY engagement_type`, stats.ByType); err != nil {
		return models.EngagementStats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, COUNT(e.id) AS engagement_count
		FROM partners p
		LEFT JOIN engagements e ON e.partner_id = p.id
		GROUP BY p.id
		ORDER BY engagement_count DESC
		LIMIT 10
	`)
	if err != nil {
		return models.EngagementStats{}, fmt.Errorf("listing top partners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pc models.PartnerEngagementCount
		if err := rows.Scan(&pc.Name, &pc.Count); err != nil {
			return models.EngagementStats{}, fmt.Errorf("scanning top partner: %w", err)
		}
		stats.TopPartners = append(stats.TopPartners, pc)
	}
	if err := rows.Err(); err != nil {
		return models.EngagementStats{}, fmt.Errorf("iterating top partners: %w", err)
	}
	return stats, nil
}
