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

const partnerColumns = `
	id,
	name,
	partner_type,
	description,
	website,
	email,
	phone,
	address,
	city,
	state,
	country,
	primary_contact_name,
	primary_contact_email,
	primary_contact_phone,
	engagement_level,
	industry,
	employee_count,
	partnership_start_date,
	notes,
	created_at,
	updated_at,
	last_engagement
`

const qualifiedPartnerColumns = `
	p.id,
	p.name,
	p.partner_type,
	p.description,
	p.website,
	p.email,
	p.phone,
	p.address,
	p.city,
	p.state,
	p.country,
	p.primary_contact_name,
	p.primary_contact_email,
	p.primary_contact_phone,
	p.engagement_level,
	p.industry,
	p.employee_count,
	p.partnership_start_date,
	p.notes,
	p.created_at,
	p.updated_at,
	p.last_engagement
`

func scanPartner(row interface{ Scan(...any) error }) (models.Partner, error) {
	var p models.Partner
	var website sql.NullString
	var employeeCount sql.NullInt64
	var startDate, lastEngagement sql.NullTime
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.PartnerType,
		&p.Description,
		&website,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.City,
		&p.State,
		&p.Country,
		&p.PrimaryContactName,
		&p.PrimaryContactEmail,
		&p.PrimaryContactPhone,
		&p.EngagementLevel,
		&p.Industry,
		&employeeCount,
		&startDate,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
		&lastEngagement,
	)
	if err != nil {
		return models.Partner{}, err
	}
	p.Website = StringPtr(website)
	p.EmployeeCount = IntPtr(employeeCount)
	p.PartnershipStartDate = TimePtr(startDate)
	p.LastEngagement = TimePtr(lastEngagement)
	return p, nil
}

// GetPartnerByID retrieves a partner by ID.
func (s *service) GetPartnerByID(ctx context.Context, partnerID string) (models.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = $1`

	p, err := scanPartner(s.db.QueryRowContext(ctx, query, partnerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Partner{}, ErrDBNotFound
		}
		return models.Partner{}, fmt.Errorf("selecting partner: %w", err)
	}
	return p, nil
}

// CreatePartner inserts a new partner organization.
func (s *service) CreatePartner(ctx context.Context, np models.NewPartner) (models.Partner, error) {
	query := `
		INSERT INTO partners (
			id, name, partner_type, description, website, email, phone,
			address, city, state, country,
			primary_contact_name, primary_contact_email, primary_contact_phone,
			engagement_level, industry, employee_count, partnership_start_date, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING ` + partnerColumns

	level := np.EngagementLevel
	if level == "" {
		level = models.LevelProspective
	}

	p, err := scanPartner(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		np.Name,
		np.PartnerType,
		np.Description,
		NullString(np.Website),
		np.Email,
		np.Phone,
		np.Address,
		np.City,
		np.State,
		np.Country,
		np.PrimaryContactName,
		np.PrimaryContactEmail,
		np.PrimaryContactPhone,
		level,
		np.Industry,
		NullInt64(np.EmployeeCount),
		NullTime(np.PartnershipStartDate),
		np.Notes,
	))
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.Partner{}, terr
		}
		return models.Partner{}, fmt.Errorf("creating partner: %w", err)
	}
	return p, nil
}

// UpdatePartner applies a partial update and returns the updated partner.
func (s *service) UpdatePartner(ctx context.Context, partnerID string, patch models.PartnerPatch) (models.Partner, error) {
	query := `
		UPDATE partners SET
			name                   = COALESCE($2, name),
			partner_type           = COALESCE($3, partner_type),
			description            = COALESCE($4, description),
			website                = COALESCE($5, website),
			email                  = COALESCE($6, email),
			phone                  = COALESCE($7, phone),
			address                = COALESCE($8, address),
			city                   = COALESCE($9, city),
			state                  = COALESCE($10, state),
			country                = COALESCE($11, country),
			primary_contact_name   = COALESCE($12, primary_contact_name),
			primary_contact_email  = COALESCE($13, primary_contact_email),
			primary_contact_phone  = COALESCE($14, primary_contact_phone),
			engagement_level       = COALESCE($15, engagement_level),
			industry               = COALESCE($16, industry),
			employee_count         = COALESCE($17, employee_count),
			partnership_start_date = COALESCE($18, partnership_start_date),
			notes                  = COALESCE($19, notes),
			updated_at             = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + partnerColumns

	p, err := scanPartner(s.db.QueryRowContext(ctx, query,
		partnerID,
		NullString(patch.Name),
		NullString(patch.PartnerType),
		NullString(patch.Description),
		NullString(patch.Website),
		NullString(patch.Email),
		NullString(patch.Phone),
		NullString(patch.Address),
		NullString(patch.City),
		NullString(patch.State),
		NullString(patch.Country),
		NullString(patch.PrimaryContactName),
		NullString(patch.PrimaryContactEmail),
		NullString(patch.PrimaryContactPhone),
		NullString(patch.EngagementLevel),
		NullString(patch.Industry),
		NullInt64(patch.EmployeeCount),
		NullTime(patch.PartnershipStartDate),
		NullString(patch.Notes),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Partner{}, ErrDBNotFound
		}
		if terr := translateConstraint(err); terr != nil {
			return models.Partner{}, terr
		}
		return models.Partner{}, fmt.Errorf("updating partner: %w", err)
	}
	return p, nil
}

// DeletePartner removes a partner.
func (s *service) DeletePartner(ctx context.Context, partnerID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM partners WHERE id = $1`, partnerID)
	if err != nil {
		return fmt.Errorf("deleting partner: %w", err)
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

// ListPartners retrieves a filtered, paged list and the unpaged total.
func (s *service) ListPartners(ctx context.Context, f models.PartnerFilter) ([]models.Partner, int, error) {
	var where []string
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.PartnerType != "" {
		add(`partner_type = $%d`, f.PartnerType)
	}
	if f.EngagementLevel != "" {
		add(`engagement_level = $%d`, f.EngagementLevel)
	}
	if f.Industry != "" {
		add(`industry = $%d`, f.Industry)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(name ILIKE $%d OR email ILIKE $%d OR primary_contact_name ILIKE $%d OR industry ILIKE $%d)`,
			n, n, n, n))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM partners`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting partners: %w", err)
	}

	limit, offset := pageBounds(f.Page, f.PageSize)
	query := `SELECT ` + partnerColumns + ` FROM partners` + clause +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing partners: %w", err)
	}
	defer rows.Close()

	var partners []models.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning partner: %w", err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating partners: %w", err)
	}
	return partners, total, nil
}

// PartnerStatistics aggregates counts by type, level and industry.
func (s *service) PartnerStatistics(ctx context.Context) (models.PartnerStats, error) {
	stats := models.PartnerStats{
		ByType:     make(map[string]int),
		ByLevel:    make(map[string]int),
		ByIndustry: make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM partners`).Scan(&stats.Total); err != nil {
		return models.PartnerStats{}, fmt.Errorf("counting partners: %w", err)
	}

	if err := s.groupCount(ctx, `SELECT partner_type, COUNT(*) FROM partners GROUP BY partner_type`, stats.ByType); err != nil {
		return models.PartnerStats{}, err
	}
	if err := s.groupCount(ctx, `SELECT engagement_level, COUNT(*) FROM partners GROUP BY engagement_level`, stats.ByLevel); err != nil {
		return models.PartnerStats{}, err
	}
	if err := s.groupCount(ctx, `SELECT industry, COUNT(*) FROM partners WHERE industry <> '' GROUP BY industry`, stats.ByIndustry); err != nil {
		return models.PartnerStats{}, err
	}
	return stats, nil
}

// TopEngagedPartners lists partners ordered by engagement count.
func (s *service) TopEngagedPartners(ctx context.Context, limit int) ([]models.Partner, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	query := `
		SELECT ` + qualifiedPartnerColumns + `, COUNT(e.id) AS engagement_count
		FROM partners p
		LEFT JOIN engagements e ON e.partner_id = p.id
		GROUP BY p.id
		ORDER BY engagement_count DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing top partners: %w", err)
	}
	defer rows.Close()

	var partners []models.Partner
	for rows.Next() {
		p, err := scanPartnerWithCount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning top partner: %w", err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating top partners: %w", err)
	}
	return partners, nil
}

func scanPartnerWithCount(rows *sql.Rows) (models.Partner, error) {
	var p models.Partner
	var website sql.NullString
	var employeeCount sql.NullInt64
	var startDate, lastEngagement sql.NullTime
	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.PartnerType,
		&p.Description,
		&website,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.City,
		&p.State,
		&p.Country,
		&p.PrimaryContactName,
		&p.PrimaryContactEmail,
		&p.PrimaryContactPhone,
		&p.EngagementLevel,
		&p.Industry,
		&employeeCount,
		&startDate,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
		&lastEngagement,
		&p.EngagementCount,
	)
	if err != nil {
		return models.Partner{}, err
	}
	p.Website = StringPtr(website)
	p.EmployeeCount = IntPtr(employeeCount)
	p.PartnershipStartDate = TimePtr(startDate)
	p.LastEngagement = TimePtr(lastEngagement)
	return p, nil
}

// BulkSetPartnerLevel updates the engagement level of the given partners.
func (s *service) BulkSetPartnerLevel(ctx context.Context, level string, ids []string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE partners SET engagement_level = $1, updated_at = CURRENT_TIMESTAMP WHERE id = ANY($2)`,
		level, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk updating partner level: %w", err)
	}
	return result.RowsAffected()
}

// BulkDeletePartners removes the given partners and returns the number deleted.
func (s *service) BulkDeletePartners(ctx context.Context, ids []string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM partners WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk deleting partners: %w", err)
	}
	return result.RowsAffected()
}
