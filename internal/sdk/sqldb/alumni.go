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

const alumniColumns = `
	id,
	user_id,
	first_name,
	last_name,
	email,
	phone,
	degree,
	field_of_study,
	graduation_year,
	current_company,
	job_title,
	industry,
	status,
	linkedin_url,
	bio,
	created_at,
	updated_at,
	last_engagement
`

func scanAlumnus(row interface{ Scan(...any) error }) (models.Alumnus, error) {
	var a models.Alumnus
	var userID, phone, linkedin sql.NullString
	var lastEngagement sql.NullTime
	err := row.Scan(
		&a.ID,
		&userID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&phone,
		&a.Degree,
		&a.FieldOfStudy,
		&a.GraduationYear,
		&a.CurrentCompany,
		&a.JobTitle,
		&a.Industry,
		&a.Status,
		&linkedin,
		&a.Bio,
		&a.CreatedAt,
		&a.UpdatedAt,
		&lastEngagement,
	)
	if err != nil {
		return models.Alumnus{}, err
	}
	a.UserID = StringPtr(userID)
	a.Phone = StringPtr(phone)
	a.LinkedinURL = StringPtr(linkedin)
	a.LastEngagement = TimePtr(lastEngagement)
	return a, nil
}

// GetAlumnusByID retrieves an alumnus profile by ID.
func (s *service) GetAlumnusByID(ctx context.Context, alumnusID string) (models.Alumnus, error) {
	query := `SELECT ` + alumniColumns + ` FROM alumni WHERE id = $1`

	a, err := scanAlumnus(s.db.QueryRowContext(ctx, query, alumnusID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Alumnus{}, ErrDBNotFound
		}
		return models.Alumnus{}, fmt.Errorf("selecting alumnus: %w", err)
	}
	return a, nil
}

// GetAlumnusByUserID retrieves the profile linked to the given account.
func (s *service) GetAlumnusByUserID(ctx context.Context, userID string) (models.Alumnus, error) {
	query := `SELECT ` + alumniColumns + ` FROM alumni WHERE user_id = $1`

	a, err := scanAlumnus(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Alumnus{}, ErrDBNotFound
		}
		return models.Alumnus{}, fmt.Errorf("selecting alumnus by user: %w", err)
	}
	return a, nil
}

// AlumnusExistsForUser reports whether the account already has a linked profile.
func (s *service) AlumnusExistsForUser(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM alumni WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking alumnus existence: %w", err)
	}
	return exists, nil
}

// CreateAlumnus inserts a new alumnus profile.
func (s *service) CreateAlumnus(ctx context.Context, na models.NewAlumnus) (models.Alumnus, error) {
	query := `
		INSERT INTO alumni (
			id, user_id, first_name, last_name, email, phone,
			degree, field_of_study, graduation_year,
			current_company, job_title, industry,
			status, linkedin_url, bio
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + alumniColumns

	status := na.Status
	if status == "" {
		status = models.StatusActive
	}

	a, err := scanAlumnus(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		NullString(na.UserID),
		na.FirstName,
		na.LastName,
		na.Email,
		NullString(na.Phone),
		na.Degree,
		na.FieldOfStudy,
		na.GraduationYear,
		na.CurrentCompany,
		na.JobTitle,
		na.Industry,
		status,
		NullString(na.LinkedinURL),
		na.Bio,
	))
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.Alumnus{}, terr
		}
		return models.Alumnus{}, fmt.Errorf("creating alumnus: %w", err)
	}
	return a, nil
}

// UpdateAlumnus applies a partial update and returns the updated profile.
func (s *service) UpdateAlumnus(ctx context.Context, alumnusID string, patch models.AlumnusPatch) (models.Alumnus, error) {
	query := `
		UPDATE alumni SET
			first_name      = COALESCE($2, first_name),
			last_name       = COALESCE($3, last_name),
			email           = COALESCE($4, email),
			phone           = COALESCE($5, phone),
			degree          = COALESCE($6, degree),
			field_of_study  = COALESCE($7, field_of_study),
			graduation_year = COALESCE($8, graduation_year),
			current_company = COALESCE($9, current_company),
			job_title       = COALESCE($10, job_title),
			industry        = COALESCE($11, industry),
			status          = COALESCE($12, status),
			linkedin_url    = COALESCE($13, linkedin_url),
			bio             = COALESCE($14, bio),
			updated_at      = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + alumniColumns

	a, err := scanAlumnus(s.db.QueryRowContext(ctx, query,
		alumnusID,
		NullString(patch.FirstName),
		NullString(patch.LastName),
		NullString(patch.Email),
		NullString(patch.Phone),
		NullString(patch.Degree),
		NullString(patch.FieldOfStudy),
		NullInt64(patch.GraduationYear),
		NullString(patch.CurrentCompany),
		NullString(patch.JobTitle),
		NullString(patch.Industry),
		NullString(patch.Status),
		NullString(patch.LinkedinURL),
		NullString(patch.Bio),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Alumnus{}, ErrDBNotFound
		}
		if terr := translateConstraint(err); terr != nil {
			return models.Alumnus{}, terr
		}
		return models.Alumnus{}, fmt.Errorf("updating alumnus: %w", err)
	}
	return a, nil
}

// DeleteAlumnus removes an alumnus profile.
func (s *service) DeleteAlumnus(ctx context.Context, alumnusID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM alumni WHERE id = $1`, alumnusID)
	if err != nil {
		return fmt.Errorf("deleting alumnus: %w", err)
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

// ListAlumni retrieves a filtered, paged list and the unpaged total.
func (s *service) ListAlumni(ctx context.Context, f models.AlumniFilter) ([]models.Alumnus, int, error) {
	var where []string
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.Status != "" {
		add(`status = $%d`, f.Status)
	}
	if f.Degree != "" {
		add(`degree = $%d`, f.Degree)
	}
	if f.GraduationYear != 0 {
		add(`graduation_year = $%d`, f.GraduationYear)
	}
	if f.GraduationYearMin != 0 {
		add(`graduation_year >= $%d`, f.GraduationYearMin)
	}
	if f.GraduationYearMax != 0 {
		add(`graduation_year <= $%d`, f.GraduationYearMax)
	}
	if f.Industry != "" {
		add(`industry = $%d`, f.Industry)
	}
	if f.Company != "" {
		add(`current_company ILIKE $%d`, "%"+f.Company+"%")
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR current_company ILIKE $%d)`,
			n, n, n, n))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alumni`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting alumni: %w", err)
	}

	limit, offset := pageBounds(f.Page, f.PageSize)
	query := `SELECT ` + alumniColumns + ` FROM alumni` + clause +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing alumni: %w", err)
	}
	defer rows.Close()

	var alumni []models.Alumnus
	for rows.Next() {
		a, err := scanAlumnus(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning alumnus: %w", err)
		}
		alumni = append(alumni, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating alumni: %w", err)
	}
	return alumni, total, nil
}

// AlumniStatistics aggregates counts by degree, year and industry.
func (s *service) AlumniStatistics(ctx context.Context) (models.AlumniStats, error) {
	stats := models.AlumniStats{
		ByDegree:   make(map[string]int),
		ByYear:     make(map[string]int),
		ByIndustry: make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'active') FROM alumni`,
	).Scan(&stats.Total, &stats.Active)
	if err != nil {
		return models.AlumniStats{}, fmt.Errorf("counting alumni: %w", err)
	}

	if err := s.groupCount(ctx, `SELECT degree, COUNT(*) FROM alumni GROUP BY degree`, stats.ByDegree); err != nil {
		return models.AlumniStats{}, err
	}
	if err := s.groupCount(ctx, `SELECT graduation_year::text, COUNT(*) FROM alumni GROUP BY graduation_year`, stats.ByYear); err != nil {
		return models.AlumniStats{}, err
	}
	if err := s.groupCount(ctx, `SELECT industry, COUNT(*) FROM alumni WHERE industry <> '' GROUP BY industry`, stats.ByIndustry); err != nil {
		return models.AlumniStats{}, err
	}
	return stats, nil
}

// BulkSetAlumniStatus updates the status of every matching row and returns
// the number updated. Rows are matched by ids when given, otherwise by the
// current status. One of the two selectors must be supplied.
func (s *service) BulkSetAlumniStatus(ctx context.Context, matchStatus, newStatus string, ids []string) (int64, error) {
	var result sql.Result
	var err error
	switch {
	case len(ids) > 0:
		result, err = s.db.ExecContext(ctx,
			`UPDATE alumni SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = ANY($2)`,
			newStatus, ids)
	case matchStatus != "":
		result, err = s.db.ExecContext(ctx,
			`UPDATE alumni SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE status = $2`,
			newStatus, matchStatus)
	default:
		return 0, errors.New("bulk status update requires ids or a status filter")
	}
	if err != nil {
		return 0, fmt.Errorf("bulk updating alumni status: %w", err)
	}
	return result.RowsAffected()
}

// BulkDeleteAlumni removes the given rows and returns the number deleted.
func (s *service) BulkDeleteAlumni(ctx context.Context, ids []string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM alumni WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk deleting alumni: %w", err)
	}
	return result.RowsAffected()
}

// groupCount fills dest from a "key, count" aggregate query.
func (s *service) groupCount(ctx context.Context, query string, dest map[string]int) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("grouping counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scanning group count: %w", err)
		}
		dest[key] = count
	}
	return rows.Err()
}

// pageBounds clamps pagination to sane limits.
func pageBounds(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
