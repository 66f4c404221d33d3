package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

const reportColumns = `
	id,
	title,
	report_type,
	description,
	data,
	generated_by,
	created_at,
	updated_at
`

func scanReport(row interface{ Scan(...any) error }) (models.Report, error) {
	var r models.Report
	var generatedBy sql.NullString
	var data []byte
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.ReportType,
		&r.Description,
		&data,
		&generatedBy,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return models.Report{}, err
	}
	r.Data = data
	r.GeneratedBy = StringPtr(generatedBy)
	return r, nil
}

// CreateReport persists a generated report snapshot.
func (s *service) CreateReport(ctx context.Context, nr models.NewReport) (models.Report, error) {
	query := `
		INSERT INTO reports (id, title, report_type, description, data, generated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + reportColumns

	data := nr.Data
	if len(data) == 0 {
		data = []byte(`{}`)
	}

	r, err := scanReport(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		nr.Title,
		string(nr.ReportType),
		nr.Description,
		[]byte(data),
		NullString(nr.GeneratedBy),
	))
	if err != nil {
		if terr := translateConstraint(err); terr != nil {
			return models.Report{}, terr
		}
		return models.Report{}, fmt.Errorf("creating report: %w", err)
	}
	return r, nil
}

// GetReportByID retrieves a report by ID.
func (s *service) GetReportByID(ctx context.Context, reportID string) (models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	r, err := scanReport(s.db.QueryRowContext(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Report{}, ErrDBNotFound
		}
		return models.Report{}, fmt.Errorf("selecting report: %w", err)
	}
	return r, nil
}

// ListReports retrieves a filtered, paged list and the unpaged total.
func (s *service) ListReports(ctx context.Context, f models.ReportFilter) ([]models.Report, int, error) {
	clause := ""
	var args []any
	if f.ReportType != "" {
		clause = ` WHERE report_type = $1`
		args = append(args, f.ReportType)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting reports: %w", err)
	}

	limit, offset := pageBounds(f.Page, f.PageSize)
	query := `SELECT ` + reportColumns + ` FROM reports` + clause +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, total, nil
}

// DeleteReport removes a report.
func (s *service) DeleteReport(ctx context.Context, reportID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
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
