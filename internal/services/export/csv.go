// Package export renders directory data to CSV and stored reports to PDF.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

// Column headers for each exportable data set.
var (
	AlumniColumns = []string{
		"ID", "First Name", "Last Name", "Email", "Phone", "Degree",
		"Field of Study", "Graduation Year", "Current Company", "Job Title",
		"Industry", "Status", "Created At",
	}
	PartnerColumns = []string{
		"ID", "Name", "Partner Type", "Email", "Phone", "City", "Country",
		"Engagement Level", "Industry", "Primary Contact Name",
		"Primary Contact Email", "Created At",
	}
	EngagementColumns = []string{
		"ID", "Alumnus", "Partner", "Engagement Type", "Description",
		"Engagement Date", "Created At",
	}
)

const dateLayout = "2006-01-02"

// WriteAlumniCSV writes the alumni rows with a header line.
func WriteAlumniCSV(w io.Writer, rows []models.Alumnus) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AlumniColumns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, a := range rows {
		rec := []string{
			a.ID,
			a.FirstName,
			a.LastName,
			a.Email,
			strDeref(a.Phone),
			a.Degree,
			a.FieldOfStudy,
			strconv.Itoa(a.GraduationYear),
			a.CurrentCompany,
			a.JobTitle,
			a.Industry,
			a.Status,
			a.CreatedAt.Format(dateLayout),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePartnersCSV writes the partner rows with a header line.
func WritePartnersCSV(w io.Writer, rows []models.Partner) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PartnerColumns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, p := range rows {
		rec := []string{
			p.ID,
			p.Name,
			p.PartnerType,
			p.Email,
			p.Phone,
			p.City,
			p.Country,
			p.EngagementLevel,
			p.Industry,
			p.PrimaryContactName,
			p.PrimaryContactEmail,
			p.CreatedAt.Format(dateLayout),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteEngagementsCSV writes the engagement rows with a header line.
func WriteEngagementsCSV(w io.Writer, rows []models.Engagement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EngagementColumns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, e := range rows {
		rec := []string{
			e.ID,
			e.AlumnusName,
			e.PartnerName,
			e.EngagementType,
			e.Description,
			e.EngagementDate.Format(dateLayout),
			e.CreatedAt.Format(dateLayout),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns the attachment filename for an export, stamped with the
// current date.
func Filename(dataType string, now time.Time) string {
	return fmt.Sprintf("%s_export_%s.csv", dataType, now.Format("20060102"))
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
