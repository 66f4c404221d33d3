package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/middleware"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/export"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
)

func (a *App) HandleListReports(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := models.ReportFilter{
		ReportType: c.Query("report_type"),
		Page:       page,
		PageSize:   pageSize,
	}

	list, total, err := a.db.ListReports(c.Request.Context(), filter)
	if err != nil {
		a.toSentry(c, "list_reports", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: total, Page: page, PageSize: pageSize, Results: list})
}

func (a *App) HandleGetReport(c *gin.Context) {
	report, err := a.db.GetReportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "get_report", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (a *App) HandleDeleteReport(c *gin.Context) {
	report, err := a.db.GetReportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "delete_report", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	if err := a.db.DeleteReport(c.Request.Context(), report.ID); err != nil {
		a.toSentry(c, "delete_report", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindReports, "Deleted", report.Title, nil)
	c.Status(http.StatusNoContent)
}

// generateReport computes and persists one report. The report type
// comes from the route, so dispatch is an exhaustive switch over the closed
// enum rather than a string passthrough.
func (a *App) generateReport(c *gin.Context, reportType models.ReportType) {
	if !models.ValidReportType(reportType) {
		writeError(c, ErrInvalidReportType, nil)
		return
	}

	var (
		title string
		data  any
		err   error
	)

	switch reportType {
	case models.ReportAlumniSummary:
		title = "Alumni Summary Report"
		data, err = a.db.AlumniStatistics(c.Request.Context())
	case models.ReportPartnerSummary:
		title = "Partner Summary Report"
		data, err = a.db.PartnerStatistics(c.Request.Context())
	case models.ReportEngagementAnalytics:
		title = "Engagement Analytics Report"
		data, err = a.db.EngagementStatistics(c.Request.Context())
	}
	if err != nil {
		a.toSentry(c, "generate_report", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		a.toSentry(c, "generate_report", "marshal", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	var generatedBy *string
	if actor, ok := middleware.CurrentUser(c); ok {
		id := actor.ID
		generatedBy = &id
	}

	report, err := a.db.CreateReport(c.Request.Context(), models.NewReport{
		Title:       title,
		ReportType:  reportType,
		Description: "Generated on " + time.Now().Format("2006-01-02"),
		Data:        payload,
		GeneratedBy: generatedBy,
	})
	if err != nil {
		a.toSentry(c, "generate_report", "db", sentry.LevelError, err)
		writeError(c, ErrPersist, nil)
		return
	}

	a.recordAudit(c, KindReports, "Created", report.Title, nil)
	c.JSON(http.StatusCreated, report)
}

func (a *App) HandleGenerateAlumniSummary(c *gin.Context) {
	a.generateReport(c, models.ReportAlumniSummary)
}

func (a *App) HandleGeneratePartnerSummary(c *gin.Context) {
	a.generateReport(c, models.ReportPartnerSummary)
}

func (a *App) HandleGenerateEngagementAnalytics(c *gin.Context) {
	a.generateReport(c, models.ReportEngagementAnalytics)
}

func (a *App) HandleReportPDF(c *gin.Context) {
	report, err := a.db.GetReportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "report_pdf", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieve, nil)
		return
	}

	pdf, err := export.RenderReportPDF(report)
	if err != nil {
		// A rendering failure is a clear 500, never a crashed pipeline.
		a.toSentry(c, "report_pdf", "render", sentry.LevelError, err)
		writeError(c, ErrRenderPDF, nil)
		return
	}

	filename := export.PDFFilename(report, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
