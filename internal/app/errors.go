package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ErrUnmarshal          = "invalid_request_body"
	ErrMissingFields      = "missing_required_fields"
	ErrValidation         = "validation_failed"
	ErrPasswordTooShort   = "password_too_short"
	ErrPasswordMismatch   = "password_mismatch"
	ErrWrongPassword      = "incorrect_current_password"
	ErrUserExists         = "user_already_exists"
	ErrInvalidCredentials = "invalid_credentials"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrNotFound           = "not_found"
	ErrProfileNotFound    = "profile_not_found"
	ErrProfileExists      = "profile_exists"
	ErrInvalidBulkAction  = "invalid_bulk_action"
	ErrInvalidReportType  = "invalid_report_type"
	ErrInvalidExportType  = "invalid_export_type"
	ErrInvalidResetToken  = "invalid_reset_token"
	ErrExpiredResetToken  = "expired_reset_token"
	ErrHashPassword       = "internal_hash_error"
	ErrCreateUser         = "internal_create_user_error"
	ErrProcessLogin       = "internal_login_error"
	ErrGenerateToken      = "internal_generate_token_error"
	ErrCreateSession      = "internal_create_session_error"
	ErrRetrieve           = "internal_retrieve_error"
	ErrPersist            = "internal_persist_error"
	ErrCreateResetToken   = "internal_reset_token_error"
	ErrSendResetEmail     = "internal_send_email_error"
	ErrRenderPDF          = "internal_pdf_render_error"
	ErrExportData         = "internal_export_error"
)

var errorStatusMap = map[string]int{
	ErrUnmarshal:          http.StatusBadRequest,
	ErrMissingFields:      http.StatusBadRequest,
	ErrValidation:         http.StatusBadRequest,
	ErrPasswordTooShort:   http.StatusBadRequest,
	ErrPasswordMismatch:   http.StatusBadRequest,
	ErrWrongPassword:      http.StatusBadRequest,
	ErrUserExists:         http.StatusBadRequest,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrNotFound:           http.StatusNotFound,
	ErrProfileNotFound:    http.StatusNotFound,
	ErrProfileExists:      http.StatusConflict,
	ErrInvalidBulkAction:  http.StatusBadRequest,
	ErrInvalidReportType:  http.StatusBadRequest,
	ErrInvalidExportType:  http.StatusBadRequest,
	ErrInvalidResetToken:  http.StatusBadRequest,
	ErrExpiredResetToken:  http.StatusBadRequest,
	ErrHashPassword:       http.StatusInternalServerError,
	ErrCreateUser:         http.StatusInternalServerError,
	ErrProcessLogin:       http.StatusInternalServerError,
	ErrGenerateToken:      http.StatusInternalServerError,
	ErrCreateSession:      http.StatusInternalServerError,
	ErrRetrieve:           http.StatusInternalServerError,
	ErrPersist:            http.StatusInternalServerError,
	ErrCreateResetToken:   http.StatusInternalServerError,
	ErrSendResetEmail:     http.StatusInternalServerError,
	ErrRenderPDF:          http.StatusInternalServerError,
	ErrExportData:         http.StatusInternalServerError,
}

func statusForError(code string) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, code string, details map[string]string) {
	c.JSON(statusForError(code), ErrorResponse{Error: code, Details: details})
}
