package app

import (
	"time"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	NewPassword2    string `json:"new_password2"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token     string `json:"token"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type AccountPatchRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type BulkActionRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
	Status string   `json:"status,omitempty"`
}

// RecordEngagementRequest is the record-engagement body. The record-side ID
// comes from the URL, so only the counterpart ID is read. Unlike the generic
// create, engagement_date is required.
type RecordEngagementRequest struct {
	PartnerID      string     `json:"partner_id,omitempty"`
	AlumnusID      string     `json:"alumni_id,omitempty"`
	EngagementType string     `json:"engagement_type"`
	Description    string     `json:"description"`
	EngagementDate *time.Time `json:"engagement_date"`
	Notes          string     `json:"notes"`
}

type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  u.DateJoined,
		LastLogin:   u.LastLogin,
	}
}

// AuthResponse is the shared register/login/current-user payload. Alumni is
// null when the account has no linked profile.
type AuthResponse struct {
	Token  string          `json:"token,omitempty"`
	User   UserResponse    `json:"user"`
	Alumni *models.Alumnus `json:"alumni"`
}

// ListResponse wraps any paged listing.
type ListResponse struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  any `json:"results"`
}

type BulkActionResponse struct {
	Action  string `json:"action"`
	Updated int64  `json:"updated"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type LivenessResponse struct {
	Status     string `json:"status"`
	Host       string `json:"host"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}
