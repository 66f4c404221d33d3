package app

import (
	"net/mail"
	"strings"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

const minPasswordLength = 8

// curatedFieldsOfStudy is accepted verbatim; any other non-blank value is
// also accepted. Only blank/whitespace-only values are rejected.
var curatedFieldsOfStudy = map[string]bool{
	"Civil Engineering":                      true,
	"Computer Engineering":                   true,
	"Environmental and Sanitary Engineering": true,
	"Electronics Engineering":                true,
	"Electrical Engineering":                 true,
	"Mechanical Engineering":                 true,
}

func validFieldOfStudy(value string) bool {
	if curatedFieldsOfStudy[value] {
		return true
	}
	return strings.TrimSpace(value) != ""
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func validateRegisterInput(req RegisterRequest) (string, map[string]string) {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(req.Username) == "" {
		validationErrors["username"] = "username_required"
	}
	if strings.TrimSpace(req.Email) == "" {
		validationErrors["email"] = "email_required"
	}
	if req.Password == "" {
		validationErrors["password"] = "password_required"
	}
	if req.Password2 == "" {
		validationErrors["password2"] = "password_confirmation_required"
	}

	if len(validationErrors) > 0 {
		return ErrMissingFields, validationErrors
	}

	if !validEmail(req.Email) {
		validationErrors["email"] = "invalid_email_format"
	}
	if len(req.Password) < minPasswordLength {
		validationErrors["password"] = "password_too_short"
	}
	if req.Password != req.Password2 {
		validationErrors["password2"] = "passwords_do_not_match"
	}

	if len(validationErrors) == 0 {
		return "", nil
	}

	if _, ok := validationErrors["password"]; ok {
		return ErrPasswordTooShort, validationErrors
	}
	if _, ok := validationErrors["password2"]; ok {
		return ErrPasswordMismatch, validationErrors
	}
	return ErrValidation, validationErrors
}

func validateLoginInput(req LoginRequest) map[string]string {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(req.Username) == "" {
		validationErrors["username"] = "username_required"
	}
	if req.Password == "" {
		validationErrors["password"] = "password_required"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

func validateChangePasswordInput(req ChangePasswordRequest) (string, map[string]string) {
	validationErrors := make(map[string]string)

	if req.CurrentPassword == "" {
		validationErrors["current_password"] = "current_password_required"
	}
	if req.NewPassword == "" {
		validationErrors["new_password"] = "new_password_required"
	}
	if req.NewPassword2 == "" {
		validationErrors["new_password2"] = "password_confirmation_required"
	}
	if len(validationErrors) > 0 {
		return ErrMissingFields, validationErrors
	}

	if len(req.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort, map[string]string{"new_password": "password_too_short"}
	}
	if req.NewPassword != req.NewPassword2 {
		return ErrPasswordMismatch, map[string]string{"new_password2": "passwords_do_not_match"}
	}
	return "", nil
}

func validateAccountPatch(req AccountPatchRequest) map[string]string {
	validationErrors := make(map[string]string)

	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		validationErrors["username"] = "username_required"
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			validationErrors["email"] = "email_required"
		} else if !validEmail(*req.Email) {
			validationErrors["email"] = "invalid_email_format"
		}
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

func validateNewAlumnus(na models.NewAlumnus) map[string]string {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(na.FirstName) == "" {
		validationErrors["first_name"] = "first_name_required"
	}
	if strings.TrimSpace(na.LastName) == "" {
		validationErrors["last_name"] = "last_name_required"
	}
	if strings.TrimSpace(na.Email) == "" {
		validationErrors["email"] = "email_required"
	} else if !validEmail(na.Email) {
		validationErrors["email"] = "invalid_email_format"
	}
	if !validFieldOfStudy(na.FieldOfStudy) {
		validationErrors["field_of_study"] = "field_of_study_required"
	}
	if na.Status != "" && !models.ValidAlumnusStatus(na.Status) {
		validationErrors["status"] = "invalid_status"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

func validateAlumnusPatch(patch models.AlumnusPatch) map[string]string {
	validationErrors := make(map[string]string)

	if patch.Email != nil && !validEmail(*patch.Email) {
		validationErrors["email"] = "invalid_email_format"
	}
	if patch.FieldOfStudy != nil && !validFieldOfStudy(*patch.FieldOfStudy) {
		validationErrors["field_of_study"] = "field_of_study_required"
	}
	if patch.Status != nil && !models.ValidAlumnusStatus(*patch.Status) {
		validationErrors["status"] = "invalid_status"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

func validateNewPartner(np models.NewPartner) map[string]string {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(np.Name) == "" {
		validationErrors["name"] = "name_required"
	}
	if !models.ValidPartnerType(np.PartnerType) {
		validationErrors["partner_type"] = "invalid_partner_type"
	}
	if np.EngagementLevel != "" && !models.ValidEngagementLevel(np.EngagementLevel) {
		validationErrors["engagement_level"] = "invalid_engagement_level"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

func validatePartnerPatch(patch models.PartnerPatch) map[string]string {
	validationErrors := make(map[string]string)

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		validationErrors["name"] = "name_required"
	}
	if patch.PartnerType != nil && !models.ValidPartnerType(*patch.PartnerType) {
		validationErrors["partner_type"] = "invalid_partner_type"
	}
	if patch.EngagementLevel != nil && !models.ValidEngagementLevel(*patch.EngagementLevel) {
		validationErrors["engagement_level"] = "invalid_engagement_level"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

func validateNewEngagement(ne models.NewEngagement) map[string]string {
	validationErrors := make(map[string]string)

	if ne.AlumnusID == "" {
		validationErrors["alumni_id"] = "alumni_id_required"
	}
	if ne.PartnerID == "" {
		validationErrors["partner_id"] = "partner_id_required"
	}
	if !models.ValidEngagementType(ne.EngagementType) {
		validationErrors["engagement_type"] = "invalid_engagement_type"
	}
	if ne.EngagementDate.IsZero() {
		validationErrors["engagement_date"] = "engagement_date_required"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}
