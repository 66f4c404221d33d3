package app

import (
	"testing"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

func TestValidFieldOfStudy(t *testing.T) {
	accepted := []string{
		"Civil Engineering",
		"Computer Engineering",
		"Environmental and Sanitary Engineering",
		"Electronics Engineering",
		"Electrical Engineering",
		"Mechanical Engineering",
		"Naval Mathematics", // anything non-blank passes
	}
	for _, v := range accepted {
		if !validFieldOfStudy(v) {
			t.Errorf("validFieldOfStudy(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "   ", "\t"} {
		if validFieldOfStudy(v) {
			t.Errorf("validFieldOfStudy(%q) = true, want false", v)
		}
	}
}

func TestValidateRegisterInputPrecedence(t *testing.T) {
	// Missing fields win over format checks.
	code, details := validateRegisterInput(RegisterRequest{Email: "bad", Password: "x"})
	if code != ErrMissingFields {
		t.Fatalf("code = %q, want %q", code, ErrMissingFields)
	}
	if details["username"] != "username_required" || details["password2"] != "password_confirmation_required" {
		t.Errorf("details = %v", details)
	}

	// A short password outranks a mismatch.
	code, _ = validateRegisterInput(RegisterRequest{
		Username: "grace", Email: "grace@example.com",
		Password: "short", Password2: "different",
	})
	if code != ErrPasswordTooShort {
		t.Fatalf("code = %q, want %q", code, ErrPasswordTooShort)
	}

	code, details = validateRegisterInput(RegisterRequest{
		Username: "grace", Email: "grace@example.com",
		Password: "long enough", Password2: "but different",
	})
	if code != ErrPasswordMismatch || details["password2"] != "passwords_do_not_match" {
		t.Fatalf("code = %q, details = %v", code, details)
	}

	if code, _ := validateRegisterInput(RegisterRequest{
		Username: "grace", Email: "grace@example.com",
		Password: "correct horse", Password2: "correct horse",
	}); code != "" {
		t.Fatalf("valid input rejected with %q", code)
	}
}

func TestValidateNewPartner(t *testing.T) {
	if errs := validateNewPartner(models.NewPartner{Name: "Acme", PartnerType: models.PartnerCorporate}); len(errs) != 0 {
		t.Fatalf("valid partner rejected: %v", errs)
	}

	errs := validateNewPartner(models.NewPartner{Name: " ", PartnerType: "franchise", EngagementLevel: "platinum"})
	if errs["name"] != "name_required" {
		t.Errorf("name error = %q", errs["name"])
	}
	if errs["partner_type"] != "invalid_partner_type" {
		t.Errorf("partner_type error = %q", errs["partner_type"])
	}
	if errs["engagement_level"] != "invalid_engagement_level" {
		t.Errorf("engagement_level error = %q", errs["engagement_level"])
	}
}

func TestValidateNewEngagement(t *testing.T) {
	errs := validateNewEngagement(models.NewEngagement{EngagementType: "golf"})
	for _, field := range []string{"alumni_id", "partner_id", "engagement_type", "engagement_date"} {
		if errs[field] == "" {
			t.Errorf("no error for %s: %v", field, errs)
		}
	}
}

func TestValidateAlumnusPatch(t *testing.T) {
	bad := "not-an-email"
	status := "graduated"
	errs := validateAlumnusPatch(models.AlumnusPatch{Email: &bad, Status: &status})
	if errs["email"] != "invalid_email_format" || errs["status"] != "invalid_status" {
		t.Errorf("errs = %v", errs)
	}

	if errs := validateAlumnusPatch(models.AlumnusPatch{}); len(errs) != 0 {
		t.Errorf("empty patch rejected: %v", errs)
	}
}
