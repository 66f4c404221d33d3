package app

import (
	"net/http"
	"strings"
	"testing"

	"github.com/jvtaylar/alumni-partner-db/internal/services/session"
)

func TestHandleRegister(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()

	body := RegisterRequest{
		Username:  "grace",
		Email:     "grace@example.com",
		Password:  "correct horse",
		Password2: "correct horse",
		FirstName: "Grace",
		LastName:  "Hopper",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[AuthResponse](t, rec)
	if resp.Token == "" {
		t.Error("response carries no token")
	}
	if resp.User.Username != "grace" || resp.User.Email != "grace@example.com" {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.Alumni != nil {
		t.Error("fresh account has a linked profile")
	}

	// The issued token authenticates immediately.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/user", resp.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("token auth status = %d", rec.Code)
	}
}

func TestHandleRegisterValidation(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()

	tests := []struct {
		name    string
		body    RegisterRequest
		errCode string
	}{
		{
			name:    "missing fields",
			body:    RegisterRequest{Username: "grace"},
			errCode: ErrMissingFields,
		},
		{
			name: "short password",
			body: RegisterRequest{
				Username: "grace", Email: "grace@example.com",
				Password: "short", Password2: "short",
			},
			errCode: ErrPasswordTooShort,
		},
		{
			name: "password mismatch",
			body: RegisterRequest{
				Username: "grace", Email: "grace@example.com",
				Password: "correct horse", Password2: "wrong horse",
			},
			errCode: ErrPasswordMismatch,
		},
		{
			name: "bad email",
			body: RegisterRequest{
				Username: "grace", Email: "not-an-email",
				Password: "correct horse", Password2: "correct horse",
			},
			errCode: ErrValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Error != tc.errCode {
				t.Errorf("error = %q, want %q", resp.Error, tc.errCode)
			}
		})
	}
}

func TestHandleRegisterDuplicate(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	seedUser(t, store, "grace", "grace@example.com", "correct horse", true, false)

	body := RegisterRequest{
		Username: "GRACE", Email: "other@example.com",
		Password: "correct horse", Password2: "correct horse",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Error != ErrUserExists {
		t.Errorf("error = %q, want %q", resp.Error, ErrUserExists)
	}
	if resp.Details["username"] != "username_already_exists" {
		t.Errorf("details = %v", resp.Details)
	}
}

func TestHandleLogin(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	seedUser(t, store, "grace", "grace@example.com", "correct horse", true, false)

	variants := []struct {
		name       string
		identifier string
		password   string
	}{
		{"exact username", "grace", "correct horse"},
		{"uppercase username", "GRACE", "correct horse"},
		{"email", "Grace@Example.com", "correct horse"},
		{"padded password", "grace", " correct horse "},
	}

	var firstToken string
	for _, tc := range variants {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
				LoginRequest{Username: tc.identifier, Password: tc.password})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			resp := decodeBody[AuthResponse](t, rec)
			if resp.Token == "" {
				t.Fatal("response carries no token")
			}
			if firstToken == "" {
				firstToken = resp.Token
			} else if resp.Token != firstToken {
				// One token per account, stable across logins.
				t.Errorf("token changed across logins: %q vs %q", resp.Token, firstToken)
			}

			var sessionCookie bool
			for _, c := range rec.Result().Cookies() {
				if c.Name == session.CookieName && c.Value != "" {
					sessionCookie = true
				}
			}
			if !sessionCookie {
				t.Error("login set no session cookie")
			}
		})
	}
}

func TestHandleLoginRejections(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	seedUser(t, store, "grace", "grace@example.com", "correct horse", true, false)
	seedUser(t, store, "retired", "retired@example.com", "correct horse", false, false)

	rejected := []struct {
		name       string
		identifier string
		password   string
	}{
		{"wrong password", "grace", "wrong horse"},
		{"unknown account", "nobody", "correct horse"},
		{"inactive account", "retired", "correct horse"},
		{"inactive via email", "retired@example.com", "correct horse"},
		{"whitespace password", "grace", "   "},
	}

	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
				LoginRequest{Username: tc.identifier, Password: tc.password})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			// Every failure mode gets the same generic answer.
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Error != ErrInvalidCredentials {
				t.Errorf("error = %q, want %q", resp.Error, ErrInvalidCredentials)
			}
			if len(resp.Details) != 0 {
				t.Errorf("details leak information: %v", resp.Details)
			}
		})
	}
}

func TestHandleLoginMissingFields(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
		LoginRequest{Username: "grace"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Details["password"] != "password_required" {
		t.Errorf("details = %v", resp.Details)
	}
}

func TestHandleLogoutRevokesToken(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	user := seedUser(t, store, "grace", "grace@example.com", "correct horse", true, false)
	seedToken(store, user.ID, "tok-grace")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", "tok-grace", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// The revoked token no longer authenticates.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/user", "tok-grace", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token status = %d", rec.Code)
	}
}

func TestHandleCurrentUser(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	user := seedUser(t, store, "grace", "grace@example.com", "correct horse", true, false)
	seedToken(store, user.ID, "tok-grace")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/user", "tok-grace", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[AuthResponse](t, rec)
	if resp.User.ID != user.ID {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.Token != "" {
		t.Error("current-user response must not reissue the token")
	}
	if !strings.Contains(rec.Body.String(), `"alumni":null`) {
		t.Errorf("alumni field missing or non-null: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/user", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}
}
