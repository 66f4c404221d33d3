package app

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

func seedAlumnus(store *fakeStore, firstName, lastName, status string) models.Alumnus {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.seq++
	a := models.Alumnus{
		ID:           fmt.Sprintf("alum-%d", store.seq),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        strings.ToLower(firstName) + "@example.com",
		FieldOfStudy: "Computer Engineering",
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	store.alumni[a.ID] = a
	return a
}

func TestAlumniBulkAction(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")

	a1 := seedAlumnus(store, "Grace", "Hopper", models.StatusInactive)
	a2 := seedAlumnus(store, "Ada", "Lovelace", models.StatusInactive)
	a3 := seedAlumnus(store, "Alan", "Turing", models.StatusInactive)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/alumni/bulk-action", "tok-root",
		BulkActionRequest{Action: BulkActivate, IDs: []string{a1.ID, a2.ID, a3.ID}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[BulkActionResponse](t, rec)
	if resp.Action != BulkActivate || resp.Updated != 3 {
		t.Errorf("response = %+v", resp)
	}
	for _, id := range []string{a1.ID, a2.ID, a3.ID} {
		if store.alumni[id].Status != models.StatusActive {
			t.Errorf("alumnus %s status = %q", id, store.alumni[id].Status)
		}
	}

	// One audit entry for the whole batch, count folded into the title.
	if len(store.audits) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(store.audits))
	}
	if store.audits[0].Title != "Alumni Bulk Action: activate (3 records)" {
		t.Errorf("audit title = %q", store.audits[0].Title)
	}
}

func TestAlumniBulkActionByStatus(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")

	a1 := seedAlumnus(store, "Grace", "Hopper", models.StatusInactive)
	a2 := seedAlumnus(store, "Ada", "Lovelace", models.StatusInactive)
	active := seedAlumnus(store, "Alan", "Turing", models.StatusActive)
	lost := seedAlumnus(store, "Edsger", "Dijkstra", models.StatusLostContact)

	// No explicit ids: every currently inactive row is the target.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/alumni/bulk-action", "tok-root",
		BulkActionRequest{Action: BulkActivate, Status: models.StatusInactive})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[BulkActionResponse](t, rec)
	if resp.Updated != 2 {
		t.Errorf("updated = %d, want 2", resp.Updated)
	}
	for _, id := range []string{a1.ID, a2.ID} {
		if store.alumni[id].Status != models.StatusActive {
			t.Errorf("alumnus %s status = %q", id, store.alumni[id].Status)
		}
	}
	if store.alumni[active.ID].Status != models.StatusActive {
		t.Errorf("active alumnus status = %q", store.alumni[active.ID].Status)
	}
	if store.alumni[lost.ID].Status != models.StatusLostContact {
		t.Errorf("lost-contact alumnus status = %q", store.alumni[lost.ID].Status)
	}

	if len(store.audits) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(store.audits))
	}
	if store.audits[0].Title != "Alumni Bulk Action: activate (2 records)" {
		t.Errorf("audit title = %q", store.audits[0].Title)
	}
}

func TestAlumniBulkActionRequiresSelector(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")
	a := seedAlumnus(store, "Grace", "Hopper", models.StatusInactive)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/alumni/bulk-action", "tok-root",
		BulkActionRequest{Action: BulkActivate})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Error != ErrValidation || resp.Details["ids"] != "ids_or_status_required" {
		t.Errorf("response = %+v", resp)
	}
	if store.alumni[a.ID].Status != models.StatusInactive {
		t.Errorf("selector-less action mutated status to %q", store.alumni[a.ID].Status)
	}
	if len(store.audits) != 0 {
		t.Errorf("rejected action recorded %d audit entries", len(store.audits))
	}
}

func TestAlumniBulkActionRejectsUnknown(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")
	a := seedAlumnus(store, "Grace", "Hopper", models.StatusActive)

	for _, action := range []string{"promote", "set_gold", ""} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/alumni/bulk-action", "tok-root",
			BulkActionRequest{Action: action, IDs: []string{a.ID}})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("action %q status = %d, want 400", action, rec.Code)
			continue
		}
		resp := decodeBody[ErrorResponse](t, rec)
		if resp.Error != ErrInvalidBulkAction {
			t.Errorf("action %q error = %q", action, resp.Error)
		}
	}
	if len(store.audits) != 0 {
		t.Errorf("rejected actions recorded %d audit entries", len(store.audits))
	}
	if store.alumni[a.ID].Status != models.StatusActive {
		t.Errorf("rejected action mutated status to %q", store.alumni[a.ID].Status)
	}
}

func TestAlumniBulkDelete(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")

	a1 := seedAlumnus(store, "Grace", "Hopper", models.StatusActive)
	seedAlumnus(store, "Ada", "Lovelace", models.StatusActive)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/alumni/bulk-action", "tok-root",
		BulkActionRequest{Action: BulkDelete, IDs: []string{a1.ID, "alum-missing"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[BulkActionResponse](t, rec)
	if resp.Updated != 1 {
		t.Errorf("updated = %d, want 1", resp.Updated)
	}
	if len(store.alumni) != 1 {
		t.Errorf("%d alumni remain, want 1", len(store.alumni))
	}
}

func TestToggleUserStatus(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")
	target := seedUser(t, store, "grace", "grace@example.com", "correct horse", true, false)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/users/"+target.ID+"/toggle-status", "tok-root", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[UserResponse](t, rec)
	if resp.IsActive {
		t.Error("user still active after toggle")
	}

	if len(store.audits) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(store.audits))
	}
	entry := store.audits[0]
	if entry.Title != "User Status Toggled: grace" {
		t.Errorf("audit title = %q", entry.Title)
	}
	if !strings.Contains(entry.Description, "is_active: 'true' -> 'false'") {
		t.Errorf("audit description = %q", entry.Description)
	}

	// Toggling back reactivates.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/users/"+target.ID+"/toggle-status", "tok-root", nil)
	if resp := decodeBody[UserResponse](t, rec); !resp.IsActive {
		t.Error("user still inactive after second toggle")
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/users/user-missing/toggle-status", "tok-root", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing user status = %d, want 404", rec.Code)
	}
}

func TestAdminEndpointsRequireStaff(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	user := seedUser(t, store, "grace", "grace@example.com", "correct horse", true, false)
	seedToken(store, user.ID, "tok-grace")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/admin/users"},
		{http.MethodGet, "/api/v1/admin/audit-logs"},
		{http.MethodPost, "/api/v1/admin/alumni/bulk-action"},
		{http.MethodGet, "/api/v1/admin/export/alumni"},
	}
	for _, tc := range paths {
		rec := doJSON(t, router, tc.method, tc.path, "tok-grace", nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s status = %d, want 403", tc.method, tc.path, rec.Code)
		}
	}
}

func TestExportAlumniCSV(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")
	seedAlumnus(store, "Grace", "Hopper", models.StatusActive)
	seedAlumnus(store, "Ada", "Lovelace", models.StatusInactive)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/admin/export/alumni", "tok-root", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "alumni_export_") {
		t.Errorf("content disposition = %q", cd)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}

	// Header matches the registry's advertised columns.
	cfg, _ := app.adminConfig(KindAlumni)
	if !reflect.DeepEqual(records[0], cfg.CSVColumns) {
		t.Errorf("header = %v, want %v", records[0], cfg.CSVColumns)
	}
}

func TestExportUnknownType(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")

	for _, dataType := range []string{"reports", "users", "widgets"} {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/admin/export/"+dataType, "tok-root", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q status = %d, want 400", dataType, rec.Code)
			continue
		}
		if resp := decodeBody[ErrorResponse](t, rec); resp.Error != ErrInvalidExportType {
			t.Errorf("%q error = %q", dataType, resp.Error)
		}
	}
}

func TestListAuditLogs(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	router := app.RegisterRoutes()
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)
	seedToken(store, admin.ID, "tok-root")
	target := seedUser(t, store, "grace", "grace@example.com", "correct horse", true, false)

	doJSON(t, router, http.MethodPost, "/api/v1/admin/users/"+target.ID+"/toggle-status", "tok-root", nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/admin/audit-logs", "tok-root", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[ListResponse](t, rec)
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}
