package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/middleware"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
)

func auditContext(t *testing.T, actor models.User) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Set(middleware.UserKey, actor)
	return c
}

func TestRecordAudit(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)

	c := auditContext(t, admin)
	app.recordAudit(c, KindAlumni, "Updated", "Grace Hopper", []fieldChange{
		{Field: "current_company", Old: "Eckert-Mauchly", New: "Remington Rand"},
		{Field: "job_title", Old: "", New: "Director"},
	})

	if len(store.audits) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(store.audits))
	}
	entry := store.audits[0]
	if entry.Title != "Alumni Updated: Grace Hopper" {
		t.Errorf("title = %q", entry.Title)
	}
	if entry.Category != "alumni" {
		t.Errorf("category = %q", entry.Category)
	}
	want := "by root. Changed: current_company: 'Eckert-Mauchly' -> 'Remington Rand'; job_title: '' -> 'Director'"
	if entry.Description != want {
		t.Errorf("description = %q, want %q", entry.Description, want)
	}
	if entry.ActorID == nil || *entry.ActorID != admin.ID {
		t.Errorf("actor = %v, want %s", entry.ActorID, admin.ID)
	}
}

func TestRecordAuditNoChanges(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)

	app.recordAudit(auditContext(t, admin), KindPartners, "Deleted", "Acme Corp", nil)

	entry := store.audits[0]
	if entry.Title != "Partner Deleted: Acme Corp" {
		t.Errorf("title = %q", entry.Title)
	}
	if entry.Description != "by root" {
		t.Errorf("description = %q", entry.Description)
	}
}

func TestRecordAuditBestEffort(t *testing.T) {
	store := newFakeStore()
	store.auditErr = errors.New("connection reset")
	app := newTestApp(store)
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)

	// Must not panic or surface the failure.
	app.recordAudit(auditContext(t, admin), KindAlumni, "Deleted", "Grace Hopper", nil)
	if len(store.audits) != 0 {
		t.Fatalf("got %d audit entries, want 0", len(store.audits))
	}
}

func TestRecordAuditUnknownKind(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(store)
	admin := seedUser(t, store, "root", "root@example.com", "hunter2hunter2", true, true)

	app.recordAudit(auditContext(t, admin), EntityKind("widgets"), "Created", "x", nil)
	if len(store.audits) != 0 {
		t.Fatalf("unknown kind recorded an entry")
	}
}

func TestDiffSnapshots(t *testing.T) {
	before := map[string]string{"a": "1", "b": "2", "c": "3"}
	after := map[string]string{"a": "1", "b": "20", "c": "30"}

	changes := diffSnapshots(before, after)
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].Field != "b" || changes[0].Old != "2" || changes[0].New != "20" {
		t.Errorf("changes[0] = %+v", changes[0])
	}
	if changes[1].Field != "c" {
		t.Errorf("changes[1] = %+v", changes[1])
	}
}

func TestDiffSnapshotsNoChange(t *testing.T) {
	snap := map[string]string{"a": "1"}
	if changes := diffSnapshots(snap, snap); len(changes) != 0 {
		t.Fatalf("got %d changes, want 0", len(changes))
	}
}
