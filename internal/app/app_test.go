package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jvtaylar/alumni-partner-db/internal/sdk/models"
	"github.com/jvtaylar/alumni-partner-db/internal/sdk/sqldb"
	"github.com/jvtaylar/alumni-partner-db/internal/services/mailer"
	"github.com/jvtaylar/alumni-partner-db/internal/services/sentry"
	"github.com/jvtaylar/alumni-partner-db/internal/services/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore is an in-memory sqldb.Service for handler tests. The embedded
// interface panics on any method a test exercises without an override here.
type fakeStore struct {
	sqldb.Service

	mu          sync.Mutex
	seq         int
	users       map[string]models.User
	tokens      map[string]models.AuthToken
	sessions    map[string]models.Session
	alumni      map[string]models.Alumnus
	partners    map[string]models.Partner
	engagements map[string]models.Engagement
	reports     map[string]models.Report
	audits      []models.AuditEntry
	resets      map[string]models.PasswordResetToken

	auditErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]models.User),
		tokens:      make(map[string]models.AuthToken),
		sessions:    make(map[string]models.Session),
		alumni:      make(map[string]models.Alumnus),
		partners:    make(map[string]models.Partner),
		engagements: make(map[string]models.Engagement),
		reports:     make(map[string]models.Report),
		resets:      make(map[string]models.PasswordResetToken),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) GetUserByID(_ context.Context, userID string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return models.User{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) GetUserByUsernameFold(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return models.User{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) GetUserByEmailFold(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) CreateUser(_ context.Context, nu models.NewUser) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, nu.Username) || strings.EqualFold(u.Email, nu.Email) {
			return models.User{}, sqldb.ErrDBDuplicatedEntry
		}
	}
	user := models.User{
		ID:         f.nextID("user"),
		Username:   nu.Username,
		Email:      nu.Email,
		Password:   nu.Password,
		FirstName:  nu.FirstName,
		LastName:   nu.LastName,
		IsActive:   true,
		DateJoined: time.Now(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateUserAccount(_ context.Context, userID string, patch models.AccountPatch) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return models.User{}, sqldb.ErrDBNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	f.users[userID] = u
	return u, nil
}

func (f *fakeStore) UpdateUserPassword(_ context.Context, userID string, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return sqldb.ErrDBNotFound
	}
	u.Password = hash
	f.users[userID] = u
	return nil
}

func (f *fakeStore) SetUserActive(_ context.Context, userID string, active bool) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return models.User{}, sqldb.ErrDBNotFound
	}
	u.IsActive = active
	f.users[userID] = u
	return u, nil
}

func (f *fakeStore) TouchLastLogin(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return sqldb.ErrDBNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	f.users[userID] = u
	return nil
}

func (f *fakeStore) UsernameTaken(_ context.Context, username, excludeUserID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID != excludeUserID && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) EmailTaken(_ context.Context, email, excludeUserID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID != excludeUserID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetOrCreateAuthToken(_ context.Context, userID, key string) (models.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			return t, nil
		}
	}
	tok := models.AuthToken{Key: key, UserID: userID, CreatedAt: time.Now()}
	f.tokens[key] = tok
	return tok, nil
}

func (f *fakeStore) GetAuthTokenByKey(_ context.Context, key string) (models.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[key]; ok {
		return t, nil
	}
	return models.AuthToken{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) DeleteAuthTokenForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, key)
			return nil
		}
	}
	return sqldb.ErrDBNotFound
}

func (f *fakeStore) CreateSession(_ context.Context, ns models.NewSession) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess := models.Session{ID: ns.ID, UserID: ns.UserID, CreatedAt: time.Now(), ExpiresAt: ns.ExpiresAt}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeStore) GetSession(_ context.Context, sessionID string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	return models.Session{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[sessionID]; !ok {
		return sqldb.ErrDBNotFound
	}
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeStore) CreatePasswordResetToken(_ context.Context, nt models.NewPasswordResetToken) (models.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt := models.PasswordResetToken{
		ID:        f.nextID("reset"),
		UserID:    nt.UserID,
		Token:     nt.Token,
		ExpiresAt: nt.ExpiresAt,
		CreatedAt: time.Now(),
	}
	f.resets[rt.Token] = rt
	return rt, nil
}

func (f *fakeStore) GetPasswordResetToken(_ context.Context, token string) (models.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rt, ok := f.resets[token]; ok {
		return rt, nil
	}
	return models.PasswordResetToken{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) MarkPasswordResetTokenUsed(_ context.Context, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, rt := range f.resets {
		if rt.ID == tokenID {
			now := time.Now()
			rt.UsedAt = &now
			f.resets[token] = rt
			return nil
		}
	}
	return sqldb.ErrDBNotFound
}

func (f *fakeStore) GetAlumnusByID(_ context.Context, alumnusID string) (models.Alumnus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.alumni[alumnusID]; ok {
		return a, nil
	}
	return models.Alumnus{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) GetAlumnusByUserID(_ context.Context, userID string) (models.Alumnus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alumni {
		if a.UserID != nil && *a.UserID == userID {
			return a, nil
		}
	}
	return models.Alumnus{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) AlumnusExistsForUser(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alumni {
		if a.UserID != nil && *a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateAlumnus(_ context.Context, na models.NewAlumnus) (models.Alumnus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if na.UserID != nil {
		for _, a := range f.alumni {
			if a.UserID != nil && *a.UserID == *na.UserID {
				return models.Alumnus{}, sqldb.ErrDBDuplicatedEntry
			}
		}
	}
	a := models.Alumnus{
		ID:             f.nextID("alum"),
		UserID:         na.UserID,
		FirstName:      na.FirstName,
		LastName:       na.LastName,
		Email:          na.Email,
		Phone:          na.Phone,
		Degree:         na.Degree,
		FieldOfStudy:   na.FieldOfStudy,
		GraduationYear: na.GraduationYear,
		CurrentCompany: na.CurrentCompany,
		JobTitle:       na.JobTitle,
		Industry:       na.Industry,
		Status:         na.Status,
		LinkedinURL:    na.LinkedinURL,
		Bio:            na.Bio,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	f.alumni[a.ID] = a
	return a, nil
}

func (f *fakeStore) UpdateAlumnus(_ context.Context, alumnusID string, patch models.AlumnusPatch) (models.Alumnus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alumni[alumnusID]
	if !ok {
		return models.Alumnus{}, sqldb.ErrDBNotFound
	}
	if patch.FirstName != nil {
		a.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		a.LastName = *patch.LastName
	}
	if patch.Email != nil {
		a.Email = *patch.Email
	}
	if patch.Phone != nil {
		a.Phone = patch.Phone
	}
	if patch.Degree != nil {
		a.Degree = *patch.Degree
	}
	if patch.FieldOfStudy != nil {
		a.FieldOfStudy = *patch.FieldOfStudy
	}
	if patch.GraduationYear != nil {
		a.GraduationYear = *patch.GraduationYear
	}
	if patch.CurrentCompany != nil {
		a.CurrentCompany = *patch.CurrentCompany
	}
	if patch.JobTitle != nil {
		a.JobTitle = *patch.JobTitle
	}
	if patch.Industry != nil {
		a.Industry = *patch.Industry
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.LinkedinURL != nil {
		a.LinkedinURL = patch.LinkedinURL
	}
	if patch.Bio != nil {
		a.Bio = *patch.Bio
	}
	a.UpdatedAt = time.Now()
	f.alumni[alumnusID] = a
	return a, nil
}

func (f *fakeStore) DeleteAlumnus(_ context.Context, alumnusID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.alumni[alumnusID]; !ok {
		return sqldb.ErrDBNotFound
	}
	delete(f.alumni, alumnusID)
	return nil
}

func (f *fakeStore) ListAlumni(_ context.Context, filter models.AlumniFilter) ([]models.Alumnus, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]models.Alumnus, 0, len(f.alumni))
	for _, a := range f.alumni {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// BulkSetAlumniStatus mirrors the SQL selector precedence: explicit ids win,
// otherwise every row with the matching status is updated.
func (f *fakeStore) BulkSetAlumniStatus(_ context.Context, matchStatus, newStatus string, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	switch {
	case len(ids) > 0:
		for _, id := range ids {
			a, ok := f.alumni[id]
			if !ok {
				continue
			}
			a.Status = newStatus
			f.alumni[id] = a
			count++
		}
	case matchStatus != "":
		for id, a := range f.alumni {
			if a.Status != matchStatus {
				continue
			}
			a.Status = newStatus
			f.alumni[id] = a
			count++
		}
	default:
		return 0, errors.New("bulk status update requires ids or a status filter")
	}
	return count, nil
}

func (f *fakeStore) BulkDeleteAlumni(_ context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, id := range ids {
		if _, ok := f.alumni[id]; ok {
			delete(f.alumni, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListPartners(_ context.Context, filter models.PartnerFilter) ([]models.Partner, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]models.Partner, 0, len(f.partners))
	for _, p := range f.partners {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if filter.Page > 1 {
		return nil, len(all), nil
	}
	return all, len(all), nil
}

func (f *fakeStore) GetPartnerByID(_ context.Context, partnerID string) (models.Partner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.partners[partnerID]
	if !ok {
		return models.Partner{}, sqldb.ErrDBNotFound
	}
	return p, nil
}

func (f *fakeStore) CreateEngagement(_ context.Context, ne models.NewEngagement) (models.Engagement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alumni[ne.AlumnusID]
	if !ok {
		return models.Engagement{}, sqldb.ErrForeignKeyViolation
	}
	p, ok := f.partners[ne.PartnerID]
	if !ok {
		return models.Engagement{}, sqldb.ErrForeignKeyViolation
	}

	now := time.Now()
	e := models.Engagement{
		ID:             f.nextID("engagement"),
		AlumnusID:      ne.AlumnusID,
		PartnerID:      ne.PartnerID,
		AlumnusName:    a.FirstName + " " + a.LastName,
		PartnerName:    p.Name,
		EngagementType: ne.EngagementType,
		Description:    ne.Description,
		EngagementDate: ne.EngagementDate,
		Notes:          ne.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.engagements[e.ID] = e

	// The real store stamps both sides in the same transaction.
	when := e.EngagementDate
	a.LastEngagement = &when
	f.alumni[a.ID] = a
	p.LastEngagement = &when
	f.partners[p.ID] = p
	return e, nil
}

func (f *fakeStore) ListEngagements(_ context.Context, filter models.EngagementFilter) ([]models.Engagement, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) AlumniStatistics(_ context.Context) (models.AlumniStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := models.AlumniStats{
		ByDegree:   make(map[string]int),
		ByYear:     make(map[string]int),
		ByIndustry: make(map[string]int),
	}
	for _, a := range f.alumni {
		stats.Total++
		if a.Status == models.StatusActive {
			stats.Active++
		}
		if a.Degree != "" {
			stats.ByDegree[a.Degree]++
		}
	}
	return stats, nil
}

func (f *fakeStore) CreateReport(_ context.Context, nr models.NewReport) (models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := models.Report{
		ID:          f.nextID("report"),
		Title:       nr.Title,
		ReportType:  nr.ReportType,
		Description: nr.Description,
		Data:        nr.Data,
		GeneratedBy: nr.GeneratedBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.reports[r.ID] = r
	return r, nil
}

func (f *fakeStore) GetReportByID(_ context.Context, reportID string) (models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reports[reportID]; ok {
		return r, nil
	}
	return models.Report{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) ListReports(_ context.Context, filter models.ReportFilter) ([]models.Report, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Report, 0, len(f.reports))
	for _, r := range f.reports {
		if filter.ReportType != "" && string(r.ReportType) != filter.ReportType {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeStore) DeleteReport(_ context.Context, reportID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[reportID]; !ok {
		return sqldb.ErrDBNotFound
	}
	delete(f.reports, reportID)
	return nil
}

func (f *fakeStore) CreateAuditEntry(_ context.Context, ne models.NewAuditEntry) (models.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.auditErr != nil {
		return models.AuditEntry{}, f.auditErr
	}
	entry := models.AuditEntry{
		ID:          f.nextID("audit"),
		Title:       ne.Title,
		Category:    ne.Category,
		Description: ne.Description,
		ActorID:     ne.ActorID,
		CreatedAt:   time.Now(),
	}
	f.audits = append(f.audits, entry)
	return entry, nil
}

func (f *fakeStore) ListAuditEntries(_ context.Context, page, pageSize int) ([]models.AuditEntry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audits, len(f.audits), nil
}

// ---------------------------------------------
// Harness helpers
// ---------------------------------------------

func newTestApp(store *fakeStore) *App {
	return NewApp(
		store,
		sentry.NewSentryService("", "test"),
		session.NewCookieService("test-secret", time.Hour),
		mailer.NewMailerService("", "", ""),
		"http://localhost:3000/reset-password",
	)
}

func mustHash(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	return hash
}

func seedUser(t *testing.T, store *fakeStore, username, email, password string, active, staff bool) models.User {
	t.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	store.seq++
	user := models.User{
		ID:         fmt.Sprintf("user-%d", store.seq),
		Username:   username,
		Email:      email,
		Password:   mustHash(t, password),
		FirstName:  "Test",
		LastName:   "User",
		IsActive:   active,
		IsStaff:    staff,
		DateJoined: time.Now(),
	}
	store.users[user.ID] = user
	return user
}

func seedToken(store *fakeStore, userID, key string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.tokens[key] = models.AuthToken{Key: key, UserID: userID, CreatedAt: time.Now()}
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return out
}
