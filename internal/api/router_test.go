// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dossierd/dossierd/internal/audit"
	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/config"
	"github.com/dossierd/dossierd/internal/models"
)

// capturingRecorder collects audit entries in memory.
type capturingRecorder struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (c *capturingRecorder) InsertAuditLog(_ context.Context, entry models.AuditLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

func (c *capturingRecorder) all() []models.AuditLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.AuditLog, len(c.entries))
	copy(out, c.entries)
	return out
}

// staticUsers serves one fixed account for any ID.
type staticUsers struct {
	user *models.User
}

func (s *staticUsers) GetUserByID(context.Context, int64) (*models.User, error) {
	return s.user, nil
}

// newTestRouter builds a router with no database behind it. The covered
// paths (unknown routes, disallowed methods, missing credentials, role
// rejections) are all decided before any handler touches storage. The
// returned recorder holds every audit entry the router wrote.
func newTestRouter(t *testing.T, users auth.UserLookup) (http.Handler, *auth.TokenIssuer, *capturingRecorder) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"https://app.example.com"}
	cfg.Server.RateLimitRequests = 1000
	cfg.Server.RateLimitWindow = time.Minute

	issuer := auth.NewTokenIssuer("test-secret-test-secret-test-secret!", time.Hour)
	authMW := auth.NewMiddleware(issuer, users)
	recorder := &capturingRecorder{}
	auditMW := audit.NewMiddleware(recorder)

	h := NewHandlers(nil, issuer, auth.NewLoginLimiter(100), nil, nil, "test")
	return NewRouter(cfg, h, authMW, auditMW), issuer, recorder
}

func bearerFor(t *testing.T, issuer *auth.TokenIssuer, u *models.User) string {
	t.Helper()
	token, _, err := issuer.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterUnknownRoute(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success || resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND envelope, got %+v", resp)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/auth/login", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Error == nil || resp.Error.Code != ErrCodeMethodNotAllowed {
		t.Errorf("expected METHOD_NOT_ALLOWED envelope, got %+v", resp)
	}
}

func TestRouterRequiresAuthentication(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t, nil)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/persons"},
		{http.MethodGet, "/api/v1/persons/1"},
		{http.MethodGet, "/api/v1/persons/1/dossier"},
		{http.MethodGet, "/api/v1/profiles"},
		{http.MethodGet, "/api/v1/platforms"},
		{http.MethodGet, "/api/v1/vehicles"},
		{http.MethodGet, "/api/v1/activities"},
		{http.MethodGet, "/api/v1/stats/overview"},
		{http.MethodGet, "/api/v1/users"},
		{http.MethodGet, "/api/v1/audit/logs"},
		{http.MethodDelete, "/api/v1/audit/logs"},
	}

	for _, p := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", p.method, p.path, rec.Code)
		}
	}
}

// Rejected anonymous requests still produce exactly one audit entry, with
// no user attached.
func TestRouterAuditsAnonymousRejection(t *testing.T) {
	t.Parallel()

	router, _, recorder := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/persons/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	entries := recorder.all()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected recorded status 401, got %d", e.StatusCode)
	}
	if e.UserID != nil || e.Username != nil {
		t.Errorf("anonymous entry must carry no user, got user_id=%v username=%v", e.UserID, e.Username)
	}
	if e.Method != http.MethodGet {
		t.Errorf("expected method GET, got %q", e.Method)
	}
}

// Login attempts are audited even when they never authenticate.
func TestRouterAuditsFailedLogin(t *testing.T) {
	t.Parallel()

	router, _, recorder := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed login body, got %d", rec.Code)
	}
	entries := recorder.all()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.StatusCode != http.StatusBadRequest {
		t.Errorf("expected recorded status 400, got %d", e.StatusCode)
	}
	if e.UserID != nil {
		t.Errorf("failed login entry must carry no user, got user_id=%v", e.UserID)
	}
	if e.Path != "/api/v1/auth/login" {
		t.Errorf("expected login path, got %q", e.Path)
	}
}

// Once authentication resolves an actor, the audit entry carries it even
// though the recorder runs outside the authenticated group.
func TestRouterAuditsResolvedActor(t *testing.T) {
	t.Parallel()

	actor := &models.User{ID: 7, Username: "clerk", Role: models.RoleUser, IsActive: true}
	router, issuer, recorder := newTestRouter(t, &staticUsers{user: actor})

	// An elevated route rejects the plain user with 403; that decision is
	// made after authentication, so the entry has the actor attached.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", bearerFor(t, issuer, actor))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	entries := recorder.all()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.UserID == nil || *e.UserID != actor.ID {
		t.Fatalf("expected entry attributed to user %d, got %v", actor.ID, e.UserID)
	}
	if e.Username == nil || *e.Username != actor.Username {
		t.Errorf("expected username %q on entry, got %v", actor.Username, e.Username)
	}
	if e.StatusCode != http.StatusForbidden {
		t.Errorf("expected recorded status 403, got %d", e.StatusCode)
	}
}

// Person, note, and profile-link mutations are restricted to elevated
// roles; reads stay open to every authenticated user.
func TestRouterPersonMutationsRequireElevatedRole(t *testing.T) {
	t.Parallel()

	actor := &models.User{ID: 9, Username: "viewer", Role: models.RoleUser, IsActive: true}
	router, issuer, _ := newTestRouter(t, &staticUsers{user: actor})
	token := bearerFor(t, issuer, actor)

	mutations := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/persons/"},
		{http.MethodPatch, "/api/v1/persons/1/"},
		{http.MethodDelete, "/api/v1/persons/1/"},
		{http.MethodPost, "/api/v1/persons/1/notes/"},
		{http.MethodPatch, "/api/v1/persons/1/notes/2"},
		{http.MethodDelete, "/api/v1/persons/1/notes/2"},
		{http.MethodPost, "/api/v1/persons/1/profiles/"},
		{http.MethodDelete, "/api/v1/persons/1/profiles/2"},
	}
	for _, m := range mutations {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(m.method, m.path, strings.NewReader("{}"))
		req.Header.Set("Authorization", token)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 for role %q, got %d", m.method, m.path, actor.Role, rec.Code)
		}
	}

	// Reads pass the role check. With no database wired they fail later
	// with a 500, never a 403.
	reads := []string{
		"/api/v1/persons/",
		"/api/v1/persons/1/",
		"/api/v1/persons/1/notes/",
		"/api/v1/persons/1/profiles/",
	}
	for _, path := range reads {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", token)
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusForbidden {
			t.Errorf("GET %s: reads must not be role-gated, got 403", path)
		}
	}
}

func TestRouterRejectsGarbageToken(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/persons", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", rec.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/persons", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin to be echoed, got %q", got)
	}
}

func TestRouterHealthIsPublic(t *testing.T) {
	t.Parallel()

	// Health reaches the handler without credentials; with no database
	// wired the interesting part is that it is not a 401.
	router, _, _ := newTestRouter(t, nil)

	defer func() { _ = recover() }()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code == http.StatusUnauthorized {
		t.Error("health endpoint must not require authentication")
	}
}
