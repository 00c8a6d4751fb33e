// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/models"
)

// ============================================================
// Password hashing
// ============================================================

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "pbkdf2_sha256$120000$") {
		t.Errorf("unexpected hash format: %s", hash)
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salts are not random")
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	t.Parallel()

	malformed := []string{
		"",
		"plaintext",
		"pbkdf2_sha256$120000$onlythree",
		"md5$1$salt$hash",
		"pbkdf2_sha256$notanumber$c2FsdA$aGFzaA",
		"pbkdf2_sha256$120000$!!!$aGFzaA",
		"pbkdf2_sha256$120000$c2FsdA$!!!",
	}
	for _, stored := range malformed {
		if VerifyPassword("anything", stored) {
			t.Errorf("malformed hash %q verified", stored)
		}
	}
}

// ============================================================
// Token issuance and verification
// ============================================================

func TestTokenIssueVerify(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	token, expiresAt, err := ti.Issue(42, "analyst", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("expiry too soon: %v", expiresAt)
	}

	claims, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "analyst" || claims.Role != models.RoleAdmin {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

func TestTokenVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	other := NewTokenIssuer("fedcba9876543210fedcba9876543210", time.Hour)

	token, _, err := ti.Issue(1, "u", models.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Error("token signed with a different secret verified")
	}
}

func TestTokenVerifyExpired(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	ti.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := ti.Issue(1, "u", models.RoleUser)
	if err != nil {
		t.Fatal(err)
	}

	fresh := NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	if _, err := fresh.Verify(token); err == nil {
		t.Error("expired token verified")
	}
}

func TestTokenVerifyRejectsUnsignedAlg(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		UserID:   1,
		Username: "u",
		Role:     models.RoleHeadAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	ti := NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	if _, err := ti.Verify(unsigned); err == nil {
		t.Error("alg=none token verified")
	}
}

// ============================================================
// Bearer token extraction
// ============================================================

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"case insensitive scheme", "bearer tok", "tok", true},
		{"missing", "", "", false},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "", false},
		{"no token", "Bearer ", "", false},
		{"scheme only", "Bearer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := bearerToken(r)
			if got != tt.want || ok != tt.ok {
				t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)",
					tt.header, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// ============================================================
// Authentication middleware
// ============================================================

type mockUserLookup struct {
	user *models.User
	err  error
}

func (m *mockUserLookup) GetUserByID(_ context.Context, _ int64) (*models.User, error) {
	return m.user, m.err
}

func TestAuthenticateMiddleware(t *testing.T) {
	t.Parallel()

	ti := NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	activeUser := &models.User{ID: 7, Username: "analyst", Role: models.RoleUser, IsActive: true}
	token, _, err := ti.Issue(activeUser.ID, activeUser.Username, activeUser.Role)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		header     string
		lookup     *mockUserLookup
		wantStatus int
	}{
		{
			name:       "valid token active user",
			header:     "Bearer " + token,
			lookup:     &mockUserLookup{user: activeUser},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			header:     "",
			lookup:     &mockUserLookup{user: activeUser},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			header:     "Bearer not.a.token",
			lookup:     &mockUserLookup{user: activeUser},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "deactivated user",
			header:     "Bearer " + token,
			lookup:     &mockUserLookup{user: &models.User{ID: 7, IsActive: false}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "deleted user",
			header:     "Bearer " + token,
			lookup:     &mockUserLookup{err: database.ErrNotFound},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotActor *models.User
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor = ActorFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			m := NewMiddleware(ti, tt.lookup)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/persons", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			m.Authenticate(handler).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotActor == nil {
				t.Error("actor missing from context after successful auth")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		actor      *models.User
		allowed    []string
		wantStatus int
	}{
		{
			name:       "role allowed",
			actor:      &models.User{Role: models.RoleAdmin},
			allowed:    []string{models.RoleAdmin, models.RoleHeadAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "role forbidden",
			actor:      &models.User{Role: models.RoleUser},
			allowed:    []string{models.RoleHeadAdmin},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no actor",
			actor:      nil,
			allowed:    []string{models.RoleUser},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewMiddleware(nil, nil)
			handler := m.RequireRole(tt.allowed...)(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/audit/logs", nil)
			if tt.actor != nil {
				req = req.WithContext(ContextWithActor(req.Context(), tt.actor))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

// ============================================================
// Login rate limiting
// ============================================================

func TestLoginLimiter(t *testing.T) {
	t.Parallel()

	l := NewLoginLimiter(3)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d unexpectedly limited", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("burst exceeded but attempt allowed")
	}
	// A different IP has its own budget.
	if !l.Allow("10.0.0.2") {
		t.Error("fresh IP limited")
	}
}

func TestRoleFromContext(t *testing.T) {
	t.Parallel()

	if got := RoleFromContext(context.Background()); got != "" {
		t.Errorf("RoleFromContext on empty context = %q, want empty", got)
	}
	ctx := ContextWithActor(context.Background(), &models.User{Role: models.RoleHeadAdmin})
	if got := RoleFromContext(ctx); got != models.RoleHeadAdmin {
		t.Errorf("RoleFromContext = %q", got)
	}
}

// An actor filled into a pre-installed slot is visible through the outer
// context, not just the derived one. The audit recorder depends on this: it
// holds the context from before authentication ran.
func TestActorSlotVisibleFromOuterContext(t *testing.T) {
	t.Parallel()

	outer := ContextWithActorSlot(context.Background())
	if got := ActorFromContext(outer); got != nil {
		t.Fatalf("empty slot yielded actor %v", got)
	}

	user := &models.User{ID: 3, Username: "clerk", Role: models.RoleUser}
	inner := ContextWithActor(outer, user)
	if inner != outer {
		t.Error("filling an existing slot should not derive a new context")
	}
	if got := ActorFromContext(outer); got != user {
		t.Errorf("actor not visible from outer context, got %v", got)
	}
}
