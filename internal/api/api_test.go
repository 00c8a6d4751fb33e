// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dossierd/dossierd/internal/database"
)

// ============================================================================
// Response Envelope
// ============================================================================

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return resp
}

func TestResponseWriterSuccess(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	rw := NewResponseWriter(rec, req)
	rw.Success(map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Error != nil {
		t.Errorf("expected no error, got %+v", resp.Error)
	}
	if resp.Meta == nil {
		t.Fatal("expected meta to be present")
	}
	if resp.Meta.Timestamp.IsZero() {
		t.Error("expected meta timestamp to be set")
	}
}

func TestResponseWriterCreated(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)

	NewResponseWriter(rec, req).Created(map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); !resp.Success {
		t.Error("expected success=true")
	}
}

func TestResponseWriterNoContent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/test", nil)

	NewResponseWriter(rec, req).NoContent()

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestResponseWriterError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	NewResponseWriter(rec, req).NotFound("Resource not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error == nil {
		t.Fatal("expected error to be present")
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, resp.Error.Code)
	}
	if resp.Error.Message != "Resource not found" {
		t.Errorf("unexpected message: %s", resp.Error.Message)
	}
}

func TestResponseWriterPagination(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	NewResponseWriter(rec, req).SuccessWithPagination(
		[]int{1, 2, 3},
		listMeta(10, 3, 0, 3),
	)

	resp := decodeEnvelope(t, rec)
	if resp.Meta == nil || resp.Meta.Pagination == nil {
		t.Fatal("expected pagination meta")
	}

	p := resp.Meta.Pagination
	if p.Total != 10 || p.Count != 3 || p.Offset != 0 || p.Limit != 3 {
		t.Errorf("unexpected pagination: %+v", p)
	}
	if !p.HasMore {
		t.Error("expected has_more=true with 3 of 10 returned")
	}
}

// ============================================================================
// Store Error Mapping
// ============================================================================

func TestWriteStoreError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", database.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("get person: %w", database.ErrNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"conflict", database.ErrConflict, http.StatusConflict, ErrCodeConflict},
		{"last admin", database.ErrLastAdmin, http.StatusBadRequest, ErrCodeBadRequest},
		{"self deletion", database.ErrSelfDeletion, http.StatusBadRequest, ErrCodeBadRequest},
		{"empty update", database.ErrNoFields, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError, ErrCodeDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			writeStoreError(NewResponseWriter(rec, req), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			resp := decodeEnvelope(t, rec)
			if resp.Error == nil {
				t.Fatal("expected error body")
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestWriteStoreErrorHidesDriverDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	writeStoreError(NewResponseWriter(rec, req), fmt.Errorf("pq: relation \"persons\" does not exist"))

	resp := decodeEnvelope(t, rec)
	if strings.Contains(resp.Error.Message, "pq:") {
		t.Errorf("driver error leaked to client: %s", resp.Error.Message)
	}
}

// ============================================================================
// Request Helpers
// ============================================================================

func TestPaginationParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", defaultPageLimit, 0},
		{"explicit", "limit=25&offset=10", 25, 10},
		{"capped", "limit=9999", maxPageLimit, 0},
		{"zero limit falls back", "limit=0", defaultPageLimit, 0},
		{"negative offset ignored", "offset=-5", defaultPageLimit, 0},
		{"garbage ignored", "limit=abc&offset=xyz", defaultPageLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/test?"+tt.query, nil)
			limit, offset := paginationParams(req)
			if limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, limit)
			}
			if offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, offset)
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{"valid", "42", 42, false},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"not a number", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("person_id", tt.value)
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			got, err := idParam(req, "person_id")
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestQueryBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  bool
	}{
		{"force_refresh=true", true},
		{"force_refresh=1", true},
		{"force_refresh=false", false},
		{"force_refresh=yes", false},
		{"", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/test?"+tt.query, nil)
		if got := queryBool(req, "force_refresh"); got != tt.want {
			t.Errorf("queryBool(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestQueryTime(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/test?from=2026-03-01T12:00:00Z", nil)
	got, err := queryTime(req, "from")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	if got, err := queryTime(req, "from"); err != nil || got != nil {
		t.Errorf("expected nil for absent param, got %v, %v", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/test?from=yesterday", nil)
	if _, err := queryTime(req, "from"); err == nil {
		t.Error("expected error for unparsable timestamp")
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/test",
		strings.NewReader(`{"username": "alice", "password": "secret", "surprise": true}`))

	var dst struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(req, &dst); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestListMetaHasMore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		total  int64
		count  int
		offset int
		want   bool
	}{
		{"first page of many", 100, 50, 0, true},
		{"last full page", 100, 50, 50, false},
		{"partial last page", 55, 5, 50, false},
		{"empty", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := listMeta(tt.total, tt.count, tt.offset, 50).HasMore; got != tt.want {
				t.Errorf("expected has_more=%v", tt.want)
			}
		})
	}
}

// ============================================================================
// ETag Matching
// ============================================================================

func TestMatchesETag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		etag   string
		want   bool
	}{
		{"exact match", `"abc123"`, `"abc123"`, true},
		{"no header", "", `"abc123"`, false},
		{"mismatch", `"def456"`, `"abc123"`, false},
		{"wildcard", "*", `"abc123"`, true},
		{"list with match", `"def456", "abc123"`, `"abc123"`, true},
		{"weak form", `W/"abc123"`, `"abc123"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matchesETag(tt.header, tt.etag); got != tt.want {
				t.Errorf("matchesETag(%q, %q) = %v, want %v", tt.header, tt.etag, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Client IP Resolution
// ============================================================================

func TestLoginClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "198.51.100.7:41234"
	if got := loginClientIP(req); got != "198.51.100.7" {
		t.Errorf("expected socket peer IP, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.50, 198.51.100.7")
	if got := loginClientIP(req); got != "203.0.113.50" {
		t.Errorf("expected first forwarded hop, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.51")
	if got := loginClientIP(req); got != "203.0.113.51" {
		t.Errorf("expected single forwarded hop, got %q", got)
	}
}

// ============================================================================
// Dossier Limit Parsing
// ============================================================================

func TestDossierLimitsFromQuery(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet,
		"/test?limit_profiles=10&limit_notes=3", nil)

	limits := dossierLimits(req)
	if limits.Profiles != 10 {
		t.Errorf("expected profiles limit 10, got %d", limits.Profiles)
	}
	if limits.Notes != 3 {
		t.Errorf("expected notes limit 3, got %d", limits.Notes)
	}
	if limits.Activities != 0 {
		t.Errorf("expected activities limit 0 (service default), got %d", limits.Activities)
	}
}
