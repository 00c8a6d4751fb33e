// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/dossierd/dossierd/internal/models"
)

// ============================================================
// Error translation
// ============================================================

func TestTranslateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("query: %w", sql.ErrNoRows), ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505"}, ErrConflict},
		{"foreign key violation", &pq.Error{Code: "23503"}, ErrConflict},
		{"other pq error", &pq.Error{Code: "42601"}, nil},
		{"plain error", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := translateError(tt.in)
			if tt.want != nil {
				if !errors.Is(got, tt.want) {
					t.Errorf("translateError(%v) = %v, want %v", tt.in, got, tt.want)
				}
				return
			}
			// Untranslated errors must pass through unchanged.
			if tt.in == nil {
				if got != nil {
					t.Errorf("translateError(nil) = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.in) {
				t.Errorf("translateError(%v) = %v, want passthrough", tt.in, got)
			}
			if errors.Is(got, ErrNotFound) || errors.Is(got, ErrConflict) {
				t.Errorf("translateError(%v) mapped to a sentinel unexpectedly", tt.in)
			}
		})
	}
}

// ============================================================
// JSONB helpers
// ============================================================

func TestJSONBTags(t *testing.T) {
	t.Parallel()

	data, err := jsonbTags(nil)
	if err != nil {
		t.Fatalf("jsonbTags(nil) error: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("jsonbTags(nil) = %s, want []", data)
	}

	data, err = jsonbTags([]string{"vip", "flagged"})
	if err != nil {
		t.Fatalf("jsonbTags error: %v", err)
	}
	if string(data) != `["vip","flagged"]` {
		t.Errorf("jsonbTags = %s", data)
	}
}

func TestScanTags(t *testing.T) {
	t.Parallel()

	var tags []string
	if err := scanTags(nil, &tags); err != nil {
		t.Fatalf("scanTags(nil) error: %v", err)
	}
	if tags == nil || len(tags) != 0 {
		t.Errorf("scanTags(nil) = %v, want empty non-nil slice", tags)
	}

	if err := scanTags([]byte(`["a","b"]`), &tags); err != nil {
		t.Fatalf("scanTags error: %v", err)
	}
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("scanTags = %v", tags)
	}

	if err := scanTags([]byte(`{not json`), &tags); err == nil {
		t.Error("scanTags accepted malformed input")
	}
}

func TestScanMap(t *testing.T) {
	t.Parallel()

	var m map[string]interface{}
	if err := scanMap(nil, &m); err != nil {
		t.Fatalf("scanMap(nil) error: %v", err)
	}
	if m == nil || len(m) != 0 {
		t.Errorf("scanMap(nil) = %v, want empty non-nil map", m)
	}

	if err := scanMap([]byte(`{"k":"v"}`), &m); err != nil {
		t.Fatalf("scanMap error: %v", err)
	}
	if m["k"] != "v" {
		t.Errorf("scanMap = %v", m)
	}
}

// ============================================================
// Column aliasing
// ============================================================

func TestAliasColumns(t *testing.T) {
	t.Parallel()

	got := aliasColumns("n", "id, person_id, text")
	want := "n.id, n.person_id, n.text"
	if got != want {
		t.Errorf("aliasColumns = %q, want %q", got, want)
	}
}

func TestAliasColumnsMultiline(t *testing.T) {
	t.Parallel()

	got := aliasColumns("p", "id,\n\tfirst_name,\n\tlast_name")
	want := "p.id, p.first_name, p.last_name"
	if got != want {
		t.Errorf("aliasColumns = %q, want %q", got, want)
	}
}

// ============================================================
// Update patch guards
// ============================================================

func TestUserPatchIsEmpty(t *testing.T) {
	t.Parallel()

	if !(UserPatch{}).isEmpty() {
		t.Error("zero UserPatch should be empty")
	}
	role := models.RoleAdmin
	if (UserPatch{Role: &role}).isEmpty() {
		t.Error("patch with role should not be empty")
	}
}

func TestIsElevatedRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role string
		want bool
	}{
		{models.RoleUser, false},
		{models.RoleAdmin, true},
		{models.RoleHeadAdmin, true},
		{"intruder", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isElevatedRole(tt.role); got != tt.want {
			t.Errorf("isElevatedRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
