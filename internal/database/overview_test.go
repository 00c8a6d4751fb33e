// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"testing"

	"github.com/dossierd/dossierd/internal/models"
)

// Vehicles and platforms are counted only; every other listed table also
// carries a recent listing.
func TestOverviewTablesRecentListings(t *testing.T) {
	t.Parallel()

	wantRecent := map[string]bool{
		"persons":   true,
		"notes":     true,
		"profiles":  true,
		"vehicles":  false,
		"platforms": false,
	}

	specs := overviewTables(models.RoleUser)
	if len(specs) != len(wantRecent) {
		t.Fatalf("expected %d overview tables, got %d", len(wantRecent), len(specs))
	}

	seen := map[string]bool{}
	for _, spec := range specs {
		want, ok := wantRecent[spec.key]
		if !ok {
			t.Errorf("unexpected overview table %q", spec.key)
			continue
		}
		if seen[spec.key] {
			t.Errorf("overview table %q listed twice", spec.key)
		}
		seen[spec.key] = true

		if got := !spec.skipRecent; got != want {
			t.Errorf("table %q: recent listing = %v, want %v", spec.key, got, want)
		}
		if spec.role != models.RoleUser {
			t.Errorf("table %q: role not threaded through, got %q", spec.key, spec.role)
		}
		if spec.table == "" || spec.alias == "" || spec.labelExpr == "" {
			t.Errorf("table %q: incomplete spec %+v", spec.key, spec)
		}
	}
}
