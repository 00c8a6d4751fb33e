// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package visibility

import (
	"testing"
)

// ============================================================================
// AllowedLevels Tests
// ============================================================================

func TestAllowedLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role string
		want []Level
	}{
		{"admin sees all levels", RoleAdmin, []Level{LevelRestricted, LevelPublic}},
		{"head_admin sees all levels", RoleHeadAdmin, []Level{LevelRestricted, LevelPublic}},
		{"user sees public only", RoleUser, []Level{LevelPublic}},
		{"unknown role fails closed", "superuser", []Level{LevelPublic}},
		{"empty role fails closed", "", []Level{LevelPublic}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AllowedLevels(tt.role)
			if len(got) != len(tt.want) {
				t.Fatalf("AllowedLevels(%q) = %v, want %v", tt.role, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AllowedLevels(%q)[%d] = %v, want %v", tt.role, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ============================================================================
// FilterPredicate Tests
// ============================================================================

func TestFilterPredicate_ElevatedRolesUnrestricted(t *testing.T) {
	t.Parallel()

	for _, role := range []string{RoleAdmin, RoleHeadAdmin} {
		clause, arg, ok := FilterPredicate(role, "p.visibility_level")
		if ok {
			t.Errorf("FilterPredicate(%q) returned predicate %q (arg %v), want none", role, clause, arg)
		}
	}
}

func TestFilterPredicate_RestrictedRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role string
	}{
		{"user role", RoleUser},
		{"unknown role", "auditor"},
		{"empty role", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clause, arg, ok := FilterPredicate(tt.role, "n.visibility_level")
			if !ok {
				t.Fatalf("FilterPredicate(%q) returned no predicate, want equality predicate", tt.role)
			}
			if clause != "n.visibility_level = ?" {
				t.Errorf("clause = %q, want %q", clause, "n.visibility_level = ?")
			}
			if arg != string(LevelPublic) {
				t.Errorf("arg = %v, want %q", arg, LevelPublic)
			}
		})
	}
}

// ============================================================================
// Inherit Tests
// ============================================================================

func TestInherit(t *testing.T) {
	t.Parallel()

	restricted := LevelRestricted
	empty := Level("")

	tests := []struct {
		name     string
		parent   Level
		explicit *Level
		want     Level
	}{
		{"no explicit adopts parent", LevelPublic, nil, LevelPublic},
		{"no explicit adopts restricted parent", LevelRestricted, nil, LevelRestricted},
		{"explicit overrides parent", LevelPublic, &restricted, LevelRestricted},
		{"empty explicit falls back to parent", LevelRestricted, &empty, LevelRestricted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Inherit(tt.parent, tt.explicit); got != tt.want {
				t.Errorf("Inherit(%v, %v) = %v, want %v", tt.parent, tt.explicit, got, tt.want)
			}
		})
	}
}

// ============================================================================
// CachePartition Tests
// ============================================================================

func TestCachePartition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role string
		want Partition
	}{
		{RoleAdmin, PartitionElevated},
		{RoleHeadAdmin, PartitionElevated},
		{RoleUser, PartitionRestricted},
		{"viewer", PartitionRestricted},
		{"", PartitionRestricted},
	}

	for _, tt := range tests {
		if got := CachePartition(tt.role); got != tt.want {
			t.Errorf("CachePartition(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	if !ValidLevel("public") || !ValidLevel("restricted") {
		t.Error("known levels reported invalid")
	}
	if ValidLevel("secret") || ValidLevel("") {
		t.Error("unknown levels reported valid")
	}
}
