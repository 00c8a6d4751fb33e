// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

// Package visibility implements the row-level visibility model shared by
// every read path in the system. It is pure computation: given an actor's
// role it decides which visibility levels are readable, what predicate a
// query must carry, what level a dependent row inherits at creation, and
// which cache partition a role maps to.
//
// Unknown roles are always treated as the least-privileged role. A role
// that is not recognized must never widen access.
package visibility

// Level is the per-row visibility classification.
type Level string

const (
	// LevelRestricted marks rows readable by elevated roles only.
	LevelRestricted Level = "restricted"

	// LevelPublic marks rows readable by every authenticated role.
	LevelPublic Level = "public"
)

// Role names recognized by the access model.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleHeadAdmin = "head_admin"
)

// Partition identifies a cache slot shared by roles with identical
// visibility scope. All non-elevated roles collapse into one partition so
// cached aggregates are computed at most once per scope, not once per role.
type Partition string

const (
	PartitionElevated   Partition = "elevated"
	PartitionRestricted Partition = "restricted"
)

// ValidLevel reports whether s names a known visibility level.
func ValidLevel(s string) bool {
	switch Level(s) {
	case LevelRestricted, LevelPublic:
		return true
	}
	return false
}

// IsElevated reports whether the role may read restricted rows.
func IsElevated(role string) bool {
	switch role {
	case RoleAdmin, RoleHeadAdmin:
		return true
	}
	return false
}

// AllowedLevels returns the set of levels readable by the role.
// Elevated roles see everything; anyone else sees only public rows.
func AllowedLevels(role string) []Level {
	if IsElevated(role) {
		return []Level{LevelRestricted, LevelPublic}
	}
	return []Level{LevelPublic}
}

// FilterPredicate returns the SQL condition restricting columnRef to the
// levels readable by role, with its bind argument. Elevated roles have no
// predicate (ok=false): their queries are unrestricted.
//
// Callers must apply the predicate to every table or alias in a query that
// carries a visibility column, including joined tables. Skipping an alias
// leaks rows.
func FilterPredicate(role, columnRef string) (clause string, arg interface{}, ok bool) {
	if IsElevated(role) {
		return "", nil, false
	}
	return columnRef + " = ?", string(LevelPublic), true
}

// Inherit resolves the level for a new dependent row (note, activity,
// person-profile link) created under a parent. An explicit caller-supplied
// level wins; otherwise the parent's current level is adopted.
func Inherit(parent Level, explicit *Level) Level {
	if explicit != nil && *explicit != "" {
		return *explicit
	}
	return parent
}

// CachePartition collapses the role space into the fixed partition set.
// Unrecognized roles land in the restricted partition, never the elevated
// one.
func CachePartition(role string) Partition {
	if IsElevated(role) {
		return PartitionElevated
	}
	return PartitionRestricted
}
