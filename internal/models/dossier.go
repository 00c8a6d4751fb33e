// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import "time"

// DossierLimits bounds the per-relation row counts in a dossier.
type DossierLimits struct {
	Profiles   int `json:"profiles"`
	Notes      int `json:"notes"`
	Activities int `json:"activities"`
}

// RelationStats summarizes one relation under the caller's visibility
// filter: the unbounded total and the most recent modification timestamp.
type RelationStats struct {
	Total         int64      `json:"total"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// DossierRelations holds the bounded, visibility-filtered relation listings.
type DossierRelations struct {
	Profiles   []Profile  `json:"profiles"`
	Notes      []Note     `json:"notes"`
	Activities []Activity `json:"activities"`
}

// DossierStats holds per-relation summary statistics.
type DossierStats struct {
	Profiles   RelationStats `json:"profiles"`
	Notes      RelationStats `json:"notes"`
	Activities RelationStats `json:"activities"`
}

// DossierAudit carries the person record's own lifecycle timestamps.
type DossierAudit struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DossierMeta describes how the dossier was assembled for this caller.
type DossierMeta struct {
	CanViewAdminSections bool          `json:"can_view_admin_sections"`
	Limits               DossierLimits `json:"limits"`
}

// Dossier is the ephemeral aggregate view of one person: the person row,
// bounded relation listings, per-relation stats, and assembly metadata.
// Every part is filtered by the caller's visibility scope; the ETag is a
// content hash recomputed from current data on every fetch.
type Dossier struct {
	Person          *Person          `json:"person"`
	VisibilityScope []string         `json:"visibility_scope"`
	Relations       DossierRelations `json:"relations"`
	Stats           DossierStats     `json:"stats"`
	Audit           DossierAudit     `json:"audit"`
	Meta            DossierMeta      `json:"meta"`
	ETag            string           `json:"etag"`
}
