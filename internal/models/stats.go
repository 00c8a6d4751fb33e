// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import (
	"time"
)

// EntityOverview summarizes one table for the stats overview: row count,
// lifecycle timestamps, and a short newest-first listing. Counts and
// listings respect the caller's visibility scope.
type EntityOverview struct {
	Total          int64                `json:"total"`
	LastCreatedAt  *time.Time           `json:"last_created_at,omitempty"`
	LastUpdatedAt  *time.Time           `json:"last_updated_at,omitempty"`
	LastActivityAt *time.Time           `json:"last_activity_at,omitempty"`
	Recent         []OverviewRecentItem `json:"recent,omitempty"`
}

// OverviewRecentItem is one row of an entity's recent listing.
type OverviewRecentItem struct {
	ID        int64      `json:"id"`
	Label     string     `json:"label"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Overview is the cached aggregate payload served by /stats/overview.
type Overview struct {
	Entities map[string]EntityOverview `json:"entities"`
}

// OverviewMeta annotates an overview response with cache provenance.
type OverviewMeta struct {
	CacheHit    bool      `json:"cache_hit"`
	GeneratedAt time.Time `json:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	TTLSeconds  int       `json:"ttl_seconds"`
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	Uptime            float64 `json:"uptime_seconds"`
}
