// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"context"
	"fmt"
)

// createTables creates the application schema. Statements are idempotent so
// startup is safe against an already-initialized database.
func (db *DB) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS persons (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			date_of_birth DATE,
			gender TEXT NOT NULL DEFAULT 'Unspecified',
			email TEXT NOT NULL DEFAULT 'not_provided@example.com',
			phone_number TEXT NOT NULL DEFAULT 'N/A',
			address_line1 TEXT,
			address_line2 TEXT,
			postal_code TEXT,
			city TEXT,
			region_state TEXT,
			country TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			archived_at TIMESTAMPTZ,
			nationality TEXT,
			occupation TEXT,
			risk_level TEXT,
			tags JSONB NOT NULL DEFAULT '[]',
			notes TEXT,
			metadata JSONB NOT NULL DEFAULT '{}',
			visibility_level TEXT NOT NULL DEFAULT 'public',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS platforms (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT 'social',
			base_url TEXT,
			api_base_url TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			visibility_level TEXT NOT NULL DEFAULT 'public',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id BIGSERIAL PRIMARY KEY,
			platform_id BIGINT NOT NULL REFERENCES platforms(id),
			username TEXT NOT NULL,
			external_id TEXT,
			display_name TEXT,
			url TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			last_seen_at TIMESTAMPTZ,
			language TEXT,
			region TEXT,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			avatar_url TEXT,
			bio TEXT,
			metadata JSONB NOT NULL DEFAULT '{}',
			visibility_level TEXT NOT NULL DEFAULT 'public',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS person_profiles (
			id BIGSERIAL PRIMARY KEY,
			person_id BIGINT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			profile_id BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			note TEXT,
			visibility_level TEXT NOT NULL DEFAULT 'public',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (person_id, profile_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id BIGSERIAL PRIMARY KEY,
			person_id BIGINT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			title TEXT,
			text TEXT NOT NULL,
			pinned BOOLEAN NOT NULL DEFAULT FALSE,
			visibility_level TEXT NOT NULL DEFAULT 'public',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id BIGSERIAL PRIMARY KEY,
			label TEXT NOT NULL,
			make TEXT,
			model TEXT,
			build_year INTEGER,
			license_plate TEXT,
			vin TEXT,
			vehicle_type TEXT,
			energy_type TEXT,
			color TEXT,
			mileage_km INTEGER,
			last_service_at TIMESTAMPTZ,
			metadata JSONB NOT NULL DEFAULT '{}',
			visibility_level TEXT NOT NULL DEFAULT 'public',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id BIGSERIAL PRIMARY KEY,
			person_id BIGINT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			activity_type TEXT NOT NULL,
			occurred_at TIMESTAMPTZ,
			vehicle_id BIGINT REFERENCES vehicles(id),
			profile_id BIGINT REFERENCES profiles(id),
			community_id BIGINT,
			item TEXT,
			notes TEXT,
			details JSONB NOT NULL DEFAULT '{}',
			severity TEXT,
			source TEXT,
			ip_address TEXT,
			user_agent TEXT,
			geo_location TEXT,
			created_by TEXT,
			visibility_level TEXT NOT NULL DEFAULT 'public',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT,
			username TEXT,
			role TEXT,
			action TEXT NOT NULL,
			resource TEXT NOT NULL,
			resource_id BIGINT,
			method TEXT NOT NULL,
			path TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			ip_address TEXT,
			user_agent TEXT,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// createIndexes creates indexes for the hot query paths: visibility-filtered
// listings, per-person relation scans, and audit history filtering.
func (db *DB) createIndexes(ctx context.Context) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_persons_visibility ON persons (visibility_level)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_person ON notes (person_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_visibility ON notes (visibility_level)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_platform ON profiles (platform_id)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_visibility ON profiles (visibility_level)`,
		`CREATE INDEX IF NOT EXISTS idx_person_profiles_person ON person_profiles (person_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_person ON activities (person_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_visibility ON activities (visibility_level)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_occurred ON activities (occurred_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_user ON audit_logs (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs (resource)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs (created_at DESC)`,
	}

	for _, stmt := range indexes {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
