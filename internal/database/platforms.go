// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/dossierd/dossierd/internal/database/query"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/visibility"
)

const platformColumns = "id, name, category, base_url, api_base_url, is_active, visibility_level, created_at, updated_at"

func scanPlatform(row interface{ Scan(...interface{}) error }) (*models.Platform, error) {
	var p models.Platform
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.BaseURL, &p.APIBaseURL,
		&p.IsActive, &p.VisibilityLevel, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// CreatePlatform inserts a platform. Returns ErrConflict on a duplicate name.
func (db *DB) CreatePlatform(ctx context.Context, pc models.PlatformCreate) (*models.Platform, error) {
	category := pc.Category
	if category == "" {
		category = "social"
	}
	active := true
	if pc.IsActive != nil {
		active = *pc.IsActive
	}
	level := string(visibility.LevelPublic)
	if pc.VisibilityLevel != nil {
		level = *pc.VisibilityLevel
	}

	row := db.conn.QueryRowContext(ctx, query.Rebind(`
		INSERT INTO platforms (name, category, base_url, api_base_url, is_active, visibility_level)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+platformColumns),
		pc.Name, category, pc.BaseURL, pc.APIBaseURL, active, level)

	p, err := scanPlatform(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform: %w", err)
	}
	return p, nil
}

// GetPlatform fetches one platform within the caller's visibility scope.
func (db *DB) GetPlatform(ctx context.Context, id int64, role string) (*models.Platform, error) {
	wb := query.NewWhereBuilder()
	wb.AddClause("id = ?", id)
	wb.ApplyVisibility(role, "")
	where, args := wb.Build()

	row := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT `+platformColumns+` FROM platforms WHERE `+where), args...)
	return scanPlatform(row)
}

// ListPlatforms returns visible platforms ordered by name.
func (db *DB) ListPlatforms(ctx context.Context, role string, limit, offset int) ([]models.Platform, int64, error) {
	wb := query.NewWhereBuilder()
	wb.ApplyVisibility(role, "")
	where, args := wb.Build()

	var total int64
	err := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT COUNT(*) FROM platforms WHERE `+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count platforms: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+platformColumns+` FROM platforms WHERE `+where+`
		 ORDER BY name LIMIT ? OFFSET ?`),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list platforms: %w", err)
	}
	defer closeQuietly(rows)

	platforms := []models.Platform{}
	for rows.Next() {
		p, err := scanPlatform(rows)
		if err != nil {
			return nil, 0, err
		}
		platforms = append(platforms, *p)
	}
	return platforms, total, rows.Err()
}

// UpdatePlatform applies a partial update to a visible platform.
func (db *DB) UpdatePlatform(ctx context.Context, id int64, role string, patch models.PlatformUpdate) (*models.Platform, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFields
	}
	if _, err := db.GetPlatform(ctx, id, role); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.BaseURL != nil {
		add("base_url", *patch.BaseURL)
	}
	if patch.APIBaseURL != nil {
		add("api_base_url", *patch.APIBaseURL)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.VisibilityLevel != nil {
		add("visibility_level", *patch.VisibilityLevel)
	}
	args = append(args, id)

	row := db.conn.QueryRowContext(ctx, query.Rebind(fmt.Sprintf(
		`UPDATE platforms SET %s WHERE id = ? RETURNING %s`,
		strings.Join(sets, ", "), platformColumns)), args...)
	return scanPlatform(row)
}

// DeletePlatform removes a visible platform. Profiles referencing it block
// the delete with ErrConflict via the foreign key.
func (db *DB) DeletePlatform(ctx context.Context, id int64, role string) error {
	if _, err := db.GetPlatform(ctx, id, role); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx,
		query.Rebind(`DELETE FROM platforms WHERE id = ?`), id)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
