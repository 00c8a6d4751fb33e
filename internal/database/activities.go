// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dossierd/dossierd/internal/database/query"
	"github.com/dossierd/dossierd/internal/metrics"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/visibility"
)

const activityColumns = `id, person_id, activity_type, occurred_at, vehicle_id,
	profile_id, community_id, item, notes, details, severity, source,
	ip_address, user_agent, geo_location, created_by, visibility_level,
	created_at, updated_at`

func scanActivity(row interface{ Scan(...interface{}) error }) (*models.Activity, error) {
	var a models.Activity
	var rawDetails []byte
	err := row.Scan(&a.ID, &a.PersonID, &a.ActivityType, &a.OccurredAt,
		&a.VehicleID, &a.ProfileID, &a.CommunityID, &a.Item, &a.Notes,
		&rawDetails, &a.Severity, &a.Source, &a.IPAddress, &a.UserAgent,
		&a.GeoLocation, &a.CreatedBy, &a.VisibilityLevel, &a.CreatedAt,
		&a.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	if err := scanMap(rawDetails, &a.Details); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateActivity inserts an activity for a visible person. An omitted
// visibility level inherits the person's level inside the same transaction.
// Referenced vehicles and profiles must also be visible to the caller.
func (db *DB) CreateActivity(ctx context.Context, role string, ac models.ActivityCreate) (*models.Activity, error) {
	if ac.VehicleID != nil {
		if _, err := db.GetVehicle(ctx, *ac.VehicleID, role); err != nil {
			return nil, err
		}
	}
	if ac.ProfileID != nil {
		if _, err := db.GetProfile(ctx, *ac.ProfileID, role); err != nil {
			return nil, err
		}
	}

	var created *models.Activity
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		parentLevel, err := visibleParentLevel(ctx, tx, ac.PersonID, role)
		if err != nil {
			return err
		}
		level := visibility.Inherit(parentLevel, explicitLevel(ac.VisibilityLevel))

		details, err := jsonbMap(ac.Details)
		if err != nil {
			return err
		}

		start := time.Now()
		row := tx.QueryRowContext(ctx, query.Rebind(`
			INSERT INTO activities (
				person_id, activity_type, occurred_at, vehicle_id, profile_id,
				community_id, item, notes, details, severity, source,
				ip_address, user_agent, geo_location, created_by,
				visibility_level
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING `+activityColumns),
			ac.PersonID, ac.ActivityType, ac.OccurredAt, ac.VehicleID,
			ac.ProfileID, ac.CommunityID, ac.Item, ac.Notes, details,
			ac.Severity, ac.Source, ac.IPAddress, ac.UserAgent,
			ac.GeoLocation, ac.CreatedBy, string(level))
		created, err = scanActivity(row)
		metrics.RecordDBQuery("insert", "activities", time.Since(start), err)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetActivity fetches one activity; both the activity and its owning person
// must fall within the caller's visibility scope.
func (db *DB) GetActivity(ctx context.Context, id int64, role string) (*models.Activity, error) {
	wb := query.NewWhereBuilder()
	wb.AddClause("a.id = ?", id)
	wb.ApplyVisibility(role, "a", "p")
	where, args := wb.Build()

	row := db.conn.QueryRowContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("a", activityColumns)+`
		 FROM activities a JOIN persons p ON p.id = a.person_id
		 WHERE `+where), args...)
	return scanActivity(row)
}

// ActivityFilter narrows ListActivities results.
type ActivityFilter struct {
	PersonID     int64
	ActivityType string
	Severity     string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// ListActivities returns visible activities most-recent-first, ordered by
// when they occurred, falling back to when they were recorded.
func (db *DB) ListActivities(ctx context.Context, role string, f ActivityFilter) ([]models.Activity, int64, error) {
	wb := query.NewWhereBuilder()
	wb.ApplyVisibility(role, "a", "p")
	if f.PersonID > 0 {
		wb.AddClause("a.person_id = ?", f.PersonID)
	}
	if f.ActivityType != "" {
		wb.AddClause("a.activity_type = ?", f.ActivityType)
	}
	if f.Severity != "" {
		wb.AddClause("a.severity = ?", f.Severity)
	}
	wb.AddDateRange("COALESCE(a.occurred_at, a.created_at)", f.From, f.To)
	where, args := wb.Build()

	const fromJoin = ` FROM activities a JOIN persons p ON p.id = a.person_id WHERE `

	var total int64
	err := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT COUNT(*)`+fromJoin+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("a", activityColumns)+fromJoin+where+`
		 ORDER BY COALESCE(a.occurred_at, a.created_at) DESC LIMIT ? OFFSET ?`),
		append(args, f.Limit, f.Offset)...)
	metrics.RecordDBQuery("select", "activities", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	defer closeQuietly(rows)

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		activities = append(activities, *a)
	}
	return activities, total, rows.Err()
}

// UpdateActivity applies a partial update to a visible activity.
func (db *DB) UpdateActivity(ctx context.Context, id int64, role string, patch models.ActivityUpdate) (*models.Activity, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFields
	}
	if _, err := db.GetActivity(ctx, id, role); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.ActivityType != nil {
		add("activity_type", *patch.ActivityType)
	}
	if patch.OccurredAt != nil {
		add("occurred_at", *patch.OccurredAt)
	}
	if patch.VehicleID != nil {
		add("vehicle_id", *patch.VehicleID)
	}
	if patch.ProfileID != nil {
		add("profile_id", *patch.ProfileID)
	}
	if patch.CommunityID != nil {
		add("community_id", *patch.CommunityID)
	}
	if patch.Item != nil {
		add("item", *patch.Item)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.Details != nil {
		details, err := jsonbMap(patch.Details)
		if err != nil {
			return nil, err
		}
		add("details", details)
	}
	if patch.Severity != nil {
		add("severity", *patch.Severity)
	}
	if patch.Source != nil {
		add("source", *patch.Source)
	}
	if patch.IPAddress != nil {
		add("ip_address", *patch.IPAddress)
	}
	if patch.UserAgent != nil {
		add("user_agent", *patch.UserAgent)
	}
	if patch.GeoLocation != nil {
		add("geo_location", *patch.GeoLocation)
	}
	if patch.VisibilityLevel != nil {
		add("visibility_level", *patch.VisibilityLevel)
	}
	args = append(args, id)

	row := db.conn.QueryRowContext(ctx, query.Rebind(fmt.Sprintf(
		`UPDATE activities SET %s WHERE id = ? RETURNING %s`,
		strings.Join(sets, ", "), activityColumns)), args...)
	return scanActivity(row)
}

// DeleteActivity removes a visible activity.
func (db *DB) DeleteActivity(ctx context.Context, id int64, role string) error {
	if _, err := db.GetActivity(ctx, id, role); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx,
		query.Rebind(`DELETE FROM activities WHERE id = ?`), id)
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
