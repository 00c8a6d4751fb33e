// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"context"
	"fmt"

	"github.com/dossierd/dossierd/internal/database/query"
	"github.com/dossierd/dossierd/internal/models"
)

// DossierData is the raw, visibility-filtered material a dossier is built
// from. Relation listings are bounded; stats cover the unbounded relation
// under the same filter.
type DossierData struct {
	Person     *models.Person
	Profiles   []models.Profile
	Notes      []models.Note
	Activities []models.Activity
	Stats      models.DossierStats
}

// FetchDossierData loads a person and their filtered relations in one pass.
// Every join alias carrying a visibility column is filtered; a person outside
// the caller's scope yields ErrNotFound.
func (db *DB) FetchDossierData(ctx context.Context, personID int64, role string, limits models.DossierLimits) (*DossierData, error) {
	person, err := db.GetPerson(ctx, personID, role)
	if err != nil {
		return nil, err
	}

	data := &DossierData{Person: person}

	data.Profiles, data.Stats.Profiles, err = db.dossierProfiles(ctx, personID, role, limits.Profiles)
	if err != nil {
		return nil, err
	}
	data.Notes, data.Stats.Notes, err = db.dossierNotes(ctx, personID, role, limits.Notes)
	if err != nil {
		return nil, err
	}
	data.Activities, data.Stats.Activities, err = db.dossierActivities(ctx, personID, role, limits.Activities)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// dossierProfiles returns the bounded linked-profile listing and its stats.
// The link row, the profile, and the owning person are all filtered.
func (db *DB) dossierProfiles(ctx context.Context, personID int64, role string, limit int) ([]models.Profile, models.RelationStats, error) {
	var stats models.RelationStats

	wb := query.NewWhereBuilder()
	wb.AddClause("pp.person_id = ?", personID)
	wb.ApplyVisibility(role, "pp", "pr", "p")
	where, args := wb.Build()

	const fromJoin = `
		 FROM person_profiles pp
		 JOIN profiles pr ON pr.id = pp.profile_id
		 JOIN platforms pf ON pf.id = pr.platform_id
		 JOIN persons p ON p.id = pp.person_id
		 WHERE `

	err := db.conn.QueryRowContext(ctx, query.Rebind(
		`SELECT COUNT(*), MAX(COALESCE(pr.updated_at, pr.created_at))`+fromJoin+where),
		args...).Scan(&stats.Total, &stats.LastUpdatedAt)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to aggregate dossier profiles: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("pr", profileColumns)+`, pf.name, pp.note`+fromJoin+where+`
		 ORDER BY COALESCE(pr.updated_at, pr.created_at) DESC LIMIT ?`),
		append(args, limit)...)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load dossier profiles: %w", err)
	}
	defer closeQuietly(rows)

	profiles := []models.Profile{}
	for rows.Next() {
		var p models.Profile
		var rawMeta []byte
		err := rows.Scan(&p.ID, &p.PlatformID, &p.Username, &p.ExternalID,
			&p.DisplayName, &p.URL, &p.Status, &p.LastSeenAt, &p.Language,
			&p.Region, &p.IsVerified, &p.AvatarURL, &p.Bio, &rawMeta,
			&p.VisibilityLevel, &p.CreatedAt, &p.UpdatedAt, &p.PlatformName, &p.LinkNote)
		if err != nil {
			return nil, stats, translateError(err)
		}
		if err := scanMap(rawMeta, &p.Metadata); err != nil {
			return nil, stats, err
		}
		profiles = append(profiles, p)
	}
	return profiles, stats, rows.Err()
}

// dossierNotes returns the bounded note listing and its stats. Both the
// note and the owning person are filtered.
func (db *DB) dossierNotes(ctx context.Context, personID int64, role string, limit int) ([]models.Note, models.RelationStats, error) {
	var stats models.RelationStats

	wb := query.NewWhereBuilder()
	wb.AddClause("n.person_id = ?", personID)
	wb.ApplyVisibility(role, "n", "p")
	where, args := wb.Build()

	const fromJoin = ` FROM notes n JOIN persons p ON p.id = n.person_id WHERE `

	err := db.conn.QueryRowContext(ctx, query.Rebind(
		`SELECT COUNT(*), MAX(COALESCE(n.updated_at, n.created_at))`+fromJoin+where),
		args...).Scan(&stats.Total, &stats.LastUpdatedAt)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to aggregate dossier notes: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("n", noteColumns)+fromJoin+where+`
		 ORDER BY COALESCE(n.updated_at, n.created_at) DESC LIMIT ?`),
		append(args, limit)...)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load dossier notes: %w", err)
	}
	defer closeQuietly(rows)

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, stats, err
		}
		notes = append(notes, *n)
	}
	return notes, stats, rows.Err()
}

// dossierActivities returns the bounded activity listing and its stats.
// Both the activity and the owning person are filtered.
func (db *DB) dossierActivities(ctx context.Context, personID int64, role string, limit int) ([]models.Activity, models.RelationStats, error) {
	var stats models.RelationStats

	wb := query.NewWhereBuilder()
	wb.AddClause("a.person_id = ?", personID)
	wb.ApplyVisibility(role, "a", "p")
	where, args := wb.Build()

	const fromJoin = ` FROM activities a JOIN persons p ON p.id = a.person_id WHERE `

	err := db.conn.QueryRowContext(ctx, query.Rebind(
		`SELECT COUNT(*), MAX(COALESCE(a.updated_at, a.created_at))`+fromJoin+where),
		args...).Scan(&stats.Total, &stats.LastUpdatedAt)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to aggregate dossier activities: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("a", activityColumns)+fromJoin+where+`
		 ORDER BY COALESCE(a.updated_at, a.created_at) DESC LIMIT ?`),
		append(args, limit)...)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to load dossier activities: %w", err)
	}
	defer closeQuietly(rows)

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, stats, err
		}
		activities = append(activities, *a)
	}
	return activities, stats, rows.Err()
}
