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

const profileColumns = `id, platform_id, username, external_id, display_name, url,
	status, last_seen_at, language, region, is_verified, avatar_url, bio,
	metadata, visibility_level, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	var p models.Profile
	var rawMeta []byte
	err := row.Scan(&p.ID, &p.PlatformID, &p.Username, &p.ExternalID,
		&p.DisplayName, &p.URL, &p.Status, &p.LastSeenAt, &p.Language,
		&p.Region, &p.IsVerified, &p.AvatarURL, &p.Bio, &rawMeta,
		&p.VisibilityLevel, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	if err := scanMap(rawMeta, &p.Metadata); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a profile. The referenced platform must exist within
// the caller's visibility scope.
func (db *DB) CreateProfile(ctx context.Context, role string, pc models.ProfileCreate) (*models.Profile, error) {
	if _, err := db.GetPlatform(ctx, pc.PlatformID, role); err != nil {
		return nil, err
	}

	status := pc.Status
	if status == "" {
		status = "active"
	}
	level := string(visibility.LevelPublic)
	if pc.VisibilityLevel != nil {
		level = *pc.VisibilityLevel
	}
	meta, err := jsonbMap(pc.Metadata)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query.Rebind(`
		INSERT INTO profiles (
			platform_id, username, external_id, display_name, url, status,
			last_seen_at, language, region, is_verified, avatar_url, bio,
			metadata, visibility_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+profileColumns),
		pc.PlatformID, pc.Username, pc.ExternalID, pc.DisplayName, pc.URL,
		status, pc.LastSeenAt, pc.Language, pc.Region, pc.IsVerified,
		pc.AvatarURL, pc.Bio, meta, level)

	p, err := scanProfile(row)
	metrics.RecordDBQuery("insert", "profiles", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

// GetProfile fetches one visible profile with its platform name.
func (db *DB) GetProfile(ctx context.Context, id int64, role string) (*models.Profile, error) {
	wb := query.NewWhereBuilder()
	wb.AddClause("pr.id = ?", id)
	wb.ApplyVisibility(role, "pr")
	where, args := wb.Build()

	row := db.conn.QueryRowContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("pr", profileColumns)+`, pf.name
		 FROM profiles pr JOIN platforms pf ON pf.id = pr.platform_id
		 WHERE `+where), args...)

	var p models.Profile
	var rawMeta []byte
	err := row.Scan(&p.ID, &p.PlatformID, &p.Username, &p.ExternalID,
		&p.DisplayName, &p.URL, &p.Status, &p.LastSeenAt, &p.Language,
		&p.Region, &p.IsVerified, &p.AvatarURL, &p.Bio, &rawMeta,
		&p.VisibilityLevel, &p.CreatedAt, &p.UpdatedAt, &p.PlatformName)
	if err != nil {
		return nil, translateError(err)
	}
	if err := scanMap(rawMeta, &p.Metadata); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileFilter narrows ListProfiles results.
type ProfileFilter struct {
	PlatformID int64
	Search     string
	Limit      int
	Offset     int
}

// ListProfiles returns visible profiles newest-first. Search matches the
// username and display name case-insensitively.
func (db *DB) ListProfiles(ctx context.Context, role string, f ProfileFilter) ([]models.Profile, int64, error) {
	wb := query.NewWhereBuilder()
	wb.ApplyVisibility(role, "pr")
	if f.PlatformID > 0 {
		wb.AddClause("pr.platform_id = ?", f.PlatformID)
	}
	wb.AddSearch([]string{"pr.username", "pr.display_name"}, f.Search)
	where, args := wb.Build()

	var total int64
	err := db.conn.QueryRowContext(ctx, query.Rebind(
		`SELECT COUNT(*) FROM profiles pr WHERE `+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("pr", profileColumns)+`, pf.name
		 FROM profiles pr JOIN platforms pf ON pf.id = pr.platform_id
		 WHERE `+where+`
		 ORDER BY COALESCE(pr.updated_at, pr.created_at) DESC LIMIT ? OFFSET ?`),
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer closeQuietly(rows)

	profiles := []models.Profile{}
	for rows.Next() {
		var p models.Profile
		var rawMeta []byte
		err := rows.Scan(&p.ID, &p.PlatformID, &p.Username, &p.ExternalID,
			&p.DisplayName, &p.URL, &p.Status, &p.LastSeenAt, &p.Language,
			&p.Region, &p.IsVerified, &p.AvatarURL, &p.Bio, &rawMeta,
			&p.VisibilityLevel, &p.CreatedAt, &p.UpdatedAt, &p.PlatformName)
		if err != nil {
			return nil, 0, translateError(err)
		}
		if err := scanMap(rawMeta, &p.Metadata); err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	return profiles, total, rows.Err()
}

// UpdateProfile applies a partial update to a visible profile.
func (db *DB) UpdateProfile(ctx context.Context, id int64, role string, patch models.ProfileUpdate) (*models.Profile, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFields
	}
	if _, err := db.GetProfile(ctx, id, role); err != nil {
		return nil, err
	}
	if patch.PlatformID != nil {
		if _, err := db.GetPlatform(ctx, *patch.PlatformID, role); err != nil {
			return nil, err
		}
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.PlatformID != nil {
		add("platform_id", *patch.PlatformID)
	}
	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.ExternalID != nil {
		add("external_id", *patch.ExternalID)
	}
	if patch.DisplayName != nil {
		add("display_name", *patch.DisplayName)
	}
	if patch.URL != nil {
		add("url", *patch.URL)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.LastSeenAt != nil {
		add("last_seen_at", *patch.LastSeenAt)
	}
	if patch.Language != nil {
		add("language", *patch.Language)
	}
	if patch.Region != nil {
		add("region", *patch.Region)
	}
	if patch.IsVerified != nil {
		add("is_verified", *patch.IsVerified)
	}
	if patch.AvatarURL != nil {
		add("avatar_url", *patch.AvatarURL)
	}
	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}
	if patch.Metadata != nil {
		meta, err := jsonbMap(patch.Metadata)
		if err != nil {
			return nil, err
		}
		add("metadata", meta)
	}
	if patch.VisibilityLevel != nil {
		add("visibility_level", *patch.VisibilityLevel)
	}
	args = append(args, id)

	row := db.conn.QueryRowContext(ctx, query.Rebind(fmt.Sprintf(
		`UPDATE profiles SET %s WHERE id = ? RETURNING %s`,
		strings.Join(sets, ", "), profileColumns)), args...)
	return scanProfile(row)
}

// DeleteProfile removes a visible profile and, via cascade, its person links.
func (db *DB) DeleteProfile(ctx context.Context, id int64, role string) error {
	if _, err := db.GetProfile(ctx, id, role); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx,
		query.Rebind(`DELETE FROM profiles WHERE id = ?`), id)
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

// LinkProfile attaches a profile to a person. The link's visibility level is
// decided at creation inside the transaction: an explicit level wins,
// otherwise the person's current level is adopted. Duplicate links return
// ErrConflict.
func (db *DB) LinkProfile(ctx context.Context, personID int64, role string, payload models.LinkProfilePayload) (*models.PersonProfileLink, error) {
	var link *models.PersonProfileLink
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		parentLevel, err := visibleParentLevel(ctx, tx, personID, role)
		if err != nil {
			return err
		}

		wb := query.NewWhereBuilder()
		wb.AddClause("id = ?", payload.ProfileID)
		wb.ApplyVisibility(role, "")
		where, args := wb.Build()
		var profileID int64
		err = tx.QueryRowContext(ctx, query.Rebind(
			`SELECT id FROM profiles WHERE `+where), args...).Scan(&profileID)
		if err != nil {
			return translateError(err)
		}

		level := visibility.Inherit(parentLevel, explicitLevel(payload.VisibilityLevel))

		var l models.PersonProfileLink
		err = tx.QueryRowContext(ctx, query.Rebind(`
			INSERT INTO person_profiles (person_id, profile_id, note, visibility_level)
			VALUES (?, ?, ?, ?)
			RETURNING id, person_id, profile_id, note, visibility_level, created_at`),
			personID, payload.ProfileID, payload.Note, string(level)).
			Scan(&l.ID, &l.PersonID, &l.ProfileID, &l.Note, &l.VisibilityLevel, &l.CreatedAt)
		if err != nil {
			return translateError(err)
		}
		link = &l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// UnlinkProfile removes the link between a visible person and a profile.
func (db *DB) UnlinkProfile(ctx context.Context, personID, profileID int64, role string) error {
	if _, err := db.GetPerson(ctx, personID, role); err != nil {
		return err
	}

	wb := query.NewWhereBuilder()
	wb.AddClause("person_id = ?", personID)
	wb.AddClause("profile_id = ?", profileID)
	wb.ApplyVisibility(role, "")
	where, args := wb.Build()

	res, err := db.conn.ExecContext(ctx,
		query.Rebind(`DELETE FROM person_profiles WHERE `+where), args...)
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

// ListLinkedProfiles returns the profiles linked to a person that fall
// within the caller's scope. The link row, the profile, and the owning
// person are all filtered; the link's note rides along on each profile.
func (db *DB) ListLinkedProfiles(ctx context.Context, personID int64, role string) ([]models.Profile, error) {
	if _, err := db.GetPerson(ctx, personID, role); err != nil {
		return nil, err
	}

	wb := query.NewWhereBuilder()
	wb.AddClause("pp.person_id = ?", personID)
	wb.ApplyVisibility(role, "pp", "pr", "p")
	where, args := wb.Build()

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("pr", profileColumns)+`, pf.name, pp.note
		 FROM person_profiles pp
		 JOIN profiles pr ON pr.id = pp.profile_id
		 JOIN platforms pf ON pf.id = pr.platform_id
		 JOIN persons p ON p.id = pp.person_id
		 WHERE `+where+`
		 ORDER BY pp.created_at DESC`), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked profiles: %w", err)
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
			return nil, translateError(err)
		}
		if err := scanMap(rawMeta, &p.Metadata); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
