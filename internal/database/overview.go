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

// overviewRecentLimit bounds each entity's recent listing in the overview.
const overviewRecentLimit = 5

// BuildOverview assembles the stats overview under the caller's visibility
// scope. Every visibility-bearing table is filtered by role; the users table
// has no visibility column and is always counted in full.
func (db *DB) BuildOverview(ctx context.Context, role string) (*models.Overview, error) {
	ov := &models.Overview{Entities: map[string]models.EntityOverview{}}

	users, err := db.overviewUsers(ctx)
	if err != nil {
		return nil, err
	}
	ov.Entities["users"] = users

	for _, spec := range overviewTables(role) {
		eo, err := db.overviewEntity(ctx, spec)
		if err != nil {
			return nil, err
		}
		ov.Entities[spec.key] = eo
	}

	activities, err := db.overviewActivities(ctx, role)
	if err != nil {
		return nil, err
	}
	ov.Entities["activities"] = activities

	return ov, nil
}

// overviewSpec drives one table's overview aggregation.
type overviewSpec struct {
	key        string
	table      string
	alias      string
	labelExpr  string
	join       string
	extraAlias string
	role       string
	skipRecent bool
}

// overviewTables lists the visibility-filtered tables in the overview.
// Vehicles and platforms are counted without a recent listing; users and
// activities aggregate through their own paths.
func overviewTables(role string) []overviewSpec {
	return []overviewSpec{
		{
			key:       "persons",
			table:     "persons",
			alias:     "p",
			labelExpr: "p.first_name || ' ' || p.last_name",
			role:      role,
		},
		{
			key:        "notes",
			table:      "notes",
			alias:      "n",
			labelExpr:  "COALESCE(n.title, LEFT(n.text, 80))",
			join:       " JOIN persons p ON p.id = n.person_id",
			extraAlias: "p",
			role:       role,
		},
		{
			key:       "profiles",
			table:     "profiles",
			alias:     "pr",
			labelExpr: "pr.username",
			role:      role,
		},
		{
			key:        "vehicles",
			table:      "vehicles",
			alias:      "v",
			labelExpr:  "v.label",
			role:       role,
			skipRecent: true,
		},
		{
			key:        "platforms",
			table:      "platforms",
			alias:      "pf",
			labelExpr:  "pf.name",
			role:       role,
			skipRecent: true,
		},
	}
}

func (db *DB) overviewEntity(ctx context.Context, spec overviewSpec) (models.EntityOverview, error) {
	var eo models.EntityOverview

	wb := query.NewWhereBuilder()
	aliases := []string{spec.alias}
	if spec.extraAlias != "" {
		aliases = append(aliases, spec.extraAlias)
	}
	wb.ApplyVisibility(spec.role, aliases...)
	where, args := wb.Build()

	from := fmt.Sprintf(" FROM %s %s%s WHERE ", spec.table, spec.alias, spec.join)

	err := db.conn.QueryRowContext(ctx, query.Rebind(fmt.Sprintf(
		`SELECT COUNT(*), MAX(%s.created_at), MAX(%s.updated_at)%s%s`,
		spec.alias, spec.alias, from, where)), args...).
		Scan(&eo.Total, &eo.LastCreatedAt, &eo.LastUpdatedAt)
	if err != nil {
		return eo, fmt.Errorf("failed to aggregate %s overview: %w", spec.table, err)
	}

	if spec.skipRecent {
		return eo, nil
	}

	orderExpr := fmt.Sprintf("COALESCE(%s.updated_at, %s.created_at)", spec.alias, spec.alias)
	rows, err := db.conn.QueryContext(ctx, query.Rebind(fmt.Sprintf(
		`SELECT %s.id, %s, %s.created_at, %s.updated_at%s%s ORDER BY %s DESC LIMIT ?`,
		spec.alias, spec.labelExpr, spec.alias, spec.alias, from, where, orderExpr)),
		append(args, overviewRecentLimit)...)
	if err != nil {
		return eo, fmt.Errorf("failed to load recent %s: %w", spec.table, err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var item models.OverviewRecentItem
		if err := rows.Scan(&item.ID, &item.Label, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return eo, translateError(err)
		}
		eo.Recent = append(eo.Recent, item)
	}
	return eo, rows.Err()
}

// overviewUsers aggregates the users table. Accounts carry no visibility
// level so the numbers are identical for every caller.
func (db *DB) overviewUsers(ctx context.Context) (models.EntityOverview, error) {
	var eo models.EntityOverview
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(created_at), MAX(updated_at) FROM users`).
		Scan(&eo.Total, &eo.LastCreatedAt, &eo.LastUpdatedAt)
	if err != nil {
		return eo, fmt.Errorf("failed to aggregate users overview: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT id, username, created_at, updated_at FROM users
		 ORDER BY COALESCE(updated_at, created_at) DESC LIMIT ?`),
		overviewRecentLimit)
	if err != nil {
		return eo, fmt.Errorf("failed to load recent users: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var item models.OverviewRecentItem
		if err := rows.Scan(&item.ID, &item.Label, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return eo, translateError(err)
		}
		eo.Recent = append(eo.Recent, item)
	}
	return eo, rows.Err()
}

// overviewActivities aggregates activities jointly filtered with their
// owning person, additionally reporting the most recent occurrence time.
func (db *DB) overviewActivities(ctx context.Context, role string) (models.EntityOverview, error) {
	var eo models.EntityOverview

	wb := query.NewWhereBuilder()
	wb.ApplyVisibility(role, "a", "p")
	where, args := wb.Build()

	const fromJoin = ` FROM activities a JOIN persons p ON p.id = a.person_id WHERE `

	err := db.conn.QueryRowContext(ctx, query.Rebind(
		`SELECT COUNT(*), MAX(a.created_at), MAX(a.updated_at),
		        MAX(COALESCE(a.occurred_at, a.created_at))`+fromJoin+where),
		args...).Scan(&eo.Total, &eo.LastCreatedAt, &eo.LastUpdatedAt, &eo.LastActivityAt)
	if err != nil {
		return eo, fmt.Errorf("failed to aggregate activities overview: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT a.id, a.activity_type, a.created_at, a.updated_at`+fromJoin+where+`
		 ORDER BY COALESCE(a.occurred_at, a.created_at) DESC LIMIT ?`),
		append(args, overviewRecentLimit)...)
	if err != nil {
		return eo, fmt.Errorf("failed to load recent activities: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var item models.OverviewRecentItem
		if err := rows.Scan(&item.ID, &item.Label, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return eo, translateError(err)
		}
		eo.Recent = append(eo.Recent, item)
	}
	return eo, rows.Err()
}
