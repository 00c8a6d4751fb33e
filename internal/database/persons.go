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

const personColumns = `id, first_name, last_name, date_of_birth, gender, email,
	phone_number, address_line1, address_line2, postal_code, city, region_state,
	country, status, archived_at, nationality, occupation, risk_level, tags,
	notes, metadata, visibility_level, created_at, updated_at`

// personCascadeTables lists the dependent tables that receive the person's
// new visibility level when a caller opts into the cascade.
var personCascadeTables = []string{"notes", "activities", "person_profiles"}

func scanPerson(row interface{ Scan(...interface{}) error }) (*models.Person, error) {
	var p models.Person
	var rawTags, rawMeta []byte
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.Email,
		&p.PhoneNumber, &p.AddressLine1, &p.AddressLine2, &p.PostalCode, &p.City,
		&p.RegionState, &p.Country, &p.Status, &p.ArchivedAt, &p.Nationality,
		&p.Occupation, &p.RiskLevel, &rawTags, &p.Notes, &rawMeta,
		&p.VisibilityLevel, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	if err := scanTags(rawTags, &p.Tags); err != nil {
		return nil, err
	}
	if err := scanMap(rawMeta, &p.Metadata); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePerson inserts a new person record. Defaults are expected to be
// applied by the caller; the visibility level falls back to public.
func (db *DB) CreatePerson(ctx context.Context, pc models.PersonCreate) (*models.Person, error) {
	level := string(visibility.LevelPublic)
	if pc.VisibilityLevel != nil {
		level = *pc.VisibilityLevel
	}
	tags, err := jsonbTags(pc.Tags)
	if err != nil {
		return nil, err
	}
	meta, err := jsonbMap(pc.Metadata)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query.Rebind(`
		INSERT INTO persons (
			first_name, last_name, date_of_birth, gender, email, phone_number,
			address_line1, address_line2, postal_code, city, region_state,
			country, status, nationality, occupation, risk_level, tags, notes,
			metadata, visibility_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+personColumns),
		pc.FirstName, pc.LastName, pc.DateOfBirth, pc.Gender, pc.Email,
		pc.PhoneNumber, pc.AddressLine1, pc.AddressLine2, pc.PostalCode,
		pc.City, pc.RegionState, pc.Country, pc.Status, pc.Nationality,
		pc.Occupation, pc.RiskLevel, tags, pc.Notes, meta, level)

	p, err := scanPerson(row)
	metrics.RecordDBQuery("insert", "persons", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}
	return p, nil
}

// GetPerson fetches one person subject to the caller's visibility scope.
// A person outside the scope is indistinguishable from a missing one.
func (db *DB) GetPerson(ctx context.Context, id int64, role string) (*models.Person, error) {
	wb := query.NewWhereBuilder()
	wb.AddClause("id = ?", id)
	wb.ApplyVisibility(role, "")
	where, args := wb.Build()

	row := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT `+personColumns+` FROM persons WHERE `+where), args...)
	return scanPerson(row)
}

// PersonFilter narrows ListPersons results. Search matches first name, last
// name, and email case-insensitively.
type PersonFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}

// ListPersons returns visible persons newest-first with the filtered total.
func (db *DB) ListPersons(ctx context.Context, role string, f PersonFilter) ([]models.Person, int64, error) {
	wb := query.NewWhereBuilder()
	wb.ApplyVisibility(role, "")
	wb.AddSearch([]string{"first_name", "last_name", "email"}, f.Search)
	if f.Status != "" {
		wb.AddClause("status = ?", f.Status)
	}
	where, args := wb.Build()

	var total int64
	err := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT COUNT(*) FROM persons WHERE `+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count persons: %w", err)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+personColumns+` FROM persons WHERE `+where+`
		 ORDER BY COALESCE(updated_at, created_at) DESC LIMIT ? OFFSET ?`),
		append(args, f.Limit, f.Offset)...)
	metrics.RecordDBQuery("select", "persons", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list persons: %w", err)
	}
	defer closeQuietly(rows)

	persons := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, err
		}
		persons = append(persons, *p)
	}
	return persons, total, rows.Err()
}

// UpdatePerson applies a partial update. When the patch carries a visibility
// level the new level cascades to the person's notes, activities, and profile
// links inside the same transaction, so a half-applied cascade can never be
// observed.
func (db *DB) UpdatePerson(ctx context.Context, id int64, role string, patch models.PersonUpdate) (*models.Person, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFields
	}

	var updated *models.Person
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		wb := query.NewWhereBuilder()
		wb.AddClause("id = ?", id)
		wb.ApplyVisibility(role, "")
		where, whereArgs := wb.Build()

		var exists int64
		err := tx.QueryRowContext(ctx, query.Rebind(
			`SELECT id FROM persons WHERE `+where+` FOR UPDATE`), whereArgs...).Scan(&exists)
		if err != nil {
			return translateError(err)
		}

		sets := []string{"updated_at = NOW()"}
		args := []interface{}{}
		add := func(column string, value interface{}) {
			sets = append(sets, column+" = ?")
			args = append(args, value)
		}
		if patch.FirstName != nil {
			add("first_name", *patch.FirstName)
		}
		if patch.LastName != nil {
			add("last_name", *patch.LastName)
		}
		if patch.DateOfBirth != nil {
			add("date_of_birth", *patch.DateOfBirth)
		}
		if patch.Gender != nil {
			add("gender", *patch.Gender)
		}
		if patch.Email != nil {
			add("email", *patch.Email)
		}
		if patch.PhoneNumber != nil {
			add("phone_number", *patch.PhoneNumber)
		}
		if patch.AddressLine1 != nil {
			add("address_line1", *patch.AddressLine1)
		}
		if patch.AddressLine2 != nil {
			add("address_line2", *patch.AddressLine2)
		}
		if patch.PostalCode != nil {
			add("postal_code", *patch.PostalCode)
		}
		if patch.City != nil {
			add("city", *patch.City)
		}
		if patch.RegionState != nil {
			add("region_state", *patch.RegionState)
		}
		if patch.Country != nil {
			add("country", *patch.Country)
		}
		if patch.Status != nil {
			add("status", *patch.Status)
		}
		if patch.ArchivedAt != nil {
			add("archived_at", *patch.ArchivedAt)
		}
		if patch.Nationality != nil {
			add("nationality", *patch.Nationality)
		}
		if patch.Occupation != nil {
			add("occupation", *patch.Occupation)
		}
		if patch.RiskLevel != nil {
			add("risk_level", *patch.RiskLevel)
		}
		if patch.Tags != nil {
			tags, err := jsonbTags(patch.Tags)
			if err != nil {
				return err
			}
			add("tags", tags)
		}
		if patch.Notes != nil {
			add("notes", *patch.Notes)
		}
		if patch.Metadata != nil {
			meta, err := jsonbMap(patch.Metadata)
			if err != nil {
				return err
			}
			add("metadata", meta)
		}
		if patch.VisibilityLevel != nil {
			add("visibility_level", *patch.VisibilityLevel)
		}

		args = append(args, id)
		row := tx.QueryRowContext(ctx, query.Rebind(fmt.Sprintf(
			`UPDATE persons SET %s WHERE id = ? RETURNING %s`,
			strings.Join(sets, ", "), personColumns)), args...)
		updated, err = scanPerson(row)
		if err != nil {
			return err
		}

		if patch.VisibilityLevel != nil {
			for _, table := range personCascadeTables {
				_, err := tx.ExecContext(ctx, query.Rebind(fmt.Sprintf(
					`UPDATE %s SET visibility_level = ? WHERE person_id = ?`, table)),
					*patch.VisibilityLevel, id)
				if err != nil {
					return fmt.Errorf("failed to cascade visibility to %s: %w", table, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePerson removes a person within the caller's visibility scope.
// Dependent rows are removed by the schema's ON DELETE CASCADE.
func (db *DB) DeletePerson(ctx context.Context, id int64, role string) error {
	wb := query.NewWhereBuilder()
	wb.AddClause("id = ?", id)
	wb.ApplyVisibility(role, "")
	where, args := wb.Build()

	res, err := db.conn.ExecContext(ctx,
		query.Rebind(`DELETE FROM persons WHERE `+where), args...)
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
