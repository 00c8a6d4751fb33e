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

const noteColumns = "id, person_id, title, text, pinned, visibility_level, created_at, updated_at"

func scanNote(row interface{ Scan(...interface{}) error }) (*models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.PersonID, &n.Title, &n.Text, &n.Pinned,
		&n.VisibilityLevel, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return &n, nil
}

// CreateNote inserts a note under a visible person. An omitted visibility
// level inherits the person's level inside the same transaction, so a
// concurrent person-level change cannot race the inheritance read.
func (db *DB) CreateNote(ctx context.Context, personID int64, role string, nc models.NoteCreate) (*models.Note, error) {
	var created *models.Note
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		parentLevel, err := visibleParentLevel(ctx, tx, personID, role)
		if err != nil {
			return err
		}
		level := visibility.Inherit(parentLevel, explicitLevel(nc.VisibilityLevel))

		start := time.Now()
		row := tx.QueryRowContext(ctx, query.Rebind(`
			INSERT INTO notes (person_id, title, text, pinned, visibility_level)
			VALUES (?, ?, ?, ?, ?)
			RETURNING `+noteColumns),
			personID, nc.Title, nc.Text, nc.Pinned, string(level))
		created, err = scanNote(row)
		metrics.RecordDBQuery("insert", "notes", time.Since(start), err)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetNote fetches one note; both the note and its owning person must fall
// within the caller's visibility scope.
func (db *DB) GetNote(ctx context.Context, personID, noteID int64, role string) (*models.Note, error) {
	wb := query.NewWhereBuilder()
	wb.AddClause("n.id = ?", noteID)
	wb.AddClause("n.person_id = ?", personID)
	wb.ApplyVisibility(role, "n", "p")
	where, args := wb.Build()

	row := db.conn.QueryRowContext(ctx, query.Rebind(
		`SELECT `+aliasColumns("n", noteColumns)+`
		 FROM notes n JOIN persons p ON p.id = n.person_id
		 WHERE `+where), args...)
	return scanNote(row)
}

// ListNotes returns a person's visible notes, pinned first then newest.
func (db *DB) ListNotes(ctx context.Context, personID int64, role string, limit, offset int) ([]models.Note, int64, error) {
	if _, err := db.GetPerson(ctx, personID, role); err != nil {
		return nil, 0, err
	}

	wb := query.NewWhereBuilder()
	wb.AddClause("person_id = ?", personID)
	wb.ApplyVisibility(role, "")
	where, args := wb.Build()

	var total int64
	err := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT COUNT(*) FROM notes WHERE `+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+noteColumns+` FROM notes WHERE `+where+`
		 ORDER BY pinned DESC, COALESCE(updated_at, created_at) DESC
		 LIMIT ? OFFSET ?`),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}
	defer closeQuietly(rows)

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, *n)
	}
	return notes, total, rows.Err()
}

// UpdateNote applies a partial update to a visible note.
func (db *DB) UpdateNote(ctx context.Context, personID, noteID int64, role string, patch models.NoteUpdate) (*models.Note, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFields
	}
	if _, err := db.GetNote(ctx, personID, noteID, role); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Text != nil {
		add("text", *patch.Text)
	}
	if patch.Pinned != nil {
		add("pinned", *patch.Pinned)
	}
	if patch.VisibilityLevel != nil {
		add("visibility_level", *patch.VisibilityLevel)
	}
	args = append(args, noteID, personID)

	row := db.conn.QueryRowContext(ctx, query.Rebind(fmt.Sprintf(
		`UPDATE notes SET %s WHERE id = ? AND person_id = ? RETURNING %s`,
		strings.Join(sets, ", "), noteColumns)), args...)
	return scanNote(row)
}

// DeleteNote removes a visible note.
func (db *DB) DeleteNote(ctx context.Context, personID, noteID int64, role string) error {
	if _, err := db.GetNote(ctx, personID, noteID, role); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, query.Rebind(
		`DELETE FROM notes WHERE id = ? AND person_id = ?`), noteID, personID)
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

// visibleParentLevel loads a person's visibility level inside tx, subject to
// the caller's scope. Used by dependent-row creation for inheritance.
func visibleParentLevel(ctx context.Context, tx *sql.Tx, personID int64, role string) (visibility.Level, error) {
	wb := query.NewWhereBuilder()
	wb.AddClause("id = ?", personID)
	wb.ApplyVisibility(role, "")
	where, args := wb.Build()

	var level string
	err := tx.QueryRowContext(ctx, query.Rebind(
		`SELECT visibility_level FROM persons WHERE `+where), args...).Scan(&level)
	if err != nil {
		return "", translateError(err)
	}
	return visibility.Level(level), nil
}

// explicitLevel adapts an optional request field to a visibility override.
func explicitLevel(s *string) *visibility.Level {
	if s == nil {
		return nil
	}
	l := visibility.Level(*s)
	return &l
}

// aliasColumns prefixes each column in a comma-separated list with the
// given table alias.
func aliasColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
