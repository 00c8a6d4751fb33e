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

	"github.com/dossierd/dossierd/internal/metrics"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/database/query"
)

const userColumns = "id, username, password_hash, role, is_active, created_at, updated_at"

// scanUser scans one users row.
func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

// CreateUser inserts a new account. Returns ErrConflict on a duplicate
// username.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash, role string, isActive bool) (*models.User, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		username, passwordHash, role, isActive)

	u, err := scanUser(row)
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUserByID fetches one account by id.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByUsername fetches one account by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// ListUsers returns accounts ordered by id with the unpaginated total.
func (db *DB) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeQuietly(rows)

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// CountUsers returns the total number of accounts.
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// UserPatch carries resolved user update fields. PasswordHash is already
// hashed by the caller; the database layer never sees plaintext passwords.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Role         *string
	IsActive     *bool
}

func (p UserPatch) isEmpty() bool {
	return p.Username == nil && p.PasswordHash == nil && p.Role == nil && p.IsActive == nil
}

// UpdateUser applies a partial update to an account. The last-admin check
// runs inside the same transaction as the update, with the target row
// locked, so two concurrent demotions cannot both pass it.
func (db *DB) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	if patch.isEmpty() {
		return nil, ErrNoFields
	}

	var updated *models.User
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var currentRole string
		var currentActive bool
		err := tx.QueryRowContext(ctx,
			`SELECT role, is_active FROM users WHERE id = $1 FOR UPDATE`, id).
			Scan(&currentRole, &currentActive)
		if err != nil {
			return translateError(err)
		}

		if isElevatedRole(currentRole) {
			newRole := currentRole
			if patch.Role != nil {
				newRole = *patch.Role
			}
			newActive := currentActive
			if patch.IsActive != nil {
				newActive = *patch.IsActive
			}
			if !isElevatedRole(newRole) || !newActive {
				if err := requireAnotherElevated(ctx, tx, id); err != nil {
					return err
				}
			}
		}

		sets := []string{"updated_at = NOW()"}
		args := []interface{}{}
		add := func(column string, value interface{}) {
			args = append(args, value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
		if patch.Username != nil {
			add("username", *patch.Username)
		}
		if patch.PasswordHash != nil {
			add("password_hash", *patch.PasswordHash)
		}
		if patch.Role != nil {
			add("role", *patch.Role)
		}
		if patch.IsActive != nil {
			add("is_active", *patch.IsActive)
		}
		args = append(args, id)

		row := tx.QueryRowContext(ctx, fmt.Sprintf(
			`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), userColumns), args...)

		updated, err = scanUser(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes an account. Self-deletion and deleting the last
// elevated account are rejected; both checks run inside the transaction.
func (db *DB) DeleteUser(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return ErrSelfDeletion
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var role string
		err := tx.QueryRowContext(ctx,
			`SELECT role FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&role)
		if err != nil {
			return translateError(err)
		}

		if isElevatedRole(role) {
			if err := requireAnotherElevated(ctx, tx, id); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		return translateError(err)
	})
}

// isElevatedRole mirrors visibility.IsElevated for account protection
// checks.
func isElevatedRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleHeadAdmin
}

// requireAnotherElevated fails with ErrLastAdmin unless an elevated account
// other than excludeID exists.
func requireAnotherElevated(ctx context.Context, tx *sql.Tx, excludeID int64) error {
	wb := query.NewWhereBuilder()
	wb.AddIn("role", []string{models.RoleAdmin, models.RoleHeadAdmin})
	wb.AddClause("id <> ?", excludeID)
	wb.AddClause("is_active = TRUE")
	where, args := wb.Build()

	var remaining int64
	err := tx.QueryRowContext(ctx,
		query.Rebind(`SELECT COUNT(*) FROM users WHERE `+where), args...).Scan(&remaining)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return ErrLastAdmin
	}
	return nil
}
