// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/logging"
	"github.com/dossierd/dossierd/internal/models"
)

// EnsureDefaultAdmin creates the bootstrap head admin account when no
// accounts exist yet. A concurrent creation losing the race is treated as
// success.
func EnsureDefaultAdmin(ctx context.Context, db *database.DB, username, password string) error {
	count, err := db.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user, err := db.CreateUser(ctx, username, hash, models.RoleHeadAdmin, true)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil
		}
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	logging.Info().
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("Created default admin account; change its password immediately")
	return nil
}
