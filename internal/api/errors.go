// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"errors"

	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/validation"
)

// writeStoreError maps storage-layer sentinel errors onto HTTP responses.
// Unrecognized errors become opaque 500s so driver details never reach
// clients.
func writeStoreError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound("Resource not found")
	case errors.Is(err, database.ErrConflict):
		rw.Conflict("Resource conflicts with existing data")
	case errors.Is(err, database.ErrLastAdmin):
		rw.BadRequest(database.ErrLastAdmin.Error())
	case errors.Is(err, database.ErrSelfDeletion):
		rw.BadRequest(database.ErrSelfDeletion.Error())
	case errors.Is(err, database.ErrNoFields):
		rw.BadRequest("No fields provided to update")
	default:
		rw.DatabaseError(err)
	}
}

// writeValidationError renders a failed struct validation as a 400 with
// per-field details.
func writeValidationError(rw *ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	rw.ValidationError(apiErr.Message, apiErr.Details)
}
