// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"net/http"

	"github.com/dossierd/dossierd/internal/audit"
	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/validation"
)

// CreatePlatform handles POST /api/v1/platforms.
func (h *Handlers) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.PlatformCreate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	platform, err := h.db.CreatePlatform(r.Context(), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "platform_created",
		"name":  platform.Name,
	})
	rw.Created(platform)
}

// GetPlatform handles GET /api/v1/platforms/{platform_id}.
func (h *Handlers) GetPlatform(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "platform_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	platform, err := h.db.GetPlatform(r.Context(), id, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(platform)
}

// ListPlatforms handles GET /api/v1/platforms.
func (h *Handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, offset := paginationParams(r)
	platforms, total, err := h.db.ListPlatforms(r.Context(), auth.RoleFromContext(r.Context()), limit, offset)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.SuccessWithPagination(platforms, listMeta(total, len(platforms), offset, limit))
}

// UpdatePlatform handles PATCH /api/v1/platforms/{platform_id}.
func (h *Handlers) UpdatePlatform(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "platform_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.PlatformUpdate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	platform, err := h.db.UpdatePlatform(r.Context(), id, auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "platform_updated",
	})
	rw.Success(platform)
}

// DeletePlatform handles DELETE /api/v1/platforms/{platform_id}. Deleting
// a platform that still has profiles is a 409.
func (h *Handlers) DeletePlatform(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "platform_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.DeletePlatform(r.Context(), id, auth.RoleFromContext(r.Context())); err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "platform_deleted",
	})
	rw.NoContent()
}
