// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"net/http"

	"github.com/dossierd/dossierd/internal/audit"
	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/validation"
)

// CreateUser handles POST /api/v1/users.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.UserCreate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		rw.InternalError("Failed to hash password")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, hash, req.Role, isActive)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":    "user_created",
		"username": user.Username,
		"role":     user.Role,
	})
	rw.Created(user)
}

// GetUser handles GET /api/v1/users/{user_id}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "user_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(user)
}

// ListUsers handles GET /api/v1/users.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, offset := paginationParams(r)
	users, total, err := h.db.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.SuccessWithPagination(users, listMeta(total, len(users), offset, limit))
}

// UpdateUser handles PATCH /api/v1/users/{user_id}.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "user_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.UserUpdate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	patch := database.UserPatch{
		Username: req.Username,
		Role:     req.Role,
		IsActive: req.IsActive,
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			rw.InternalError("Failed to hash password")
			return
		}
		patch.PasswordHash = &hash
	}

	user, err := h.db.UpdateUser(r.Context(), id, patch)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":    "user_updated",
		"username": user.Username,
	})
	rw.Success(user)
}

// DeleteUser handles DELETE /api/v1/users/{user_id}. Self-deletion and
// removing the last active elevated account are rejected.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "user_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	actor := auth.ActorFromContext(r.Context())
	if actor == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	if err := h.db.DeleteUser(r.Context(), id, actor.ID); err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "user_deleted",
	})
	rw.NoContent()
}
