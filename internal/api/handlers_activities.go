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

// CreateActivity handles POST /api/v1/activities. The activity inherits
// its person's visibility level unless an explicit level is supplied;
// referenced vehicles and profiles must be visible to the caller.
func (h *Handlers) CreateActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.ActivityCreate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	activity, err := h.db.CreateActivity(r.Context(), auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":         "activity_created",
		"activity_type": activity.ActivityType,
	})
	rw.Created(activity)
}

// GetActivity handles GET /api/v1/activities/{activity_id}.
func (h *Handlers) GetActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "activity_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	activity, err := h.db.GetActivity(r.Context(), id, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(activity)
}

// ListActivities handles GET /api/v1/activities. Date filters apply to the
// occurrence time, falling back to the creation time for activities without
// one.
func (h *Handlers) ListActivities(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	from, err := queryTime(r, "from")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	limit, offset := paginationParams(r)
	filter := database.ActivityFilter{
		PersonID:     int64(queryInt(r, "person_id", 0)),
		ActivityType: r.URL.Query().Get("activity_type"),
		Severity:     r.URL.Query().Get("severity"),
		From:         from,
		To:           to,
		Limit:        limit,
		Offset:       offset,
	}

	activities, total, err := h.db.ListActivities(r.Context(), auth.RoleFromContext(r.Context()), filter)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.SuccessWithPagination(activities, listMeta(total, len(activities), offset, limit))
}

// UpdateActivity handles PATCH /api/v1/activities/{activity_id}.
func (h *Handlers) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "activity_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.ActivityUpdate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	activity, err := h.db.UpdateActivity(r.Context(), id, auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "activity_updated",
	})
	rw.Success(activity)
}

// DeleteActivity handles DELETE /api/v1/activities/{activity_id}.
func (h *Handlers) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "activity_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.DeleteActivity(r.Context(), id, auth.RoleFromContext(r.Context())); err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "activity_deleted",
	})
	rw.NoContent()
}
