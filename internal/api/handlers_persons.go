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

// CreatePerson handles POST /api/v1/persons.
func (h *Handlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.PersonCreate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	req.ApplyDefaults()
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	person, err := h.db.CreatePerson(r.Context(), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":            "person_created",
		"visibility_level": person.VisibilityLevel,
	})
	rw.Created(person)
}

// GetPerson handles GET /api/v1/persons/{person_id}. Rows outside the
// caller's visibility scope read as absent.
func (h *Handlers) GetPerson(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	person, err := h.db.GetPerson(r.Context(), id, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(person)
}

// ListPersons handles GET /api/v1/persons.
func (h *Handlers) ListPersons(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, offset := paginationParams(r)
	filter := database.PersonFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}

	persons, total, err := h.db.ListPersons(r.Context(), auth.RoleFromContext(r.Context()), filter)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.SuccessWithPagination(persons, listMeta(total, len(persons), offset, limit))
}

// UpdatePerson handles PATCH /api/v1/persons/{person_id}. A visibility
// level change cascades to the person's notes, activities, and profile
// links in the same transaction.
func (h *Handlers) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.PersonUpdate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	person, err := h.db.UpdatePerson(r.Context(), id, auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	fields := map[string]interface{}{"event": "person_updated"}
	if req.VisibilityLevel != nil {
		fields["visibility_cascade"] = *req.VisibilityLevel
	}
	audit.Attach(r.Context(), fields)
	rw.Success(person)
}

// DeletePerson handles DELETE /api/v1/persons/{person_id}. Dependent rows
// go with the person via the schema's cascading foreign keys.
func (h *Handlers) DeletePerson(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.DeletePerson(r.Context(), id, auth.RoleFromContext(r.Context())); err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "person_deleted",
	})
	rw.NoContent()
}
