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

// CreateNote handles POST /api/v1/persons/{person_id}/notes. A note
// without an explicit visibility level inherits the parent person's.
func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.NoteCreate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	note, err := h.db.CreateNote(r.Context(), personID, auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":            "note_created",
		"visibility_level": note.VisibilityLevel,
	})
	rw.Created(note)
}

// GetNote handles GET /api/v1/persons/{person_id}/notes/{note_id}.
func (h *Handlers) GetNote(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	noteID, err := idParam(r, "note_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	note, err := h.db.GetNote(r.Context(), personID, noteID, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(note)
}

// ListNotes handles GET /api/v1/persons/{person_id}/notes. Pinned notes
// sort first, then newest-first by last modification.
func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	limit, offset := paginationParams(r)
	notes, total, err := h.db.ListNotes(r.Context(), personID, auth.RoleFromContext(r.Context()), limit, offset)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.SuccessWithPagination(notes, listMeta(total, len(notes), offset, limit))
}

// UpdateNote handles PATCH /api/v1/persons/{person_id}/notes/{note_id}.
func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	noteID, err := idParam(r, "note_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.NoteUpdate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	note, err := h.db.UpdateNote(r.Context(), personID, noteID, auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "note_updated",
	})
	rw.Success(note)
}

// DeleteNote handles DELETE /api/v1/persons/{person_id}/notes/{note_id}.
func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	noteID, err := idParam(r, "note_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.DeleteNote(r.Context(), personID, noteID, auth.RoleFromContext(r.Context())); err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "note_deleted",
	})
	rw.NoContent()
}
