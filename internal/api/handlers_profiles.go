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

// CreateProfile handles POST /api/v1/profiles.
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.ProfileCreate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	profile, err := h.db.CreateProfile(r.Context(), auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":       "profile_created",
		"platform_id": profile.PlatformID,
	})
	rw.Created(profile)
}

// GetProfile handles GET /api/v1/profiles/{profile_id}.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "profile_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	profile, err := h.db.GetProfile(r.Context(), id, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(profile)
}

// ListProfiles handles GET /api/v1/profiles.
func (h *Handlers) ListProfiles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, offset := paginationParams(r)
	filter := database.ProfileFilter{
		PlatformID: int64(queryInt(r, "platform_id", 0)),
		Search:     r.URL.Query().Get("search"),
		Limit:      limit,
		Offset:     offset,
	}

	profiles, total, err := h.db.ListProfiles(r.Context(), auth.RoleFromContext(r.Context()), filter)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.SuccessWithPagination(profiles, listMeta(total, len(profiles), offset, limit))
}

// UpdateProfile handles PATCH /api/v1/profiles/{profile_id}.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "profile_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	profile, err := h.db.UpdateProfile(r.Context(), id, auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "profile_updated",
	})
	rw.Success(profile)
}

// DeleteProfile handles DELETE /api/v1/profiles/{profile_id}.
func (h *Handlers) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "profile_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.DeleteProfile(r.Context(), id, auth.RoleFromContext(r.Context())); err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "profile_deleted",
	})
	rw.NoContent()
}

// LinkProfile handles POST /api/v1/persons/{person_id}/profiles. The link
// inherits the person's visibility level unless an explicit level is given.
// Linking the same profile twice is a 409.
func (h *Handlers) LinkProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.LinkProfilePayload
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	link, err := h.db.LinkProfile(r.Context(), personID, auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":      "profile_linked",
		"profile_id": link.ProfileID,
	})
	rw.Created(link)
}

// UnlinkProfile handles DELETE /api/v1/persons/{person_id}/profiles/{profile_id}.
func (h *Handlers) UnlinkProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	profileID, err := idParam(r, "profile_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.UnlinkProfile(r.Context(), personID, profileID, auth.RoleFromContext(r.Context())); err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":      "profile_unlinked",
		"profile_id": profileID,
	})
	rw.NoContent()
}

// ListLinkedProfiles handles GET /api/v1/persons/{person_id}/profiles.
func (h *Handlers) ListLinkedProfiles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	profiles, err := h.db.ListLinkedProfiles(r.Context(), personID, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(profiles)
}
