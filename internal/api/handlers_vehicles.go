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

// CreateVehicle handles POST /api/v1/vehicles.
func (h *Handlers) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.VehicleCreate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	vehicle, err := h.db.CreateVehicle(r.Context(), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "vehicle_created",
	})
	rw.Created(vehicle)
}

// GetVehicle handles GET /api/v1/vehicles/{vehicle_id}.
func (h *Handlers) GetVehicle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "vehicle_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	vehicle, err := h.db.GetVehicle(r.Context(), id, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(vehicle)
}

// ListVehicles handles GET /api/v1/vehicles.
func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, offset := paginationParams(r)
	filter := database.VehicleFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}

	vehicles, total, err := h.db.ListVehicles(r.Context(), auth.RoleFromContext(r.Context()), filter)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.SuccessWithPagination(vehicles, listMeta(total, len(vehicles), offset, limit))
}

// UpdateVehicle handles PATCH /api/v1/vehicles/{vehicle_id}.
func (h *Handlers) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "vehicle_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req models.VehicleUpdate
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	vehicle, err := h.db.UpdateVehicle(r.Context(), id, auth.RoleFromContext(r.Context()), req)
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "vehicle_updated",
	})
	rw.Success(vehicle)
}

// DeleteVehicle handles DELETE /api/v1/vehicles/{vehicle_id}.
func (h *Handlers) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := idParam(r, "vehicle_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.db.DeleteVehicle(r.Context(), id, auth.RoleFromContext(r.Context())); err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event": "vehicle_deleted",
	})
	rw.NoContent()
}
