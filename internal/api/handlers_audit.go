// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"net/http"
	"strconv"

	"github.com/dossierd/dossierd/internal/audit"
	"github.com/dossierd/dossierd/internal/models"
)

// ListAuditLogs handles GET /api/v1/audit/logs. Entries come back
// newest-first; user_id and resource filter exactly, action filters by
// case-insensitive substring.
func (h *Handlers) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, offset := paginationParams(r)
	filter := models.AuditLogFilter{
		Action:   r.URL.Query().Get("action"),
		Resource: r.URL.Query().Get("resource"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			rw.BadRequest("invalid user_id")
			return
		}
		filter.UserID = &id
	}

	entries, total, err := h.db.ListAuditLogs(r.Context(), filter)
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.SuccessWithPagination(entries, listMeta(total, len(entries), offset, limit))
}

// ClearAuditLogs handles DELETE /api/v1/audit/logs. The audit entry for
// this request itself is written after the purge, so the cleared log
// always starts with a record of who cleared it.
func (h *Handlers) ClearAuditLogs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	deleted, err := h.db.ClearAuditLogs(r.Context())
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	audit.Attach(r.Context(), map[string]interface{}{
		"event":   "audit_logs_cleared",
		"deleted": deleted,
	})
	rw.NoContent()
}
