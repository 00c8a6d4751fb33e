// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"net/http"

	"github.com/dossierd/dossierd/internal/auth"
)

// GetStatsOverview handles GET /api/v1/stats/overview. Results are served
// from the per-partition cache unless force_refresh is set; cache
// provenance rides in the response metadata.
func (h *Handlers) GetStatsOverview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	role := auth.RoleFromContext(r.Context())
	overview, meta, err := h.stats.Overview(r.Context(), role, queryBool(r, "force_refresh"))
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	rw.SuccessWithMeta(overview, &APIMeta{Cache: meta})
}
