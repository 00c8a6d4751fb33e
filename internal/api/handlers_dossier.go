// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/dossier"
	"github.com/dossierd/dossierd/internal/logging"
	"github.com/dossierd/dossierd/internal/metrics"
	"github.com/dossierd/dossierd/internal/models"
)

// GetDossier handles GET /api/v1/persons/{person_id}/dossier. The dossier
// is assembled fresh on every request; the ETag is a content hash, so an
// If-None-Match header matching current state short-circuits to 304.
func (h *Handlers) GetDossier(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	d, err := h.dossiers.Fetch(r.Context(), personID, auth.RoleFromContext(r.Context()), dossierLimits(r))
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	etag := fmt.Sprintf("%q", d.ETag)
	w.Header().Set("ETag", etag)

	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		metrics.DossierBuilds.WithLabelValues("not_modified").Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	metrics.DossierBuilds.WithLabelValues("json").Inc()
	rw.Success(d)
}

// GetDossierPDF handles GET /api/v1/persons/{person_id}/dossier.pdf with
// the same ETag semantics as the structured form.
func (h *Handlers) GetDossierPDF(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	personID, err := idParam(r, "person_id")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	d, err := h.dossiers.Fetch(r.Context(), personID, auth.RoleFromContext(r.Context()), dossierLimits(r))
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	etag := fmt.Sprintf("%q", d.ETag)
	w.Header().Set("ETag", etag)

	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		metrics.DossierBuilds.WithLabelValues("not_modified").Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	pdf, err := dossier.RenderPDF(d)
	if err != nil {
		logging.CtxErr(r.Context(), err).Int64("person_id", personID).Msg("Failed to render dossier PDF")
		rw.InternalError("Failed to render PDF")
		return
	}

	metrics.DossierBuilds.WithLabelValues("pdf").Inc()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="dossier-%d.pdf"`, personID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logging.CtxErr(r.Context(), err).Msg("Failed to write PDF response")
	}
}

// dossierLimits reads the per-relation limit query parameters. Values are
// clamped by the dossier service, so out-of-range input degrades to the
// configured bounds rather than erroring.
func dossierLimits(r *http.Request) models.DossierLimits {
	return models.DossierLimits{
		Profiles:   queryInt(r, "limit_profiles", 0),
		Notes:      queryInt(r, "limit_notes", 0),
		Activities: queryInt(r, "limit_activities", 0),
	}
}

// matchesETag reports whether an If-None-Match header matches the given
// strong ETag. A bare * matches anything.
func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
