// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package audit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/logging"
	"github.com/dossierd/dossierd/internal/metrics"
	"github.com/dossierd/dossierd/internal/models"
)

// Recorder persists audit entries. Implemented by the database layer.
type Recorder interface {
	InsertAuditLog(ctx context.Context, entry models.AuditLog) error
}

// outcome is the finalized result of one request: the status actually sent,
// plus the recovered panic value if the handler blew up. Capturing this
// explicitly keeps the recording path identical for success, client error,
// and panic.
type outcome struct {
	status     int
	panicValue interface{}
}

// Middleware records exactly one audit entry per request, after the
// response is finalized. Panics are converted to a 500 response and still
// produce an entry.
type Middleware struct {
	recorder Recorder
}

// NewMiddleware creates the audit middleware.
func NewMiddleware(recorder Recorder) *Middleware {
	return &Middleware{recorder: recorder}
}

// Record is the chi middleware. It installs a fresh Trail and an actor slot
// into the request context, runs the handler with a wrapped response
// writer, and finalizes the entry in a deferred step that runs on every
// exit path. The middleware runs outside authentication, so anonymous and
// rejected requests are recorded too, with no user attached; the actor slot
// makes an actor resolved further down the chain visible here.
func (m *Middleware) Record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.ContextWithActorSlot(NewTrailContext(r.Context()))
		r = r.WithContext(ctx)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		var out outcome
		defer func() {
			m.finalize(r, out)
		}()

		func() {
			defer func() {
				if rec := recover(); rec != nil {
					out.panicValue = rec
					logging.Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Handler panicked")
					writePanicResponse(ww)
				}
			}()
			next.ServeHTTP(ww, r)
		}()

		out.status = ww.Status()
		if out.status == 0 {
			// Handler returned without writing; net/http sends 200.
			out.status = http.StatusOK
		}
		if out.panicValue != nil {
			out.status = http.StatusInternalServerError
		}
	})
}

// finalize assembles and writes the audit entry. Write failures are logged
// and counted, never surfaced; the response has already been sent.
func (m *Middleware) finalize(r *http.Request, out outcome) {
	ctx := r.Context()
	routePath := templatedPath(r)

	entry := models.AuditLog{
		Action:     deriveAction(r.Method, routePath),
		Resource:   deriveResource(routePath),
		ResourceID: resourceIDFromRoute(r),
		Method:     r.Method,
		Path:       routePath,
		StatusCode: out.status,
		IPAddress:  clientIP(r),
		UserAgent:  optionalString(r.UserAgent()),
		Metadata:   TrailFromContext(ctx).Drain(),
	}
	if user := auth.ActorFromContext(ctx); user != nil {
		entry.UserID = &user.ID
		entry.Username = &user.Username
		entry.Role = &user.Role
	}

	// The request context may already be canceled; the write must not be.
	if err := m.recorder.InsertAuditLog(context.WithoutCancel(ctx), entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		logging.Err(err).
			Str("action", entry.Action).
			Str("path", entry.Path).
			Msg("Failed to write audit log entry")
		return
	}
	metrics.AuditEntriesWritten.Inc()
}

// templatedPath returns the matched chi route pattern so concrete IDs
// aggregate under one path, falling back to the raw path when no route
// matched (404s).
func templatedPath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// deriveAction builds a stable action name like "create_persons" from the
// method and templated path.
func deriveAction(method, routePath string) string {
	verb := "read"
	switch method {
	case http.MethodPost:
		verb = "create"
	case http.MethodPut, http.MethodPatch:
		verb = "update"
	case http.MethodDelete:
		verb = "delete"
	}
	resource := deriveResource(routePath)
	if resource == "" {
		return verb
	}
	return verb + "_" + strings.ReplaceAll(resource, "/", "_")
}

// deriveResource extracts the entity segment after the API prefix, e.g.
// "/api/v1/persons/{person_id}/notes" yields "persons/notes".
func deriveResource(routePath string) string {
	trimmed := strings.TrimPrefix(routePath, "/api/v1")
	parts := []string{}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, "/")
}

// resourceIDFromRoute extracts the last chi URL param whose name ends in
// "_id" and parses as an integer. Params appear in match order, so the last
// one is the most specific resource.
func resourceIDFromRoute(r *http.Request) *int64 {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	var id *int64
	for i, key := range rctx.URLParams.Keys {
		if !strings.HasSuffix(key, "_id") {
			continue
		}
		parsed, err := strconv.ParseInt(rctx.URLParams.Values[i], 10, 64)
		if err != nil {
			continue
		}
		v := parsed
		id = &v
	}
	return id
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// transport peer address.
func clientIP(r *http.Request) *string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return &first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return optionalString(r.RemoteAddr)
	}
	return optionalString(host)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// writePanicResponse sends the 500 envelope when a handler panicked before
// writing anything. A partially written response is left as-is.
func writePanicResponse(ww middleware.WrapResponseWriter) {
	if ww.BytesWritten() > 0 || ww.Status() != 0 {
		return
	}
	ww.Header().Set("Content-Type", "application/json")
	ww.WriteHeader(http.StatusInternalServerError)
	body := map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    "INTERNAL_ERROR",
			"message": "An internal error occurred",
		},
	}
	if err := json.NewEncoder(ww).Encode(body); err != nil {
		logging.Err(err).Msg("Failed to encode panic response")
	}
}
