// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

// Package audit records one immutable log entry per handled API request.
// The middleware owns the write; handlers only contribute metadata through
// the request's Trail.
package audit

import (
	"context"
	"sync"
)

// Trail accumulates audit metadata over the life of one request. Handlers
// attach domain facts (e.g. what was cleared, which fields changed); the
// middleware drains the trail exactly once into the entry's metadata.
type Trail struct {
	mu     sync.Mutex
	fields map[string]interface{}
}

type trailKey struct{}

// NewTrailContext returns a child context carrying a fresh Trail. The
// middleware installs one per request.
func NewTrailContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, trailKey{}, &Trail{})
}

// TrailFromContext returns the request's Trail, or nil outside a request.
func TrailFromContext(ctx context.Context) *Trail {
	t, _ := ctx.Value(trailKey{}).(*Trail)
	return t
}

// Attach merges fields into the current request's metadata. Later values
// win on key collision. A no-op outside a request, so services can attach
// unconditionally.
func Attach(ctx context.Context, fields map[string]interface{}) {
	t := TrailFromContext(ctx)
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fields == nil {
		t.fields = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		t.fields[k] = v
	}
}

// Drain returns the accumulated metadata and resets the trail, so a
// metadata set is never written twice.
func (t *Trail) Drain() map[string]interface{} {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fields := t.fields
	t.fields = nil
	return fields
}
