// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package auth

import (
	"context"

	"github.com/dossierd/dossierd/internal/models"
)

type contextKey int

const actorKey contextKey = iota

// actorSlot is a mutable holder so an actor resolved deep in the middleware
// chain stays visible to enclosing middleware that captured the context
// earlier (the audit recorder runs outside authentication).
type actorSlot struct {
	user *models.User
}

// ContextWithActorSlot installs an empty actor slot. Middleware mounted
// above authentication calls this so the actor filled in later is visible
// when the request finalizes.
func ContextWithActorSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, actorKey, &actorSlot{})
}

// ContextWithActor records the authenticated user. An already-installed
// slot is filled in place; otherwise a filled slot is installed.
func ContextWithActor(ctx context.Context, user *models.User) context.Context {
	if slot, ok := ctx.Value(actorKey).(*actorSlot); ok {
		slot.user = user
		return ctx
	}
	return context.WithValue(ctx, actorKey, &actorSlot{user: user})
}

// ActorFromContext retrieves the authenticated user, or nil for an
// unauthenticated request.
func ActorFromContext(ctx context.Context) *models.User {
	if slot, ok := ctx.Value(actorKey).(*actorSlot); ok {
		return slot.user
	}
	return nil
}

// RoleFromContext returns the acting user's role, or the empty string for
// an unauthenticated request. The empty string fails every visibility and
// role check downstream.
func RoleFromContext(ctx context.Context) string {
	if user := ActorFromContext(ctx); user != nil {
		return user.Role
	}
	return ""
}
