// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"time"

	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/dossier"
	"github.com/dossierd/dossierd/internal/stats"
)

// Handlers bundles the dependencies shared by all HTTP handlers.
type Handlers struct {
	db           *database.DB
	tokens       *auth.TokenIssuer
	loginLimiter *auth.LoginLimiter
	dossiers     *dossier.Service
	stats        *stats.Service
	version      string
	startTime    time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(
	db *database.DB,
	tokens *auth.TokenIssuer,
	loginLimiter *auth.LoginLimiter,
	dossiers *dossier.Service,
	statsService *stats.Service,
	version string,
) *Handlers {
	return &Handlers{
		db:           db,
		tokens:       tokens,
		loginLimiter: loginLimiter,
		dossiers:     dossiers,
		stats:        statsService,
		version:      version,
		startTime:    time.Now(),
	}
}
