// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

// Package main is the entry point for the Dossierd server.
//
// Dossierd is a role-aware records API: persons, their notes, online
// profiles, vehicles, and activities, with row-level visibility filtering,
// an append-only audit trail, on-demand dossier aggregation (JSON and PDF),
// and a cached statistics overview.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layering defaults, optional YAML file, and
//     environment variables
//  2. Logging: zerolog, JSON or console format
//  3. Database: PostgreSQL pool, schema creation, index creation
//  4. Bootstrap: seed the default head_admin account when the users table
//     is empty
//  5. HTTP server: chi router with request ID, metrics, CORS, rate
//     limiting, authentication, and audit middleware
//
// # Configuration
//
// Required settings (no defaults):
//   - DATABASE_DSN: PostgreSQL connection string
//   - SIGNING_SECRET: 32+ character secret for bearer token signing
//
// To seed the bootstrap admin account on an empty database:
//   - DEFAULT_ADMIN_PASSWORD (username defaults to "admin")
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, waits for in-flight requests up to the configured
// shutdown timeout, then closes the database pool.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dossierd/dossierd/internal/api"
	"github.com/dossierd/dossierd/internal/audit"
	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/config"
	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/dossier"
	"github.com/dossierd/dossierd/internal/logging"
	"github.com/dossierd/dossierd/internal/stats"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Dossierd")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	if cfg.Security.DefaultAdminPassword != "" {
		err := auth.EnsureDefaultAdmin(context.Background(), db,
			cfg.Security.DefaultAdminUsername, cfg.Security.DefaultAdminPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to ensure default admin account")
		}
	} else {
		logging.Info().Msg("Default admin seeding disabled (DEFAULT_ADMIN_PASSWORD not set)")
	}

	tokens := auth.NewTokenIssuer(cfg.Security.SigningSecret, cfg.Security.TokenTTL)
	loginLimiter := auth.NewLoginLimiter(cfg.Security.LoginRatePerMinute)
	authMW := auth.NewMiddleware(tokens, db)
	auditMW := audit.NewMiddleware(db)

	dossierService := dossier.NewService(db, cfg.Dossier.DefaultLimit, cfg.Dossier.MaxLimit)
	statsService := stats.NewService(db, stats.NewCache(cfg.Cache.OverviewTTL))

	handlers := api.NewHandlers(db, tokens, loginLimiter, dossierService, statsService, version)
	router := api.NewRouter(cfg, handlers, authMW, auditMW)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown incomplete, forcing close")
		if err := server.Close(); err != nil {
			logging.Error().Err(err).Msg("Forced close failed")
		}
	}

	logging.Info().Msg("Server stopped")
}
