// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

// Package config loads application configuration with koanf.
//
// Configuration is layered, later layers overriding earlier ones:
//
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (CONFIG_PATH or a default path)
//  3. Environment variables: override any setting
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Cache    CacheConfig    `koanf:"cache"`
	Dossier  DossierConfig  `koanf:"dossier"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// SecurityConfig holds token signing and bootstrap account settings.
type SecurityConfig struct {
	// SigningSecret signs bearer tokens. Required; there is no default.
	SigningSecret string `koanf:"signing_secret"`

	// TokenTTL is the issued token lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// DefaultAdminUsername/Password seed the bootstrap head_admin account
	// when the users table is empty.
	DefaultAdminUsername string `koanf:"default_admin_username"`
	DefaultAdminPassword string `koanf:"default_admin_password"`

	// LoginRatePerMinute bounds login attempts per client IP.
	LoginRatePerMinute int `koanf:"login_rate_per_minute"`
}

// CacheConfig holds in-process cache settings.
type CacheConfig struct {
	// OverviewTTL is the stats overview cache lifetime per role partition.
	OverviewTTL time.Duration `koanf:"overview_ttl"`
}

// DossierConfig bounds dossier relation listings.
type DossierConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{}, // Empty by default - requires explicit configuration
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Security: SecurityConfig{
			SigningSecret:        "",
			TokenTTL:             12 * time.Hour,
			DefaultAdminUsername: "admin",
			DefaultAdminPassword: "",
			LoginRatePerMinute:   10,
		},
		Cache: CacheConfig{
			OverviewTTL: 2 * time.Minute,
		},
		Dossier: DossierConfig{
			DefaultLimit: 5,
			MaxLimit:     50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for required values and sane bounds.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (DATABASE_DSN)")
	}
	if c.Security.SigningSecret == "" {
		return fmt.Errorf("security.signing_secret is required (SIGNING_SECRET)")
	}
	if len(c.Security.SigningSecret) < 32 {
		return fmt.Errorf("security.signing_secret must be at least 32 characters")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("security.token_ttl must be positive")
	}
	if c.Cache.OverviewTTL <= 0 {
		return fmt.Errorf("cache.overview_ttl must be positive")
	}
	if c.Dossier.DefaultLimit < 1 || c.Dossier.DefaultLimit > c.Dossier.MaxLimit {
		return fmt.Errorf("dossier.default_limit must be between 1 and dossier.max_limit")
	}
	return nil
}
