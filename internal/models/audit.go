// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import "time"

// AuditLog is one immutable record of a handled API request. Exactly one
// row is written per request, whether it succeeded, failed authentication,
// or panicked.
type AuditLog struct {
	ID         int64                  `json:"id"`
	UserID     *int64                 `json:"user_id,omitempty"`
	Username   *string                `json:"username,omitempty"`
	Role       *string                `json:"role,omitempty"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID *int64                 `json:"resource_id,omitempty"`
	Method     string                 `json:"method"`
	Path       string                 `json:"path"`
	StatusCode int                    `json:"status_code"`
	IPAddress  *string                `json:"ip_address,omitempty"`
	UserAgent  *string                `json:"user_agent,omitempty"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AuditLogFilter narrows audit listings.
type AuditLogFilter struct {
	UserID   *int64
	Action   string
	Resource string
	Limit    int
	Offset   int
}
