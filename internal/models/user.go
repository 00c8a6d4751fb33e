// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import "time"

// Role constants define the standard roles in the system.
const (
	// RoleUser is the default role with public-visibility read access.
	RoleUser = "user"

	// RoleAdmin may read restricted rows and manage users and audit logs.
	RoleAdmin = "admin"

	// RoleHeadAdmin additionally owns destructive operations such as the
	// audit log bulk clear.
	RoleHeadAdmin = "head_admin"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleUser, RoleAdmin, RoleHeadAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a persisted account. PasswordHash never leaves the database
// layer; the JSON form omits it.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCreate is the payload for creating an account.
type UserCreate struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=user admin head_admin"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UserUpdate is the partial-update payload for an account.
// Nil fields are left unchanged.
type UserUpdate struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin head_admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (u *UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Password == nil && u.Role == nil && u.IsActive == nil
}

// LoginRequest is the credentials payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token and the authenticated user.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}
