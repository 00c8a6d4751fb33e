// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import "time"

// Platform is a lookup row describing an external service profiles live on.
type Platform struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	BaseURL         *string   `json:"base_url,omitempty"`
	APIBaseURL      *string   `json:"api_base_url,omitempty"`
	IsActive        bool      `json:"is_active"`
	VisibilityLevel string    `json:"visibility_level"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PlatformCreate is the payload for creating a platform.
type PlatformCreate struct {
	Name            string  `json:"name" validate:"required"`
	Category        string  `json:"category,omitempty"`
	BaseURL         *string `json:"base_url,omitempty"`
	APIBaseURL      *string `json:"api_base_url,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
	VisibilityLevel *string `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// PlatformUpdate is the partial-update payload for a platform.
type PlatformUpdate struct {
	Name            *string `json:"name,omitempty"`
	Category        *string `json:"category,omitempty"`
	BaseURL         *string `json:"base_url,omitempty"`
	APIBaseURL      *string `json:"api_base_url,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
	VisibilityLevel *string `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// IsEmpty reports whether the update carries no fields.
func (p *PlatformUpdate) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.BaseURL == nil &&
		p.APIBaseURL == nil && p.IsActive == nil && p.VisibilityLevel == nil
}

// Profile is an account on an external platform. Its visibility level is
// independent of any person it may be linked to.
type Profile struct {
	ID              int64                  `json:"id"`
	PlatformID      int64                  `json:"platform_id"`
	PlatformName    string                 `json:"platform_name,omitempty"`
	Username        string                 `json:"username"`
	ExternalID      *string                `json:"external_id,omitempty"`
	DisplayName     *string                `json:"display_name,omitempty"`
	URL             *string                `json:"url,omitempty"`
	Status          string                 `json:"status"`
	LastSeenAt      *time.Time             `json:"last_seen_at,omitempty"`
	Language        *string                `json:"language,omitempty"`
	Region          *string                `json:"region,omitempty"`
	IsVerified      bool                   `json:"is_verified"`
	AvatarURL       *string                `json:"avatar_url,omitempty"`
	Bio             *string                `json:"bio,omitempty"`
	Metadata        map[string]interface{} `json:"metadata"`
	VisibilityLevel string                 `json:"visibility_level"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`

	// LinkNote is populated only when the profile is returned through a
	// person's link listing.
	LinkNote *string `json:"link_note,omitempty"`
}

// ProfileCreate is the payload for creating a profile.
type ProfileCreate struct {
	PlatformID      int64                  `json:"platform_id" validate:"required,gt=0"`
	Username        string                 `json:"username" validate:"required"`
	ExternalID      *string                `json:"external_id,omitempty"`
	DisplayName     *string                `json:"display_name,omitempty"`
	URL             *string                `json:"url,omitempty"`
	Status          string                 `json:"status,omitempty"`
	LastSeenAt      *time.Time             `json:"last_seen_at,omitempty"`
	Language        *string                `json:"language,omitempty"`
	Region          *string                `json:"region,omitempty"`
	IsVerified      bool                   `json:"is_verified,omitempty"`
	AvatarURL       *string                `json:"avatar_url,omitempty"`
	Bio             *string                `json:"bio,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	VisibilityLevel *string                `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// ProfileUpdate is the partial-update payload for a profile.
type ProfileUpdate struct {
	PlatformID      *int64                 `json:"platform_id,omitempty" validate:"omitempty,gt=0"`
	Username        *string                `json:"username,omitempty"`
	ExternalID      *string                `json:"external_id,omitempty"`
	DisplayName     *string                `json:"display_name,omitempty"`
	URL             *string                `json:"url,omitempty"`
	Status          *string                `json:"status,omitempty"`
	LastSeenAt      *time.Time             `json:"last_seen_at,omitempty"`
	Language        *string                `json:"language,omitempty"`
	Region          *string                `json:"region,omitempty"`
	IsVerified      *bool                  `json:"is_verified,omitempty"`
	AvatarURL       *string                `json:"avatar_url,omitempty"`
	Bio             *string                `json:"bio,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	VisibilityLevel *string                `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// IsEmpty reports whether the update carries no fields.
func (p *ProfileUpdate) IsEmpty() bool {
	return p.PlatformID == nil && p.Username == nil && p.ExternalID == nil &&
		p.DisplayName == nil && p.URL == nil && p.Status == nil &&
		p.LastSeenAt == nil && p.Language == nil && p.Region == nil &&
		p.IsVerified == nil && p.AvatarURL == nil && p.Bio == nil &&
		p.Metadata == nil && p.VisibilityLevel == nil
}

// PersonProfileLink is the join row between a person and a profile. Its
// visibility level is derived at creation: an explicit caller-supplied
// level wins, otherwise the person's current level is adopted.
type PersonProfileLink struct {
	ID              int64     `json:"id"`
	PersonID        int64     `json:"person_id"`
	ProfileID       int64     `json:"profile_id"`
	Note            *string   `json:"note,omitempty"`
	VisibilityLevel string    `json:"visibility_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// LinkProfilePayload is the payload for linking a profile to a person.
type LinkProfilePayload struct {
	ProfileID       int64   `json:"profile_id" validate:"required,gt=0"`
	Note            *string `json:"note,omitempty"`
	VisibilityLevel *string `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}
