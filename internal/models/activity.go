// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import "time"

// Activity is an observed event attributed to a person, optionally tied to
// a vehicle, a profile, a community, or a free-form item.
type Activity struct {
	ID              int64                  `json:"id"`
	PersonID        int64                  `json:"person_id"`
	ActivityType    string                 `json:"activity_type"`
	OccurredAt      *time.Time             `json:"occurred_at,omitempty"`
	VehicleID       *int64                 `json:"vehicle_id,omitempty"`
	ProfileID       *int64                 `json:"profile_id,omitempty"`
	CommunityID     *int64                 `json:"community_id,omitempty"`
	Item            *string                `json:"item,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Details         map[string]interface{} `json:"details"`
	Severity        *string                `json:"severity,omitempty"`
	Source          *string                `json:"source,omitempty"`
	IPAddress       *string                `json:"ip_address,omitempty"`
	UserAgent       *string                `json:"user_agent,omitempty"`
	GeoLocation     *string                `json:"geo_location,omitempty"`
	CreatedBy       *string                `json:"created_by,omitempty"`
	VisibilityLevel string                 `json:"visibility_level"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ActivityCreate is the payload for creating an activity. At least one of
// VehicleID, ProfileID, CommunityID, or Item must be supplied.
type ActivityCreate struct {
	PersonID        int64                  `json:"person_id" validate:"required,gt=0"`
	ActivityType    string                 `json:"activity_type" validate:"required"`
	OccurredAt      *time.Time             `json:"occurred_at,omitempty"`
	VehicleID       *int64                 `json:"vehicle_id,omitempty"`
	ProfileID       *int64                 `json:"profile_id,omitempty"`
	CommunityID     *int64                 `json:"community_id,omitempty"`
	Item            *string                `json:"item,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Details         map[string]interface{} `json:"details,omitempty"`
	Severity        *string                `json:"severity,omitempty"`
	Source          *string                `json:"source,omitempty"`
	IPAddress       *string                `json:"ip_address,omitempty"`
	UserAgent       *string                `json:"user_agent,omitempty"`
	GeoLocation     *string                `json:"geo_location,omitempty"`
	CreatedBy       *string                `json:"created_by,omitempty"`
	VisibilityLevel *string                `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// HasSubject reports whether the activity names at least one subject
// (vehicle, profile, community, or item).
func (a *ActivityCreate) HasSubject() bool {
	return a.VehicleID != nil || a.ProfileID != nil || a.CommunityID != nil || a.Item != nil
}

// ActivityUpdate is the partial-update payload for an activity.
type ActivityUpdate struct {
	ActivityType    *string                `json:"activity_type,omitempty"`
	OccurredAt      *time.Time             `json:"occurred_at,omitempty"`
	VehicleID       *int64                 `json:"vehicle_id,omitempty"`
	ProfileID       *int64                 `json:"profile_id,omitempty"`
	CommunityID     *int64                 `json:"community_id,omitempty"`
	Item            *string                `json:"item,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Details         map[string]interface{} `json:"details,omitempty"`
	Severity        *string                `json:"severity,omitempty"`
	Source          *string                `json:"source,omitempty"`
	IPAddress       *string                `json:"ip_address,omitempty"`
	UserAgent       *string                `json:"user_agent,omitempty"`
	GeoLocation     *string                `json:"geo_location,omitempty"`
	VisibilityLevel *string                `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// IsEmpty reports whether the update carries no fields.
func (a *ActivityUpdate) IsEmpty() bool {
	return a.ActivityType == nil && a.OccurredAt == nil && a.VehicleID == nil &&
		a.ProfileID == nil && a.CommunityID == nil && a.Item == nil &&
		a.Notes == nil && a.Details == nil && a.Severity == nil &&
		a.Source == nil && a.IPAddress == nil && a.UserAgent == nil &&
		a.GeoLocation == nil && a.VisibilityLevel == nil
}
