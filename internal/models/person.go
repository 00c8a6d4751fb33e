// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import "time"

// Person is the central identity record. Every person carries a visibility
// level; dependent rows (notes, activities, profile links) inherit it at
// creation unless the caller supplies an explicit level.
type Person struct {
	ID              int64                  `json:"id"`
	FirstName       string                 `json:"first_name"`
	LastName        string                 `json:"last_name"`
	DateOfBirth     *time.Time             `json:"date_of_birth,omitempty"`
	Gender          string                 `json:"gender"`
	Email           string                 `json:"email"`
	PhoneNumber     string                 `json:"phone_number"`
	AddressLine1    *string                `json:"address_line1,omitempty"`
	AddressLine2    *string                `json:"address_line2,omitempty"`
	PostalCode      *string                `json:"postal_code,omitempty"`
	City            *string                `json:"city,omitempty"`
	RegionState     *string                `json:"region_state,omitempty"`
	Country         *string                `json:"country,omitempty"`
	Status          string                 `json:"status"`
	ArchivedAt      *time.Time             `json:"archived_at,omitempty"`
	Nationality     *string                `json:"nationality,omitempty"`
	Occupation      *string                `json:"occupation,omitempty"`
	RiskLevel       *string                `json:"risk_level,omitempty"`
	Tags            []string               `json:"tags"`
	Notes           *string                `json:"notes,omitempty"`
	Metadata        map[string]interface{} `json:"metadata"`
	VisibilityLevel string                 `json:"visibility_level"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// PersonCreate is the payload for creating a person.
type PersonCreate struct {
	FirstName       string                 `json:"first_name" validate:"required,min=1"`
	LastName        string                 `json:"last_name" validate:"required,min=1"`
	DateOfBirth     *time.Time             `json:"date_of_birth,omitempty"`
	Gender          string                 `json:"gender,omitempty"`
	Email           string                 `json:"email,omitempty"`
	PhoneNumber     string                 `json:"phone_number,omitempty"`
	AddressLine1    *string                `json:"address_line1,omitempty"`
	AddressLine2    *string                `json:"address_line2,omitempty"`
	PostalCode      *string                `json:"postal_code,omitempty"`
	City            *string                `json:"city,omitempty"`
	RegionState     *string                `json:"region_state,omitempty"`
	Country         *string                `json:"country,omitempty"`
	Status          string                 `json:"status,omitempty"`
	Nationality     *string                `json:"nationality,omitempty"`
	Occupation      *string                `json:"occupation,omitempty"`
	RiskLevel       *string                `json:"risk_level,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	VisibilityLevel *string                `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// ApplyDefaults fills the documented default values for omitted fields.
func (p *PersonCreate) ApplyDefaults() {
	if p.Gender == "" {
		p.Gender = "Unspecified"
	}
	if p.Email == "" {
		p.Email = "not_provided@example.com"
	}
	if p.PhoneNumber == "" {
		p.PhoneNumber = "N/A"
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Metadata == nil {
		p.Metadata = map[string]interface{}{}
	}
}

// PersonUpdate is the partial-update payload for a person. Nil fields are
// left unchanged. A non-nil VisibilityLevel triggers the opt-in cascade of
// the new level to the person's notes, activities, and profile links.
type PersonUpdate struct {
	FirstName       *string                `json:"first_name,omitempty" validate:"omitempty,min=1"`
	LastName        *string                `json:"last_name,omitempty" validate:"omitempty,min=1"`
	DateOfBirth     *time.Time             `json:"date_of_birth,omitempty"`
	Gender          *string                `json:"gender,omitempty"`
	Email           *string                `json:"email,omitempty"`
	PhoneNumber     *string                `json:"phone_number,omitempty"`
	AddressLine1    *string                `json:"address_line1,omitempty"`
	AddressLine2    *string                `json:"address_line2,omitempty"`
	PostalCode      *string                `json:"postal_code,omitempty"`
	City            *string                `json:"city,omitempty"`
	RegionState     *string                `json:"region_state,omitempty"`
	Country         *string                `json:"country,omitempty"`
	Status          *string                `json:"status,omitempty"`
	ArchivedAt      *time.Time             `json:"archived_at,omitempty"`
	Nationality     *string                `json:"nationality,omitempty"`
	Occupation      *string                `json:"occupation,omitempty"`
	RiskLevel       *string                `json:"risk_level,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	VisibilityLevel *string                `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// IsEmpty reports whether the update carries no fields.
func (p *PersonUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.DateOfBirth == nil &&
		p.Gender == nil && p.Email == nil && p.PhoneNumber == nil &&
		p.AddressLine1 == nil && p.AddressLine2 == nil && p.PostalCode == nil &&
		p.City == nil && p.RegionState == nil && p.Country == nil &&
		p.Status == nil && p.ArchivedAt == nil && p.Nationality == nil &&
		p.Occupation == nil && p.RiskLevel == nil && p.Tags == nil &&
		p.Notes == nil && p.Metadata == nil && p.VisibilityLevel == nil
}
