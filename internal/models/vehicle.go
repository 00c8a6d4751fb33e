// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import "time"

// Vehicle is a registered vehicle record, independently visibility-tagged.
type Vehicle struct {
	ID              int64                  `json:"id"`
	Label           string                 `json:"label"`
	Make            *string                `json:"make,omitempty"`
	Model           *string                `json:"model,omitempty"`
	BuildYear       *int                   `json:"build_year,omitempty"`
	LicensePlate    *string                `json:"license_plate,omitempty"`
	VIN             *string                `json:"vin,omitempty"`
	VehicleType     *string                `json:"vehicle_type,omitempty"`
	EnergyType      *string                `json:"energy_type,omitempty"`
	Color           *string                `json:"color,omitempty"`
	MileageKM       *int                   `json:"mileage_km,omitempty"`
	LastServiceAt   *time.Time             `json:"last_service_at,omitempty"`
	Metadata        map[string]interface{} `json:"metadata"`
	VisibilityLevel string                 `json:"visibility_level"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// VehicleCreate is the payload for creating a vehicle.
type VehicleCreate struct {
	Label           string                 `json:"label" validate:"required"`
	Make            *string                `json:"make,omitempty"`
	Model           *string                `json:"model,omitempty"`
	BuildYear       *int                   `json:"build_year,omitempty"`
	LicensePlate    *string                `json:"license_plate,omitempty"`
	VIN             *string                `json:"vin,omitempty"`
	VehicleType     *string                `json:"vehicle_type,omitempty"`
	EnergyType      *string                `json:"energy_type,omitempty"`
	Color           *string                `json:"color,omitempty"`
	MileageKM       *int                   `json:"mileage_km,omitempty"`
	LastServiceAt   *time.Time             `json:"last_service_at,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	VisibilityLevel *string                `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// VehicleUpdate is the partial-update payload for a vehicle.
type VehicleUpdate struct {
	Label           *string                `json:"label,omitempty"`
	Make            *string                `json:"make,omitempty"`
	Model           *string                `json:"model,omitempty"`
	BuildYear       *int                   `json:"build_year,omitempty"`
	LicensePlate    *string                `json:"license_plate,omitempty"`
	VIN             *string                `json:"vin,omitempty"`
	VehicleType     *string                `json:"vehicle_type,omitempty"`
	EnergyType      *string                `json:"energy_type,omitempty"`
	Color           *string                `json:"color,omitempty"`
	MileageKM       *int                   `json:"mileage_km,omitempty"`
	LastServiceAt   *time.Time             `json:"last_service_at,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	VisibilityLevel *string                `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// IsEmpty reports whether the update carries no fields.
func (v *VehicleUpdate) IsEmpty() bool {
	return v.Label == nil && v.Make == nil && v.Model == nil &&
		v.BuildYear == nil && v.LicensePlate == nil && v.VIN == nil &&
		v.VehicleType == nil && v.EnergyType == nil && v.Color == nil &&
		v.MileageKM == nil && v.LastServiceAt == nil && v.Metadata == nil &&
		v.VisibilityLevel == nil
}
