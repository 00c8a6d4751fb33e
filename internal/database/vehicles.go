// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/dossierd/dossierd/internal/database/query"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/visibility"
)

const vehicleColumns = `id, label, make, model, build_year, license_plate, vin,
	vehicle_type, energy_type, color, mileage_km, last_service_at, metadata,
	visibility_level, created_at, updated_at`

func scanVehicle(row interface{ Scan(...interface{}) error }) (*models.Vehicle, error) {
	var v models.Vehicle
	var rawMeta []byte
	err := row.Scan(&v.ID, &v.Label, &v.Make, &v.Model, &v.BuildYear,
		&v.LicensePlate, &v.VIN, &v.VehicleType, &v.EnergyType, &v.Color,
		&v.MileageKM, &v.LastServiceAt, &rawMeta, &v.VisibilityLevel,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	if err := scanMap(rawMeta, &v.Metadata); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVehicle inserts a vehicle record.
func (db *DB) CreateVehicle(ctx context.Context, vc models.VehicleCreate) (*models.Vehicle, error) {
	level := string(visibility.LevelPublic)
	if vc.VisibilityLevel != nil {
		level = *vc.VisibilityLevel
	}
	meta, err := jsonbMap(vc.Metadata)
	if err != nil {
		return nil, err
	}

	row := db.conn.QueryRowContext(ctx, query.Rebind(`
		INSERT INTO vehicles (
			label, make, model, build_year, license_plate, vin, vehicle_type,
			energy_type, color, mileage_km, last_service_at, metadata,
			visibility_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+vehicleColumns),
		vc.Label, vc.Make, vc.Model, vc.BuildYear, vc.LicensePlate, vc.VIN,
		vc.VehicleType, vc.EnergyType, vc.Color, vc.MileageKM,
		vc.LastServiceAt, meta, level)

	v, err := scanVehicle(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	return v, nil
}

// GetVehicle fetches one vehicle within the caller's visibility scope.
func (db *DB) GetVehicle(ctx context.Context, id int64, role string) (*models.Vehicle, error) {
	wb := query.NewWhereBuilder()
	wb.AddClause("id = ?", id)
	wb.ApplyVisibility(role, "")
	where, args := wb.Build()

	row := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT `+vehicleColumns+` FROM vehicles WHERE `+where), args...)
	return scanVehicle(row)
}

// VehicleFilter narrows ListVehicles results. Search matches label, license
// plate, and VIN case-insensitively.
type VehicleFilter struct {
	Search string
	Limit  int
	Offset int
}

// ListVehicles returns visible vehicles newest-first with the filtered total.
func (db *DB) ListVehicles(ctx context.Context, role string, f VehicleFilter) ([]models.Vehicle, int64, error) {
	wb := query.NewWhereBuilder()
	wb.ApplyVisibility(role, "")
	wb.AddSearch([]string{"label", "license_plate", "vin"}, f.Search)
	where, args := wb.Build()

	var total int64
	err := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT COUNT(*) FROM vehicles WHERE `+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+vehicleColumns+` FROM vehicles WHERE `+where+`
		 ORDER BY COALESCE(updated_at, created_at) DESC LIMIT ? OFFSET ?`),
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer closeQuietly(rows)

	vehicles := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, total, rows.Err()
}

// UpdateVehicle applies a partial update to a visible vehicle.
func (db *DB) UpdateVehicle(ctx context.Context, id int64, role string, patch models.VehicleUpdate) (*models.Vehicle, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFields
	}
	if _, err := db.GetVehicle(ctx, id, role); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Label != nil {
		add("label", *patch.Label)
	}
	if patch.Make != nil {
		add("make", *patch.Make)
	}
	if patch.Model != nil {
		add("model", *patch.Model)
	}
	if patch.BuildYear != nil {
		add("build_year", *patch.BuildYear)
	}
	if patch.LicensePlate != nil {
		add("license_plate", *patch.LicensePlate)
	}
	if patch.VIN != nil {
		add("vin", *patch.VIN)
	}
	if patch.VehicleType != nil {
		add("vehicle_type", *patch.VehicleType)
	}
	if patch.EnergyType != nil {
		add("energy_type", *patch.EnergyType)
	}
	if patch.Color != nil {
		add("color", *patch.Color)
	}
	if patch.MileageKM != nil {
		add("mileage_km", *patch.MileageKM)
	}
	if patch.LastServiceAt != nil {
		add("last_service_at", *patch.LastServiceAt)
	}
	if patch.Metadata != nil {
		meta, err := jsonbMap(patch.Metadata)
		if err != nil {
			return nil, err
		}
		add("metadata", meta)
	}
	if patch.VisibilityLevel != nil {
		add("visibility_level", *patch.VisibilityLevel)
	}
	args = append(args, id)

	row := db.conn.QueryRowContext(ctx, query.Rebind(fmt.Sprintf(
		`UPDATE vehicles SET %s WHERE id = ? RETURNING %s`,
		strings.Join(sets, ", "), vehicleColumns)), args...)
	return scanVehicle(row)
}

// DeleteVehicle removes a visible vehicle. Activities referencing it block
// the delete with ErrConflict via the foreign key.
func (db *DB) DeleteVehicle(ctx context.Context, id int64, role string) error {
	if _, err := db.GetVehicle(ctx, id, role); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx,
		query.Rebind(`DELETE FROM vehicles WHERE id = ?`), id)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
