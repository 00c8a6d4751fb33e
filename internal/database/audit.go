// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dossierd/dossierd/internal/database/query"
	"github.com/dossierd/dossierd/internal/metrics"
	"github.com/dossierd/dossierd/internal/models"
)

const auditColumns = `id, user_id, username, role, action, resource, resource_id,
	method, path, status_code, ip_address, user_agent, metadata, created_at`

func scanAuditLog(row interface{ Scan(...interface{}) error }) (*models.AuditLog, error) {
	var a models.AuditLog
	var rawMeta []byte
	err := row.Scan(&a.ID, &a.UserID, &a.Username, &a.Role, &a.Action,
		&a.Resource, &a.ResourceID, &a.Method, &a.Path, &a.StatusCode,
		&a.IPAddress, &a.UserAgent, &rawMeta, &a.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	if err := scanMap(rawMeta, &a.Metadata); err != nil {
		return nil, err
	}
	return &a, nil
}

// InsertAuditLog writes one audit record. Callers treat failures as
// non-fatal; the request that produced the record must not fail because
// its audit write did.
func (db *DB) InsertAuditLog(ctx context.Context, entry models.AuditLog) error {
	meta, err := jsonbMap(entry.Metadata)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, query.Rebind(`
		INSERT INTO audit_logs (
			user_id, username, role, action, resource, resource_id, method,
			path, status_code, ip_address, user_agent, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.UserID, entry.Username, entry.Role, entry.Action, entry.Resource,
		entry.ResourceID, entry.Method, entry.Path, entry.StatusCode,
		entry.IPAddress, entry.UserAgent, meta)
	metrics.RecordDBQuery("insert", "audit_logs", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// ListAuditLogs returns audit records newest-first with the filtered total.
// The action filter is a case-insensitive substring match; user and
// resource filters are exact.
func (db *DB) ListAuditLogs(ctx context.Context, f models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	wb := query.NewWhereBuilder()
	if f.UserID != nil {
		wb.AddClause("user_id = ?", *f.UserID)
	}
	wb.AddSearch([]string{"action"}, f.Action)
	if f.Resource != "" {
		wb.AddClause("resource = ?", f.Resource)
	}
	where, args := wb.Build()

	var total int64
	err := db.conn.QueryRowContext(ctx,
		query.Rebind(`SELECT COUNT(*) FROM audit_logs WHERE `+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query.Rebind(
		`SELECT `+auditColumns+` FROM audit_logs WHERE `+where+`
		 ORDER BY id DESC LIMIT ? OFFSET ?`),
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer closeQuietly(rows)

	logs := []models.AuditLog{}
	for rows.Next() {
		a, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *a)
	}
	return logs, total, rows.Err()
}

// ClearAuditLogs deletes every audit record and reports how many were
// removed. The caller records the clearing itself as a fresh entry.
func (db *DB) ClearAuditLogs(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM audit_logs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear audit logs: %w", err)
	}
	return res.RowsAffected()
}
