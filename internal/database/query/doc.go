// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

// Package query provides SQL query building utilities for the database package.
//
// This package reduces code duplication and provides type-safe query construction
// for parameterized SQL WHERE clauses. It ensures consistent parameter handling
// and prevents SQL injection vulnerabilities.
//
// # Overview
//
// The WhereBuilder is the primary component, providing a fluent interface for
// constructing WHERE clauses with properly parameterized queries:
//
//	wb := query.NewWhereBuilder()
//	wb.ApplyVisibility(role, "p", "n")
//	wb.AddSearch([]string{"p.full_name", "p.alias"}, search)
//	whereClause, args := wb.Build()
//	// Result: "p.visibility_level = ? AND n.visibility_level = ? AND (p.full_name ILIKE ? OR p.alias ILIKE ?)"
//
// # Visibility Filtering
//
// ApplyVisibility is the single application point for row-level visibility.
// Every alias in a query that joins a visibility-bearing table must be named
// in the call; a join that filters only some of its visibility columns
// returns rows the caller is not allowed to see. Queries in the database
// package therefore build their alias list next to the FROM/JOIN clause they
// describe, where a mismatch is visible in review.
//
// # Placeholder Binding
//
// Builders accumulate driver-neutral ? markers. Statements are rewritten to
// PostgreSQL's $1..$n form with Rebind immediately before execution:
//
//	sql := fmt.Sprintf("SELECT * FROM persons p WHERE %s", whereClause)
//	rows, err := db.QueryContext(ctx, query.Rebind(sql), args...)
package query
