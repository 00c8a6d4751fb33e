// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

// Package query provides SQL query building utilities for the database package.
// It reduces code duplication and provides type-safe query construction.
//
// The central contract is ApplyVisibility: every table alias in a query that
// carries a visibility_level column must be listed in a single call, so that
// "forgot to filter this alias" is an omission visible at the call site
// rather than a silent runtime leak.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/dossierd/dossierd/internal/visibility"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
// It ensures consistent parameter handling and reduces SQL injection risks.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.ApplyVisibility(role, "p", "n")
//	wb.AddSearch([]string{"p.full_name", "p.alias"}, search)
//	whereClause, args := wb.Build()
//	// p.visibility_level = ? AND n.visibility_level = ? AND (...)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
// This is useful for custom conditions not covered by helper methods.
//
// Parameters:
//   - clause: SQL condition fragment (e.g., "p.person_id = ?")
//   - args: Arguments to bind to placeholders in the clause
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// ApplyVisibility adds the role's visibility predicate for every listed
// table alias. Elevated roles contribute no predicate. Each alias must own
// a visibility_level column; passing all visibility-bearing aliases of a
// join through one call is the correctness contract for filtered reads.
func (wb *WhereBuilder) ApplyVisibility(role string, aliases ...string) *WhereBuilder {
	for _, alias := range aliases {
		columnRef := "visibility_level"
		if alias != "" {
			columnRef = alias + ".visibility_level"
		}
		clause, arg, ok := visibility.FilterPredicate(role, columnRef)
		if !ok {
			continue
		}
		wb.clauses = append(wb.clauses, clause)
		wb.args = append(wb.args, arg)
	}
	return wb
}

// AddIn adds an IN clause over the given column.
// Generates "col IN (?, ?, ...)" with proper parameterization.
// An empty value list is skipped.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) > 0 {
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = "?"
			wb.args = append(wb.args, v)
		}
		wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	}
	return wb
}

// AddSearch adds a case-insensitive substring match ORed across the given
// columns. An empty term is skipped.
//
// Generates "(col1 ILIKE ? OR col2 ILIKE ?)" with the term wrapped in
// wildcards.
func (wb *WhereBuilder) AddSearch(columns []string, term string) *WhereBuilder {
	if term == "" || len(columns) == 0 {
		return wb
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + " ILIKE ?"
		wb.args = append(wb.args, "%"+term+"%")
	}
	wb.clauses = append(wb.clauses, "("+strings.Join(parts, " OR ")+")")
	return wb
}

// AddDateRange adds start and/or end timestamp filters on the given column.
// Nil bounds are skipped, allowing flexible range queries.
func (wb *WhereBuilder) AddDateRange(column string, from, to *time.Time) *WhereBuilder {
	if from != nil {
		wb.clauses = append(wb.clauses, column+" >= ?")
		wb.args = append(wb.args, *from)
	}
	if to != nil {
		wb.clauses = append(wb.clauses, column+" <= ?")
		wb.args = append(wb.args, *to)
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
//
// Returns:
//   - string: Complete WHERE clause (without "WHERE" keyword)
//   - []interface{}: Arguments to bind to placeholders
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
// Useful for direct SQL construction without manual prefix addition.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// Rebind rewrites ? placeholders into PostgreSQL's positional $1..$n form.
// Builders accumulate driver-neutral ? markers; call Rebind once on the
// assembled statement immediately before execution.
func Rebind(sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(fmt.Sprintf("%d", n))
			continue
		}
		b.WriteByte(sql[i])
	}
	return b.String()
}
