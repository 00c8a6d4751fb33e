// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package models

import "time"

// Note is a free-form annotation owned by a person, independently
// visibility-tagged.
type Note struct {
	ID              int64     `json:"id"`
	PersonID        int64     `json:"person_id"`
	Title           *string   `json:"title,omitempty"`
	Text            string    `json:"text"`
	Pinned          bool      `json:"pinned"`
	VisibilityLevel string    `json:"visibility_level"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NoteCreate is the payload for creating a note under a person.
// An omitted VisibilityLevel inherits the person's current level.
type NoteCreate struct {
	Title           *string `json:"title,omitempty"`
	Text            string  `json:"text" validate:"required"`
	Pinned          bool    `json:"pinned,omitempty"`
	VisibilityLevel *string `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// NoteUpdate is the partial-update payload for a note.
type NoteUpdate struct {
	Title           *string `json:"title,omitempty"`
	Text            *string `json:"text,omitempty"`
	Pinned          *bool   `json:"pinned,omitempty"`
	VisibilityLevel *string `json:"visibility_level,omitempty" validate:"omitempty,oneof=public restricted"`
}

// IsEmpty reports whether the update carries no fields.
func (n *NoteUpdate) IsEmpty() bool {
	return n.Title == nil && n.Text == nil && n.Pinned == nil && n.VisibilityLevel == nil
}
