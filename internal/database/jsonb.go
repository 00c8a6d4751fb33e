// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package database

import (
	"fmt"

	"github.com/goccy/go-json"
)

// jsonbTags serializes a string slice for a JSONB parameter. A nil slice is
// stored as an empty array so readers never see SQL NULL.
func jsonbTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return data, nil
}

// jsonbMap serializes a map for a JSONB parameter. A nil map is stored as an
// empty object.
func jsonbMap(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		m = map[string]interface{}{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return data, nil
}

// scanTags decodes a JSONB array column into a string slice.
func scanTags(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	if *dst == nil {
		*dst = []string{}
	}
	return nil
}

// scanMap decodes a JSONB object column into a map.
func scanMap(raw []byte, dst *map[string]interface{}) error {
	if len(raw) == 0 {
		*dst = map[string]interface{}{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}
	if *dst == nil {
		*dst = map[string]interface{}{}
	}
	return nil
}
