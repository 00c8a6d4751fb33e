// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package dossier

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/dossierd/dossierd/internal/models"
)

// ComputeETag hashes the dossier's identifying state: the person id, the
// person's last modification time, and the per-relation stats. Map keys
// are serialized in sorted order, so equal state always yields the same
// hash. Any visible change to the person or a relation moves a stat
// timestamp or count and therefore the tag.
func ComputeETag(personID int64, personUpdatedAt time.Time, stats models.DossierStats) (string, error) {
	state := map[string]interface{}{
		"person_id":         personID,
		"person_updated_at": personUpdatedAt.UTC().Format(time.RFC3339Nano),
		"stats": map[string]interface{}{
			"profiles":   relationState(stats.Profiles),
			"notes":      relationState(stats.Notes),
			"activities": relationState(stats.Activities),
		},
	}

	canonical, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to serialize etag state: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func relationState(rs models.RelationStats) map[string]interface{} {
	state := map[string]interface{}{"total": rs.Total}
	if rs.LastUpdatedAt != nil {
		state["last_updated_at"] = rs.LastUpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return state
}
