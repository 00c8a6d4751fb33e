// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package stats

import (
	"context"

	"github.com/dossierd/dossierd/internal/models"
)

// OverviewBuilder computes the overview from live data. Implemented by the
// database layer.
type OverviewBuilder interface {
	BuildOverview(ctx context.Context, role string) (*models.Overview, error)
}

// Service serves overviews through the cache.
type Service struct {
	db    OverviewBuilder
	cache *Cache
}

// NewService creates the overview service.
func NewService(db OverviewBuilder, cache *Cache) *Service {
	return &Service{db: db, cache: cache}
}

// Overview returns the role's overview, recomputing on miss, expiry, or
// when forceRefresh is set. The database query runs outside the cache lock;
// two concurrent misses on one partition may both recompute, last write
// wins, both serve consistent data.
func (s *Service) Overview(ctx context.Context, role string, forceRefresh bool) (*models.Overview, models.OverviewMeta, error) {
	if !forceRefresh {
		if overview, meta, ok := s.cache.Get(role); ok {
			return overview, meta, nil
		}
	}

	overview, err := s.db.BuildOverview(ctx, role)
	if err != nil {
		return nil, models.OverviewMeta{}, err
	}
	meta := s.cache.Put(role, overview)
	return overview, meta, nil
}
