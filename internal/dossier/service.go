// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

// Package dossier assembles the aggregate person view: the person row,
// bounded visibility-filtered relations, per-relation stats, and a content
// hash that doubles as the HTTP ETag.
package dossier

import (
	"context"

	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/visibility"
)

// Fetcher loads the raw dossier material. Implemented by the database layer.
type Fetcher interface {
	FetchDossierData(ctx context.Context, personID int64, role string, limits models.DossierLimits) (*database.DossierData, error)
}

// Service builds dossiers with configured limit bounds.
type Service struct {
	db           Fetcher
	defaultLimit int
	maxLimit     int
}

// NewService creates a dossier service. defaultLimit fills omitted relation
// limits; maxLimit caps caller-supplied ones.
func NewService(db Fetcher, defaultLimit, maxLimit int) *Service {
	return &Service{db: db, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// ClampLimits normalizes caller-supplied relation limits: non-positive
// values take the default, oversized ones are capped.
func (s *Service) ClampLimits(limits models.DossierLimits) models.DossierLimits {
	return models.DossierLimits{
		Profiles:   s.clamp(limits.Profiles),
		Notes:      s.clamp(limits.Notes),
		Activities: s.clamp(limits.Activities),
	}
}

func (s *Service) clamp(n int) int {
	if n <= 0 {
		return s.defaultLimit
	}
	if n > s.maxLimit {
		return s.maxLimit
	}
	return n
}

// Fetch builds a complete dossier for one person as seen by the given role.
// The ETag is recomputed from current data on every call; there is no
// caching layer in front of it.
func (s *Service) Fetch(ctx context.Context, personID int64, role string, limits models.DossierLimits) (*models.Dossier, error) {
	limits = s.ClampLimits(limits)

	data, err := s.db.FetchDossierData(ctx, personID, role, limits)
	if err != nil {
		return nil, err
	}

	scope := []string{}
	for _, level := range visibility.AllowedLevels(role) {
		scope = append(scope, string(level))
	}

	d := &models.Dossier{
		Person:          data.Person,
		VisibilityScope: scope,
		Relations: models.DossierRelations{
			Profiles:   data.Profiles,
			Notes:      data.Notes,
			Activities: data.Activities,
		},
		Stats: data.Stats,
		Audit: models.DossierAudit{
			CreatedAt: data.Person.CreatedAt,
			UpdatedAt: data.Person.UpdatedAt,
		},
		Meta: models.DossierMeta{
			CanViewAdminSections: visibility.IsElevated(role),
			Limits:               limits,
		},
	}

	etag, err := ComputeETag(data.Person.ID, data.Person.UpdatedAt, data.Stats)
	if err != nil {
		return nil, err
	}
	d.ETag = etag
	return d, nil
}
