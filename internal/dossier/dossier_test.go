// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package dossier

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dossierd/dossierd/internal/database"
	"github.com/dossierd/dossierd/internal/models"
)

type mockFetcher struct {
	data       *database.DossierData
	err        error
	gotRole    string
	gotLimits  models.DossierLimits
	gotPersonID int64
}

func (m *mockFetcher) FetchDossierData(_ context.Context, personID int64, role string, limits models.DossierLimits) (*database.DossierData, error) {
	m.gotPersonID = personID
	m.gotRole = role
	m.gotLimits = limits
	return m.data, m.err
}

func testPerson() *models.Person {
	return &models.Person{
		ID:              1,
		FirstName:       "Ada",
		LastName:        "Verne",
		Status:          "active",
		Email:           "ada@example.com",
		PhoneNumber:     "N/A",
		Tags:            []string{},
		Metadata:        map[string]interface{}{},
		VisibilityLevel: "public",
		CreatedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:       time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

// ============================================================
// ETag
// ============================================================

func TestComputeETagDeterministic(t *testing.T) {
	t.Parallel()

	updated := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	last := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	stats := models.DossierStats{
		Profiles:   models.RelationStats{Total: 3, LastUpdatedAt: &last},
		Notes:      models.RelationStats{Total: 0},
		Activities: models.RelationStats{Total: 7, LastUpdatedAt: &last},
	}

	a, err := ComputeETag(1, updated, stats)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeETag(1, updated, stats)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("identical state produced different tags: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("tag length = %d, want 64 hex chars", len(a))
	}
}

func TestComputeETagChangesWithState(t *testing.T) {
	t.Parallel()

	updated := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	base := models.DossierStats{Notes: models.RelationStats{Total: 2}}

	orig, err := ComputeETag(1, updated, base)
	if err != nil {
		t.Fatal(err)
	}

	moreNotes := base
	moreNotes.Notes.Total = 3
	changed, err := ComputeETag(1, updated, moreNotes)
	if err != nil {
		t.Fatal(err)
	}
	if changed == orig {
		t.Error("note count change did not move the tag")
	}

	bumped, err := ComputeETag(1, updated.Add(time.Second), base)
	if err != nil {
		t.Fatal(err)
	}
	if bumped == orig {
		t.Error("person update time change did not move the tag")
	}

	otherPerson, err := ComputeETag(2, updated, base)
	if err != nil {
		t.Fatal(err)
	}
	if otherPerson == orig {
		t.Error("different person produced the same tag")
	}
}

func TestComputeETagTimezoneInsensitive(t *testing.T) {
	t.Parallel()

	utc := time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC)
	offset := utc.In(time.FixedZone("UTC+2", 2*3600))

	a, err := ComputeETag(1, utc, models.DossierStats{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeETag(1, offset, models.DossierStats{})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("same instant in different zones produced different tags")
	}
}

// ============================================================
// Limit clamping
// ============================================================

func TestClampLimits(t *testing.T) {
	t.Parallel()

	s := NewService(nil, 5, 50)
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero takes default", 0, 5},
		{"negative takes default", -3, 5},
		{"in range passes", 20, 20},
		{"max passes", 50, 50},
		{"over max capped", 500, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.ClampLimits(models.DossierLimits{Profiles: tt.in, Notes: tt.in, Activities: tt.in})
			if got.Profiles != tt.want || got.Notes != tt.want || got.Activities != tt.want {
				t.Errorf("ClampLimits(%d) = %+v, want all %d", tt.in, got, tt.want)
			}
		})
	}
}

// ============================================================
// Fetch
// ============================================================

func TestFetchAssemblesDossier(t *testing.T) {
	t.Parallel()

	person := testPerson()
	fetcher := &mockFetcher{data: &database.DossierData{
		Person:     person,
		Profiles:   []models.Profile{},
		Notes:      []models.Note{{ID: 1, PersonID: 1, Text: "observed"}},
		Activities: []models.Activity{},
		Stats: models.DossierStats{
			Notes: models.RelationStats{Total: 4},
		},
	}}

	s := NewService(fetcher, 5, 50)
	d, err := s.Fetch(context.Background(), 1, models.RoleUser, models.DossierLimits{Notes: 100})
	if err != nil {
		t.Fatal(err)
	}

	if fetcher.gotLimits.Notes != 50 {
		t.Errorf("limits not clamped before fetch: %+v", fetcher.gotLimits)
	}
	if fetcher.gotLimits.Profiles != 5 {
		t.Errorf("omitted limit not defaulted: %+v", fetcher.gotLimits)
	}
	if len(d.VisibilityScope) != 1 || d.VisibilityScope[0] != "public" {
		t.Errorf("scope for user role = %v, want [public]", d.VisibilityScope)
	}
	if d.Meta.CanViewAdminSections {
		t.Error("user role can view admin sections")
	}
	if d.Audit.CreatedAt != person.CreatedAt || d.Audit.UpdatedAt != person.UpdatedAt {
		t.Error("audit timestamps do not mirror the person row")
	}
	if d.ETag == "" {
		t.Error("missing etag")
	}
	if d.Stats.Notes.Total != 4 {
		t.Errorf("stats total = %d", d.Stats.Notes.Total)
	}
}

func TestFetchElevatedScope(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{data: &database.DossierData{Person: testPerson()}}
	s := NewService(fetcher, 5, 50)

	d, err := s.Fetch(context.Background(), 1, models.RoleHeadAdmin, models.DossierLimits{})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.VisibilityScope) != 2 {
		t.Errorf("elevated scope = %v, want both levels", d.VisibilityScope)
	}
	if !d.Meta.CanViewAdminSections {
		t.Error("elevated role denied admin sections")
	}
}

func TestFetchPropagatesNotFound(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{err: database.ErrNotFound}
	s := NewService(fetcher, 5, 50)
	if _, err := s.Fetch(context.Background(), 99, models.RoleUser, models.DossierLimits{}); err != database.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ============================================================
// PDF rendering
// ============================================================

func TestRenderPDF(t *testing.T) {
	t.Parallel()

	d := &models.Dossier{
		Person:          testPerson(),
		VisibilityScope: []string{"public"},
		Relations: models.DossierRelations{
			Notes: []models.Note{{ID: 1, Text: "meeting at dock 4", Pinned: true}},
		},
		Stats: models.DossierStats{Notes: models.RelationStats{Total: 1}},
	}

	out, err := RenderPDF(d)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
}

func TestRenderPDFEmptyRelations(t *testing.T) {
	t.Parallel()

	d := &models.Dossier{
		Person:          testPerson(),
		VisibilityScope: []string{"public"},
	}
	out, err := RenderPDF(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 {
		t.Error("empty output for dossier with no relations")
	}
}
