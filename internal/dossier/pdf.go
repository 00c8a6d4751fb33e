// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package dossier

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dossierd/dossierd/internal/models"
)

// RenderPDF renders an already-fetched dossier. It must be given the same
// Fetch result the JSON view would serve, so the document can never show
// rows the caller's role filtered out.
func RenderPDF(d *models.Dossier) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Dossier: %s %s", d.Person.FirstName, d.Person.LastName), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, fmt.Sprintf("Dossier: %s %s", d.Person.FirstName, d.Person.LastName),
		"", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s  |  Scope: %s",
		time.Now().UTC().Format("2006-01-02 15:04 UTC"), scopeLabel(d.VisibilityScope)),
		"", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	writePersonSection(pdf, d.Person)
	writeProfilesSection(pdf, d.Relations.Profiles, d.Stats.Profiles)
	writeNotesSection(pdf, d.Relations.Notes, d.Stats.Notes)
	writeActivitiesSection(pdf, d.Relations.Activities, d.Stats.Activities)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render dossier pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func scopeLabel(scope []string) string {
	if len(scope) == 0 {
		return "none"
	}
	label := scope[0]
	for _, s := range scope[1:] {
		label += ", " + s
	}
	return label
}

func sectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 8, title, "", 1, "L", true, 0, "")
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "", 10)
}

// emptyNotice marks a relation with no rows inside the caller's scope. The
// wording deliberately does not distinguish "none exist" from "none
// visible".
func emptyNotice(pdf *fpdf.Fpdf, what string) {
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("No %s within visibility scope.", what), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Ln(2)
}

func writeField(pdf *fpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, value, "", "L", false)
}

func writePersonSection(pdf *fpdf.Fpdf, p *models.Person) {
	sectionHeader(pdf, "Person")
	writeField(pdf, "Name", p.FirstName+" "+p.LastName)
	writeField(pdf, "Status", p.Status)
	writeField(pdf, "Email", p.Email)
	writeField(pdf, "Phone", p.PhoneNumber)
	if p.DateOfBirth != nil {
		writeField(pdf, "Date of birth", p.DateOfBirth.Format("2006-01-02"))
	}
	if p.Nationality != nil {
		writeField(pdf, "Nationality", *p.Nationality)
	}
	if p.Occupation != nil {
		writeField(pdf, "Occupation", *p.Occupation)
	}
	if p.RiskLevel != nil {
		writeField(pdf, "Risk level", *p.RiskLevel)
	}
	if len(p.Tags) > 0 {
		writeField(pdf, "Tags", scopeLabel(p.Tags))
	}
	writeField(pdf, "Visibility", p.VisibilityLevel)
	pdf.Ln(3)
}

func writeProfilesSection(pdf *fpdf.Fpdf, profiles []models.Profile, stats models.RelationStats) {
	sectionHeader(pdf, fmt.Sprintf("Profiles (%d total)", stats.Total))
	if len(profiles) == 0 {
		emptyNotice(pdf, "profiles")
		return
	}
	for _, p := range profiles {
		line := fmt.Sprintf("%s @ %s", p.Username, p.PlatformName)
		if p.DisplayName != nil {
			line += fmt.Sprintf(" (%s)", *p.DisplayName)
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		if p.URL != nil {
			pdf.CellFormat(0, 5, *p.URL, "", 1, "L", false, 0, "")
		}
		if p.LinkNote != nil {
			pdf.MultiCell(0, 5, "Note: "+*p.LinkNote, "", "L", false)
		}
		pdf.Ln(1)
	}
	pdf.Ln(2)
}

func writeNotesSection(pdf *fpdf.Fpdf, notes []models.Note, stats models.RelationStats) {
	sectionHeader(pdf, fmt.Sprintf("Notes (%d total)", stats.Total))
	if len(notes) == 0 {
		emptyNotice(pdf, "notes")
		return
	}
	for _, n := range notes {
		title := "Untitled"
		if n.Title != nil {
			title = *n.Title
		}
		if n.Pinned {
			title += " [pinned]"
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, n.Text, "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(2)
}

func writeActivitiesSection(pdf *fpdf.Fpdf, activities []models.Activity, stats models.RelationStats) {
	sectionHeader(pdf, fmt.Sprintf("Activities (%d total)", stats.Total))
	if len(activities) == 0 {
		emptyNotice(pdf, "activities")
		return
	}
	for _, a := range activities {
		when := a.CreatedAt
		if a.OccurredAt != nil {
			when = *a.OccurredAt
		}
		line := fmt.Sprintf("%s  %s", when.UTC().Format("2006-01-02 15:04"), a.ActivityType)
		if a.Severity != nil {
			line += fmt.Sprintf(" [%s]", *a.Severity)
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		if a.Notes != nil {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 5, *a.Notes, "", "L", false)
		}
		pdf.Ln(1)
	}
}
