// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package validation

import (
	"strings"
	"testing"
)

type testCreateRequest struct {
	Username string  `validate:"required,min=3,max=64"`
	Role     string  `validate:"required,oneof=user admin head_admin"`
	Level    *string `validate:"omitempty,oneof=public restricted"`
	Limit    int     `validate:"min=0,max=50"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	level := "restricted"
	req := testCreateRequest{
		Username: "analyst",
		Role:     "admin",
		Level:    &level,
		Limit:    5,
	}

	if err := ValidateStruct(&req); err != nil {
		t.Errorf("Expected no validation error, got %v", err)
	}
}

func TestValidateStruct_OmittedOptionalField(t *testing.T) {
	t.Parallel()

	req := testCreateRequest{Username: "analyst", Role: "user"}

	if err := ValidateStruct(&req); err != nil {
		t.Errorf("Expected nil Level to pass omitempty, got %v", err)
	}
}

func TestValidateStruct_RequiredMissing(t *testing.T) {
	t.Parallel()

	req := testCreateRequest{Role: "user"}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error for missing username")
	}

	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(errs))
	}
	if errs[0].Field() != "Username" {
		t.Errorf("Expected Username field error, got %q", errs[0].Field())
	}
	if errs[0].Tag() != "required" {
		t.Errorf("Expected required tag, got %q", errs[0].Tag())
	}
	if !strings.Contains(errs[0].Error(), "required") {
		t.Errorf("Expected readable message, got %q", errs[0].Error())
	}
}

func TestValidateStruct_OneofRejected(t *testing.T) {
	t.Parallel()

	bad := "secret"
	req := testCreateRequest{Username: "analyst", Role: "user", Level: &bad}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error for bad visibility level")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("Expected oneof message, got %q", err.Error())
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	t.Parallel()

	req := testCreateRequest{Username: "ab", Role: "root", Limit: 100}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("Expected 3 errors, got %d: %v", len(err.Errors()), err)
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	req := testCreateRequest{Role: "user"}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR code, got %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "Username" {
		t.Errorf("Expected field detail, got %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	req := testCreateRequest{}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR code, got %q", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("Expected fields detail for multi-error case, got %v", apiErr.Details)
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("Expected singleton validator instance")
	}
}
