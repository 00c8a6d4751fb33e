// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_ConfiguresLevel(t *testing.T) {
	defer Init(DefaultConfig())

	Init(Config{Level: "debug", Format: "json"})
	if GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", GetLevel())
	}

	Init(Config{Level: "error", Format: "json"})
	if GetLevel() != zerolog.ErrorLevel {
		t.Errorf("Expected error level, got %v", GetLevel())
	}
}

func TestInit_DefaultsOnEmptyConfig(t *testing.T) {
	defer Init(DefaultConfig())

	Init(Config{})
	if GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level default, got %v", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"WARN", zerolog.WarnLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewTestLogger_CapturesOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	logger.Info().Str("key", "value").Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected log output to contain message, got %q", output)
	}
	if !strings.Contains(output, `"key":"value"`) {
		t.Errorf("Expected structured field in output, got %q", output)
	}
}

func TestSetLogger_ReplacesGlobal(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	Info().Msg("replaced")

	if !strings.Contains(buf.String(), "replaced") {
		t.Errorf("Expected replaced logger to capture output, got %q", buf.String())
	}
}

func TestCtx_AddsRequestID(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	ctx := ContextWithRequestID(context.Background(), "req-123")
	Ctx(ctx).Info().Msg("with id")

	output := buf.String()
	if !strings.Contains(output, `"request_id":"req-123"`) {
		t.Errorf("Expected request_id field, got %q", output)
	}
}

func TestCtx_NoRequestID(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	Ctx(context.Background()).Info().Msg("without id")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("Expected no request_id field, got %q", buf.String())
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("Expected empty request ID, got %q", id)
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()
	if a == b {
		t.Error("Expected distinct request IDs")
	}
	if len(a) != 36 {
		t.Errorf("Expected UUID format, got %q", a)
	}
}
