package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestDefaultsToJSONInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug should be filtered at the default level")
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("info record missing from output: %q", out)
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["key"] != "value" {
		t.Errorf("attribute lost: %v", record)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("trace detail", "component", "engine")
	if !strings.Contains(buf.String(), "component=engine") {
		t.Errorf("text output missing attribute: %q", buf.String())
	}
}

func TestContextFieldsAreInjected(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithSpecName(ctx, "orders-api")
	ctx = WithSchemaVersion(ctx, "actionspec/v1")
	logger.InfoContext(ctx, "validated")

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["request_id"] != "req-123" {
		t.Errorf("request_id missing: %v", record)
	}
	if record["spec"] != "orders-api" {
		t.Errorf("spec missing: %v", record)
	}
	if record["schema_version"] != "actionspec/v1" {
		t.Errorf("schema_version missing: %v", record)
	}
}

func TestEmptyContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.InfoContext(context.Background(), "plain")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected context field: %q", buf.String())
	}
}

func TestGettersOnBareContext(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" || GetSpecName(ctx) != "" || GetSchemaVersion(ctx) != "" {
		t.Error("getters must return empty strings on a bare context")
	}
}
