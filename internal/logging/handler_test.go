package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextHandlerAddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithGigID(ctx, "gig-9")
	logger.InfoContext(ctx, "saved step")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["gig_id"] != "gig-9" {
		t.Fatalf("gig_id = %v, want gig-9", entry["gig_id"])
	}
	if _, ok := entry["vendor_id"]; ok {
		t.Fatalf("vendor_id should be absent when not set")
	}
}

func TestContextHandlerKeepsAttrsAcrossWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "wizard")

	logger.InfoContext(ContextWithVendorID(context.Background(), "v1"), "advance")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["component"] != "wizard" || entry["vendor_id"] != "v1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
