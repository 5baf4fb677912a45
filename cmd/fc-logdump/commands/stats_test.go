package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestStats(t *testing.T) {
	path := writeTestTrace(t, testTraceEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Total Events: 4") {
		t.Errorf("expected total event count, got: %s", output)
	}
	if !strings.Contains(output, "Sessions: 2") {
		t.Errorf("expected session count, got: %s", output)
	}
	if !strings.Contains(output, "Errors: 1") {
		t.Errorf("expected error count, got: %s", output)
	}
	if !strings.Contains(output, "device_pixels:") || !strings.Contains(output, "list_connected_devices:") {
		t.Errorf("expected request type breakdown, got: %s", output)
	}
	if !strings.Contains(output, "Server: 127.0.0.1:7890") {
		t.Errorf("expected server address per session, got: %s", output)
	}
	if !strings.Contains(output, "Device FCA00042: 1 events") {
		t.Errorf("expected per-device event count, got: %s", output)
	}
	// Sessions sorted by first-seen time
	first := strings.Index(output, "[conn-aaa")
	second := strings.Index(output, "[conn-bbb")
	if first == -1 || second == -1 || first > second {
		t.Errorf("expected sessions ordered by first-seen, got: %s", output)
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := writeTestTrace(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events, got: %s", buf.String())
	}
}

func TestStatsMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunStats("/nonexistent/trace.fclog", &buf); err == nil {
		t.Fatal("expected error for missing file")
	}
}
