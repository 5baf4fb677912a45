package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/log"
)

// writeTestTrace writes a small trace file and returns its path.
func writeTestTrace(t *testing.T, events []log.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trace.fclog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create trace file: %v", err)
	}
	for _, ev := range events {
		logger.Log(ev)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close trace file: %v", err)
	}
	return path
}

func testTraceEvents() []log.Event {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	return []log.Event{
		{
			Timestamp:    base,
			ConnectionID: "conn-aaaa-1111",
			Direction:    log.DirectionOut,
			Category:     log.CategoryMessage,
			RemoteAddr:   "127.0.0.1:7890",
			Message:      &log.MessageEvent{Sequence: 1, Type: "list_connected_devices"},
		},
		{
			Timestamp:    base.Add(5 * time.Millisecond),
			ConnectionID: "conn-aaaa-1111",
			Direction:    log.DirectionIn,
			Category:     log.CategoryMessage,
			RemoteAddr:   "127.0.0.1:7890",
			Message:      &log.MessageEvent{Sequence: 1},
		},
		{
			Timestamp:    base.Add(10 * time.Millisecond),
			ConnectionID: "conn-aaaa-1111",
			Direction:    log.DirectionOut,
			Category:     log.CategoryMessage,
			RemoteAddr:   "127.0.0.1:7890",
			DeviceSerial: "FCA00042",
			Message:      &log.MessageEvent{Sequence: 2, Type: "device_pixels", Size: 1536},
		},
		{
			Timestamp:    base.Add(20 * time.Millisecond),
			ConnectionID: "conn-bbbb-2222",
			Direction:    log.DirectionIn,
			Category:     log.CategoryError,
			RemoteAddr:   "10.0.0.5:7890",
			Error:        &log.ErrorEventData{Message: "malformed frame", Context: "decode reply"},
		},
	}
}

func TestExportJSONL(t *testing.T) {
	path := writeTestTrace(t, testTraceEvents())

	out := filepath.Join(t.TempDir(), "out.jsonl")
	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 JSONL lines, got %d", len(lines))
	}
	for i, line := range lines {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestExportCSV(t *testing.T) {
	path := writeTestTrace(t, testTraceEvents())

	out := filepath.Join(t.TempDir(), "out.csv")
	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(readFile(t, out))).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 5 { // header + 4 events
		t.Fatalf("expected 5 CSV records, got %d", len(records))
	}
	if records[0][0] != "timestamp" {
		t.Errorf("expected header row, got %v", records[0])
	}

	// Pixel push row carries type, sequence and device serial.
	pixels := records[3]
	if pixels[5] != "FCA00042" {
		t.Errorf("expected device serial column, got %v", pixels)
	}
	if pixels[6] != "device_pixels" || pixels[7] != "2" {
		t.Errorf("expected type and sequence columns, got %v", pixels)
	}

	// Untyped reply row is labeled as a reply.
	if records[2][6] != "reply" {
		t.Errorf("expected reply label for untyped message, got %v", records[2])
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	path := writeTestTrace(t, testTraceEvents())
	if err := RunExport(path, "xml", ""); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
