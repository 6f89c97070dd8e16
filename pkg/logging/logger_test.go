package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"WARNING", WarnLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("Unexpected levels: %s, %s", entries[0].Level, entries[1].Level)
	}
}

func TestJSONLogger_WithSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)
	child := logger.With(Component("store"), RecordType("Order"))

	logger.Info("parent")
	child.Debug("child", Value("old", 7), Value("new", nil))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields != nil {
		t.Errorf("Parent entry should carry no fields, got %v", entries[0].Fields)
	}
	f := entries[1].Fields
	if f["component"] != "store" || f["record_type"] != "Order" {
		t.Errorf("Preset fields missing: %v", f)
	}
	if f["old"] != "7" {
		t.Errorf("old = %v, want \"7\"", f["old"])
	}
	if v, ok := f["new"]; !ok || v != nil {
		t.Errorf("new = %v (present %v), want nil", v, ok)
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	logger.SetLevel(ErrorLevel)

	if logger.GetLevel() != ErrorLevel {
		t.Fatalf("GetLevel() = %v, want ErrorLevel", logger.GetLevel())
	}
	logger.Warn("dropped")
	if buf.Len() != 0 {
		t.Error("Expected no output below ErrorLevel")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestJSONLogger_WriteFailureIsSilent(t *testing.T) {
	logger := NewJSONLogger(failingWriter{}, DebugLevel)
	logger.Error("still fine", Error(errors.New("boom")))
}

func TestErrorField(t *testing.T) {
	if f := Error(nil); f.Key != "error" || f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
	if f := Error(errors.New("x")); f.Value != "x" {
		t.Errorf("Error(x) = %+v", f)
	}
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, DebugLevel))
	t.Cleanup(func() { SetDefaultLogger(nil) })

	OrDefault(nil).Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("Default logger not used: %q", buf.String())
	}

	nop := NewNopLogger()
	if OrDefault(nop) != nop {
		t.Error("OrDefault should return a non-nil logger unchanged")
	}
}
