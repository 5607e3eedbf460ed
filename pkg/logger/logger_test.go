/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("Level.String() = %v, expected %v", result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		level Level
		ok    bool
	}{
		{"trace", TraceLevel, true},
		{"DEBUG", DebugLevel, true},
		{" info ", InfoLevel, true},
		{"warning", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"loud", InfoLevel, false},
	}

	for _, tt := range tests {
		level, ok := ParseLevel(tt.input)
		if level != tt.level || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), expected (%v, %v)", tt.input, level, ok, tt.level, tt.ok)
		}
	}
}

func TestLoggerPrettyFormatting(t *testing.T) {
	l := New(Config{Level: InfoLevel, Component: "catmigrate", DryRun: true}, &bytes.Buffer{})

	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "rewrote file",
		Component: "catmigrate",
		Fields:    map[string]interface{}{"kind": "consumable", "file": "a.ts"},
	}

	result := l.formatPretty(InfoLevel, entry)

	expectedParts := []string{
		"2025-01-01 12:00:00",
		"[INFO]",
		"catmigrate:",
		"[DRY-RUN]",
		"rewrote file",
		"{file=a.ts, kind=consumable}",
	}
	for _, part := range expectedParts {
		if !strings.Contains(result, part) {
			t.Errorf("formatPretty() result missing expected part: %s\nResult: %s", part, result)
		}
	}
}

func TestLoggerJSONFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, JSON: true, Component: "catmigrate"}, &buf)

	l.Log(InfoLevel, "summary", Int("total", 3))

	var parsed LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed); err != nil {
		t.Fatalf("Log() produced invalid JSON: %v\nOutput: %s", err, buf.String())
	}
	if parsed.Message != "summary" {
		t.Errorf("Parsed JSON message = %v, expected 'summary'", parsed.Message)
	}
	if parsed.Level != "INFO" {
		t.Errorf("Parsed JSON level = %v, expected 'INFO'", parsed.Level)
	}
	if parsed.Fields["total"] != float64(3) {
		t.Errorf("Parsed JSON fields = %v, expected total=3", parsed.Fields)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel, Component: "catmigrate"}, &buf)

	l.Log(InfoLevel, "info message")
	l.Log(DebugLevel, "debug message")
	l.Log(WarnLevel, "warn message")
	l.Log(ErrorLevel, "error message")

	output := buf.String()
	if strings.Contains(output, "info message") || strings.Contains(output, "debug message") {
		t.Errorf("messages below WARN should be filtered: %s", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("WARN and ERROR messages should appear: %s", output)
	}
}

func TestErrField(t *testing.T) {
	f := Err(errors.New("disk full"))
	if f.Key != "error" || f.Value != "disk full" {
		t.Errorf("Err() = %+v", f)
	}
	if Err(nil).Value != "<nil>" {
		t.Errorf("Err(nil) should not panic and should render <nil>")
	}
}

func TestSetOutput(t *testing.T) {
	if err := Initialize(Config{Level: InfoLevel, Component: "catmigrate"}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	var buf bytes.Buffer
	SetOutput(&buf)
	Info("output test message")
	Debug("hidden")

	output := buf.String()
	if !strings.Contains(output, "output test message") {
		t.Errorf("SetOutput() did not redirect output correctly: %s", output)
	}
	if strings.Contains(output, "hidden") {
		t.Errorf("DEBUG should be filtered at INFO level: %s", output)
	}
}
