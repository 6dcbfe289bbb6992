package logtail

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_TextHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{AddSource: true}))
	logger.Warn("mutation failed", "component", "mutation", "id", "7", "error", `api returned "409"`)

	e := Parse(strings.TrimSpace(buf.String()))
	if e.Level != slog.LevelWarn {
		t.Errorf("Level = %v, want WARN", e.Level)
	}
	if e.Message != "mutation failed" {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Component != "mutation" {
		t.Errorf("Component = %q", e.Component)
	}
	if e.Time.IsZero() {
		t.Error("Time not parsed")
	}
	want := []Attr{{"component", "mutation"}, {"id", "7"}, {"error", `api returned "409"`}}
	if !reflect.DeepEqual(e.Attrs, want) {
		t.Errorf("Attrs = %#v, want %#v", e.Attrs, want)
	}
}

func TestParse_JSONHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("request complete", "component", "adminapi", "status", 200)

	e := Parse(strings.TrimSpace(buf.String()))
	if e.Level != slog.LevelDebug {
		t.Errorf("Level = %v, want DEBUG", e.Level)
	}
	if e.Message != "request complete" || e.Component != "adminapi" {
		t.Errorf("got message %q component %q", e.Message, e.Component)
	}
	want := []Attr{{"component", "adminapi"}, {"status", "200"}}
	if !reflect.DeepEqual(e.Attrs, want) {
		t.Errorf("Attrs = %#v, want %#v", e.Attrs, want)
	}
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("panic: something odd")
	if e.Level != slog.LevelInfo || e.Message != "panic: something odd" {
		t.Errorf("Parse(plain) = %+v", e)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":  slog.LevelDebug,
		"info":   slog.LevelInfo,
		"WARN":   slog.LevelWarn,
		"ERROR":  slog.LevelError,
		"WARN+2": slog.LevelWarn + 2,
		"bogus":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTail_FiltersByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concierge.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("noise")
	logger.Info("refreshed", "resource", "users")
	logger.Warn("refresh failed", "resource", "plans")
	logger.Error("gave up")
	_ = f.Close()

	entries, err := Tail(path, 100, slog.LevelWarn)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Tail returned %d entries, want 2", len(entries))
	}
	if entries[0].Message != "refresh failed" || entries[1].Message != "gave up" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	last, err := Tail(path, 1, slog.LevelDebug)
	if err != nil || len(last) != 1 || last[0].Level != slog.LevelError {
		t.Errorf("Tail(1) = %+v, %v", last, err)
	}
}
