package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func restoreDefaults(t *testing.T) {
	t.Helper()
	prevSlog := slog.Default()
	prevOut, prevFlags, prevPrefix := log.Writer(), log.Flags(), log.Prefix()
	t.Cleanup(func() {
		slog.SetDefault(prevSlog)
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
		log.SetPrefix(prevPrefix)
	})
}

func TestConfigure_TextRespectsLevel(t *testing.T) {
	restoreDefaults(t)
	var buf bytes.Buffer

	logger := Configure(Options{App: "formstate", Level: slog.LevelWarn, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown", "field", "email")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("output = %q, want info record filtered", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "app=formstate") || !strings.Contains(out, "field=email") {
		t.Fatalf("output = %q, want warn record with app and field", out)
	}
	if slog.Default() != logger {
		t.Fatalf("slog.Default was not replaced")
	}
}

func TestConfigure_JSON(t *testing.T) {
	restoreDefaults(t)
	var buf bytes.Buffer

	Configure(Options{JSON: true, Output: &buf}).Info("submitted", "status", 201)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output %q is not JSON: %v", buf.String(), err)
	}
	if record["msg"] != "submitted" || record["status"] != float64(201) {
		t.Fatalf("record = %v, want msg submitted and status 201", record)
	}
}

func TestConfigure_RedirectsStandardLog(t *testing.T) {
	restoreDefaults(t)
	var buf bytes.Buffer

	Configure(Options{Output: &buf, LegacyLevel: slog.LevelInfo})
	log.Print("from legacy")

	if !strings.Contains(buf.String(), "from legacy") {
		t.Fatalf("output = %q, want legacy log record", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("loud"); !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("ParseLevel(loud) error = %v, want ErrInvalidLevel", err)
	}
}

func TestOpenFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "formstate", "formstate.log")

	file, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile returned error: %v", err)
	}
	if _, err := file.WriteString("line\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "line\n" {
		t.Fatalf("file contents = %q, want %q", data, "line\n")
	}
}
