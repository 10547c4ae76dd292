package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "debug", Format: "json"}, "coreapi", &buf)

	l.WithComponent("repository").Info("request completed", Fields("path", "/users", "status", 200))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["message"] != "request completed" {
		t.Errorf("message = %v", got["message"])
	}
	if got["service"] != "coreapi" {
		t.Errorf("service = %v", got["service"])
	}
	if got[FieldComponent] != "repository" {
		t.Errorf("component = %v", got[FieldComponent])
	}
	if got["path"] != "/users" {
		t.Errorf("path = %v", got["path"])
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "warn", Format: "json"}, "svc", &buf)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines at warn level, got %d: %s", len(lines), buf.String())
	}
}

func TestNewWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "nonsense", Format: "json"}, "svc", &buf)
	l.Debug("hidden")
	l.Info("shown")
	if n := len(decodeLines(t, &buf)); n != 1 {
		t.Errorf("expected 1 line, got %d", n)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Format: "json"}, "svc", &buf)
	l.WithError(fmt.Errorf("boom")).Warn("failed")

	lines := decodeLines(t, &buf)
	if lines[0]["error"] != "boom" {
		t.Errorf("error field = %v", lines[0]["error"])
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Format: "json"}, "svc", &buf)
	l.WithFields(map[string]interface{}{"backend": "redis"}).Info("store ready")

	lines := decodeLines(t, &buf)
	if lines[0]["backend"] != "redis" {
		t.Errorf("backend field = %v", lines[0]["backend"])
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Format: "console", NoColor: true}, "svc", &buf)
	l.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("console output missing message: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[INF]") {
		t.Errorf("console output missing level tag: %q", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	// must not panic
	l.Debug("x")
	l.Info("x", Fields("a", 1))
	l.WithComponent("c").Warn("x")
	l.Error("x")
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	if l := NewFromEnv("env-svc"); l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("Fields ignored odd trailing key incorrectly: %v", f)
	}

	ef := ErrorFields("save", fmt.Errorf("nope"))
	if ef[FieldOperation] != "save" || ef[FieldError] != "nope" {
		t.Errorf("ErrorFields = %v", ef)
	}

	df := DurationFields("send", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("DurationFields = %v", df)
	}
}
