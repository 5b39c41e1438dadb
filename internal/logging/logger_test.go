package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"burncheck/internal/config"
	"burncheck/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerCaller(t *testing.T) {
	tests := []struct {
		level      string
		wantCaller bool
	}{
		{level: "info", wantCaller: false},
		{level: "debug", wantCaller: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := logging.New(logging.Options{Format: "console", Level: tt.level, Console: &buf})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			logger.Info("staging dataset")
			if got := strings.Contains(buf.String(), ".go:"); got != tt.wantCaller {
				t.Fatalf("caller present = %v, want %v: %q", got, tt.wantCaller, buf.String())
			}
		})
	}
}

func TestConsoleLoggerPrefixesRunComponentAndStage(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithStage(logging.WithRunID(context.Background(), "3f2a9c1e-8b7d-4e6f-a1b2-c3d4e5f60718"), "burn")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline")).Info("writing image", logging.String("media", "dvd"))

	line := buf.String()
	if !strings.Contains(line, "INFO [3f2a9c1e] pipeline/burn: writing image") {
		t.Fatalf("expected run/component/stage prefix, got %q", line)
	}
	if strings.Contains(line, "run_id=") || !strings.Contains(line, "media=dvd") {
		t.Fatalf("expected attributes in line, got %q", line)
	}
}

func TestConsoleLoggerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("mismatch", logging.String("path", "nested dir/c.txt"), logging.Int("files", 3))

	line := buf.String()
	if !strings.Contains(line, "WARN mismatch") || !strings.Contains(line, `path="nested dir/c.txt"`) || !strings.Contains(line, "files=3") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestJSONLoggerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["msg"] != "json message" || payload["level"] != "info" || payload["k"] != "v" {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.WarnWithContext(logger, "remount timed out", "remount_timeout", logging.String(logging.FieldImpact, "falling back to manual mount"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload[logging.FieldEventType] != "remount_timeout" {
		t.Fatalf("expected event_type injected, got %#v", payload)
	}
	if payload[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default error_hint, got %#v", payload)
	}
	if payload[logging.FieldImpact] != "falling back to manual mount" {
		t.Fatalf("expected caller impact preserved, got %#v", payload)
	}
}

func TestDecisionArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("mounting disc", logging.Decision("mount", "manual_mount", "disc not in mount table", logging.Device("/dev/sr0"))...)

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		logging.FieldDecisionType:   "mount",
		logging.FieldDecisionResult: "manual_mount",
		logging.FieldDecisionReason: "disc not in mount table",
		logging.FieldDevice:         "/dev/sr0",
	}
	for key, value := range want {
		if payload[key] != value {
			t.Fatalf("expected %s=%q, got %#v", key, value, payload)
		}
	}
}

func TestContextFieldsEmptyContext(t *testing.T) {
	if fields := logging.ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("expected no fields, got %v", fields)
	}
}
