package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookforge/internal/logging"
)

func TestConsoleFormatLiftsComponent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	scoped := logging.WithComponent(logger, "forge")
	scoped.Info("chapter transcoded",
		logging.String("source", "01 Intro.mp3"),
		logging.Int("chapter", 1),
	)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.Contains(line, "INFO forge: chapter transcoded") {
		t.Fatalf("expected component prefix in %q", line)
	}
	if !strings.Contains(line, `source="01 Intro.mp3"`) {
		t.Fatalf("expected quoted attr in %q", line)
	}
	if !strings.Contains(line, "chapter=1") {
		t.Fatalf("expected int attr in %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not repeat as attr in %q", line)
	}
}

func TestJSONFormatEmitsStructuredRecord(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("split part oversized", logging.Int64("bytes", 1<<30))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record["msg"] != "split part oversized" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["level"] != "warn" {
		t.Fatalf("level = %v", record["level"])
	}
	if record["bytes"] != float64(1<<30) {
		t.Fatalf("bytes = %v", record["bytes"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("missing ts field")
	}
}

func TestLevelFiltersDebugRecords(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Debug("probe output")
	logger.Info("probe done")
	logger.Warn("probe slow")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "probe output") || strings.Contains(out, "probe done") {
		t.Fatalf("records below warn leaked: %q", out)
	}
	if !strings.Contains(out, "probe slow") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(os.ErrNotExist))
}
