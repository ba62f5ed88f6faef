package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"flowshot/internal/logging"
)

func TestConsoleHandlerRendersComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.With(logging.String(logging.FieldComponent, "pipeline")).Info(
		"item processed",
		logging.Args(logging.String("workflow", "demo"), logging.Int("succeeded", 2))...,
	)

	line := buf.String()
	if !strings.Contains(line, "INFO pipeline: item processed") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "workflow=demo") || !strings.Contains(line, "succeeded=2") {
		t.Fatalf("missing attrs in console line: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("oops", logging.Args(logging.String("error_message", "no canvas found"))...)
	if !strings.Contains(buf.String(), `error_message="no canvas found"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestJSONHandlerNormalizesFieldNames(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("publishing", logging.Args(logging.String("path", "automation/demo.png"))...)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg", "path"} {
		if _, ok := record[key]; !ok {
			t.Fatalf("missing %q in JSON record: %v", key, record)
		}
	}
	if record["level"] != "debug" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
