package report_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flowshot/internal/report"
	"flowshot/internal/services"
)

func TestCountersHoldInvariant(t *testing.T) {
	r := report.New(3)
	if r.Processed() != 0 || r.Stats.Total != 3 {
		t.Fatalf("fresh report processed=%d total=%d", r.Processed(), r.Stats.Total)
	}

	r.RecordSuccess(report.Screenshot{Workflow: "a", Category: "ai_ml", Filename: "a.png", URL: "https://x/a.png"})
	if r.Processed() != 1 {
		t.Fatalf("processed after success = %d", r.Processed())
	}

	r.RecordFailure("b", errors.New("boom"))
	r.RecordSkip()
	if r.Processed() != 3 {
		t.Fatalf("processed = %d, want 3", r.Processed())
	}
	if r.Stats.Succeeded != 1 || r.Stats.Failed != 1 || r.Stats.Skipped != 1 {
		t.Fatalf("unexpected stats: %+v", r.Stats)
	}
	if r.Processed() > r.Stats.Total {
		t.Fatalf("processed %d exceeds total %d", r.Processed(), r.Stats.Total)
	}
}

func TestRecordFailureStripsMarkerPrefix(t *testing.T) {
	r := report.New(1)
	r.RecordFailure("wf", services.Wrap(services.ErrCapture, "capture", "wait for canvas", "no readiness signal appeared", nil))
	if len(r.Errors) != 1 {
		t.Fatalf("expected 1 error entry, got %d", len(r.Errors))
	}
	if strings.HasPrefix(r.Errors[0].Error, "capture error:") {
		t.Fatalf("marker prefix should be stripped: %q", r.Errors[0].Error)
	}
	if !strings.Contains(r.Errors[0].Error, "no readiness signal") {
		t.Fatalf("detail missing: %q", r.Errors[0].Error)
	}
}

func TestWriteProducesWellFormedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	r := report.New(0)
	if err := r.Write(path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report not valid JSON: %v", err)
	}
	for _, key := range []string{"timestamp", "run_id", "stats", "screenshots", "errors"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("report missing %q", key)
		}
	}
	// Zero-item runs still produce arrays, not null.
	if _, ok := decoded["screenshots"].([]any); !ok {
		t.Fatalf("screenshots should be an array: %T", decoded["screenshots"])
	}
	if _, ok := decoded["errors"].([]any); !ok {
		t.Fatalf("errors should be an array: %T", decoded["errors"])
	}
	stats, _ := decoded["stats"].(map[string]any)
	if stats["total"].(float64) != 0 {
		t.Fatalf("expected all-zero stats, got %v", stats)
	}
}
