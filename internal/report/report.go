package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"flowshot/internal/services"
)

// Stats aggregates per-run counters. processed == succeeded+failed+skipped
// holds at every point; Total is fixed at run start.
type Stats struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Screenshot records one published artifact.
type Screenshot struct {
	Workflow string `json:"workflow"`
	Category string `json:"category"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Failure records one failed item with its error message.
type Failure struct {
	Workflow string `json:"workflow"`
	Error    string `json:"error"`
}

// RunReport is the machine-readable outcome of a single run. It is owned by
// the orchestrator, mutated after each item completes, and serialized once
// at run end regardless of how the run went.
type RunReport struct {
	Timestamp   time.Time    `json:"timestamp"`
	RunID       string       `json:"run_id"`
	Stats       Stats        `json:"stats"`
	Screenshots []Screenshot `json:"screenshots"`
	Errors      []Failure    `json:"errors"`
}

// New creates an empty report for a run over total items. Slices are
// allocated so the JSON output always carries arrays, not null.
func New(total int) *RunReport {
	return &RunReport{
		Timestamp:   time.Now().UTC(),
		RunID:       uuid.NewString(),
		Stats:       Stats{Total: total},
		Screenshots: []Screenshot{},
		Errors:      []Failure{},
	}
}

// RecordSuccess counts a published item.
func (r *RunReport) RecordSuccess(shot Screenshot) {
	r.Stats.Succeeded++
	r.Screenshots = append(r.Screenshots, shot)
}

// RecordFailure counts a failed item and keeps its error message.
func (r *RunReport) RecordFailure(workflow string, err error) {
	r.Stats.Failed++
	r.Errors = append(r.Errors, Failure{Workflow: workflow, Error: services.Message(err)})
}

// RecordSkip counts an item whose artifact already existed.
func (r *RunReport) RecordSkip() {
	r.Stats.Skipped++
}

// Processed returns how many items have reached a terminal state.
func (r *RunReport) Processed() int {
	return r.Stats.Succeeded + r.Stats.Failed + r.Stats.Skipped
}

// Write serializes the report to path. The file is written even for runs
// with zero items or only failures.
func (r *RunReport) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
