package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flowshot/internal/report"
	"flowshot/internal/services"
)

func TestRenderSummaryContainsCounts(t *testing.T) {
	rep := report.New(4)
	rep.RecordSuccess(report.Screenshot{Workflow: "a"})
	rep.RecordFailure("b", errors.New("boom"))
	rep.RecordSkip()

	out := renderSummary(rep)
	for _, want := range []string{"Total", "4", "Succeeded", "Failed", "Skipped"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFailuresListsEveryItem(t *testing.T) {
	rep := report.New(2)
	rep.RecordFailure("first", errors.New("engine rejected workflow"))
	rep.RecordFailure("second", errors.New("no canvas found"))

	out := renderFailures(rep)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("failures table incomplete:\n%s", out)
	}
	if !strings.Contains(out, "no canvas found") {
		t.Fatalf("failure message missing:\n%s", out)
	}
}

func TestConfigInitWritesSampleFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if !strings.Contains(string(data), "[engine]") {
		t.Fatal("sample config missing engine section")
	}
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCommand()
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

func TestRunAbortsBeforeProcessingWithoutCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("N8N_API_KEY", "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_REPO", "")
	t.Chdir(t.TempDir())

	cmd := newRootCommand()
	cmd.SetArgs([]string{"run"})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("run must fail fast without credentials")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
