package capture

import (
	"testing"

	"github.com/chromedp/cdproto/page"

	"flowshot/internal/config"
)

func TestBasicAuthHeader(t *testing.T) {
	if got := basicAuthHeader("", "ignored"); got != "" {
		t.Fatalf("empty user must yield empty header, got %q", got)
	}
	// base64("admin:hunter2")
	want := "Basic YWRtaW46aHVudGVyMg=="
	if got := basicAuthHeader("admin", "hunter2"); got != want {
		t.Fatalf("basicAuthHeader = %q, want %q", got, want)
	}
}

func TestReadinessProbeOrder(t *testing.T) {
	if len(readinessProbes) == 0 {
		t.Fatal("readiness probe list must not be empty")
	}
	if readinessProbes[0] != `[data-test-id="canvas"]` {
		t.Fatalf("highest-priority probe changed: %q", readinessProbes[0])
	}
	// The bare element fallback must stay last so specific signals win.
	if readinessProbes[len(readinessProbes)-1] != `canvas` {
		t.Fatalf("fallback probe must be last: %q", readinessProbes[len(readinessProbes)-1])
	}
}

func TestScreenshotParamsQualitySwitch(t *testing.T) {
	svc := New(config.Capture{ImageQuality: 100}, config.Engine{}, nil)
	if params := svc.screenshotParams(); params.Format != page.CaptureScreenshotFormatPng {
		t.Fatalf("quality 100 should capture PNG, got %v", params.Format)
	}

	svc = New(config.Capture{ImageQuality: 80}, config.Engine{}, nil)
	params := svc.screenshotParams()
	if params.Format != page.CaptureScreenshotFormatJpeg {
		t.Fatalf("quality 80 should capture JPEG, got %v", params.Format)
	}
	if params.Quality != 80 {
		t.Fatalf("quality not applied: %d", params.Quality)
	}
}
