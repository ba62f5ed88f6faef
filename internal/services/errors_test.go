package services_test

import (
	"errors"
	"testing"

	"flowshot/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrImport, "engine", "create", "rejected payload", base)

	if !errors.Is(err, services.ErrImport) {
		t.Fatalf("expected wrapped error to match ErrImport: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to retain cause: %v", err)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "store", "exists", "timeout", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name   string
		marker error
		want   string
	}{
		{"configuration", services.ErrConfiguration, "configuration"},
		{"import", services.ErrImport, "import"},
		{"capture", services.ErrCapture, "capture"},
		{"publish", services.ErrPublish, "publish"},
		{"not found", services.ErrNotFound, "not_found"},
		{"transient", services.ErrTransient, "transient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := services.Wrap(tt.marker, "component", "op", "", nil)
			if got := services.Kind(err); got != tt.want {
				t.Fatalf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := services.Kind(errors.New("plain")); got != "error" {
		t.Fatalf("Kind(plain) = %q, want %q", got, "error")
	}
}

func TestMessageStripsMarkerPrefix(t *testing.T) {
	err := services.Wrap(services.ErrCapture, "capture", "wait", "no canvas signal appeared", nil)
	want := "capture: wait: no canvas signal appeared"
	if got := services.Message(err); got != want {
		t.Fatalf("Message() = %q, want %q", got, want)
	}
	if services.Message(nil) != "" {
		t.Fatal("Message(nil) should be empty")
	}
}
