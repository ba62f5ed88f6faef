package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flowshot/internal/config"
	"flowshot/internal/engine"
	"flowshot/internal/services"
	"flowshot/internal/source"
)

func testDefinition(t *testing.T) source.Definition {
	t.Helper()
	def, err := source.ParseDefinition([]byte(`{
		"name": "Demo",
		"nodes": [{"type": "n8n-nodes-base.start"}],
		"connections": {"Start": {}},
		"pinData": {"dropped": true},
		"tags": ["dropped"]
	}`))
	if err != nil {
		t.Fatalf("fixture definition invalid: %v", err)
	}
	return def
}

func newClient(t *testing.T, serverURL string) *engine.Client {
	t.Helper()
	return engine.New(config.Engine{URL: serverURL, APIKey: "secret", TimeoutSeconds: 5}, nil)
}

func TestCreateWorkflowSubmitsSanitizedPayload(t *testing.T) {
	var gotBody map[string]json.RawMessage
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/workflows" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("X-N8N-API-KEY")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "wf-123"}`)
	}))
	defer server.Close()

	id, err := newClient(t, server.URL).CreateWorkflow(context.Background(), testDefinition(t))
	if err != nil {
		t.Fatalf("CreateWorkflow returned error: %v", err)
	}
	if id != "wf-123" {
		t.Fatalf("unexpected id: %q", id)
	}
	if gotKey != "secret" {
		t.Fatalf("missing API key header, got %q", gotKey)
	}
	for _, field := range []string{"name", "nodes", "connections", "settings"} {
		if _, ok := gotBody[field]; !ok {
			t.Fatalf("payload missing %q: %v", field, gotBody)
		}
	}
	for _, field := range []string{"pinData", "tags", "staticData"} {
		if _, ok := gotBody[field]; ok {
			t.Fatalf("payload should not carry %q", field)
		}
	}
	if string(gotBody["settings"]) != `{}` {
		t.Fatalf("absent settings should default to empty object, got %s", gotBody["settings"])
	}
}

func TestCreateWorkflowAcceptsNumericAndNestedIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"numeric id", `{"id": 42}`, "42"},
		{"nested id", `{"data": {"id": "abc"}}`, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			id, err := newClient(t, server.URL).CreateWorkflow(context.Background(), testDefinition(t))
			if err != nil {
				t.Fatalf("CreateWorkflow returned error: %v", err)
			}
			if id != tt.want {
				t.Fatalf("id = %q, want %q", id, tt.want)
			}
		})
	}
}

func TestCreateWorkflowRejectionCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message": "request/body must have required property 'nodes'"}`)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).CreateWorkflow(context.Background(), testDefinition(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrImport) {
		t.Fatalf("expected import marker, got %v", err)
	}
	var impErr *engine.ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if impErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", impErr.StatusCode)
	}
	if !strings.Contains(impErr.Body, "required property") {
		t.Fatalf("body detail missing: %q", impErr.Body)
	}
}

func TestCreateWorkflowMissingIDIsImportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status": "ok"}`)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).CreateWorkflow(context.Background(), testDefinition(t))
	if err == nil {
		t.Fatal("expected error")
	}
	var impErr *engine.ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if !strings.Contains(impErr.Reason, "no workflow id") {
		t.Fatalf("unexpected reason: %q", impErr.Reason)
	}
}

func TestDeleteWorkflow(t *testing.T) {
	var deleted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = r.URL.Path
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	if err := client.DeleteWorkflow(context.Background(), "wf-123"); err != nil {
		t.Fatalf("DeleteWorkflow returned error: %v", err)
	}
	if deleted != "/api/v1/workflows/wf-123" {
		t.Fatalf("unexpected delete path: %q", deleted)
	}
}

func TestDeleteWorkflowReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newClient(t, server.URL).DeleteWorkflow(context.Background(), "wf-123")
	if err == nil {
		t.Fatal("expected error for failed delete")
	}
	if !strings.Contains(err.Error(), "wf-123") {
		t.Fatalf("error should name the workflow id: %v", err)
	}
}

func TestCanvasURL(t *testing.T) {
	client := engine.New(config.Engine{URL: "https://n8n.example.com/"}, nil)
	if got := client.CanvasURL("wf-9"); got != "https://n8n.example.com/workflow/wf-9" {
		t.Fatalf("CanvasURL = %q", got)
	}
}
