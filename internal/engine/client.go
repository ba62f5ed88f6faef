package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"flowshot/internal/config"
	"flowshot/internal/logging"
	"flowshot/internal/services"
	"flowshot/internal/source"
)

const (
	workflowsPath = "/api/v1/workflows"
	apiKeyHeader  = "X-N8N-API-KEY"

	// maxErrorBody bounds how much of an engine error response lands in
	// error messages and logs.
	maxErrorBody = 512
)

// ImportError carries the upstream detail of a rejected workflow import so
// failures stay diagnosable in the run report.
type ImportError struct {
	StatusCode int
	Body       string
	Reason     string
}

func (e *ImportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Reason, e.StatusCode, e.Body)
	}
	return e.Reason
}

// Client talks to the execution engine's REST API.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *slog.Logger
}

// New builds an engine client from configuration. The API key rides on every
// request; canvas credentials are the capture service's concern.
func New(cfg config.Engine, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader(apiKeyHeader, cfg.APIKey).
		SetHeader("Accept", "application/json")
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		logger:  logger.With(logging.String(logging.FieldComponent, "engine")),
	}
}

// CreateWorkflow strips the definition down to the fields the engine's intake
// accepts, submits it, and returns the transient workflow identifier. Engine
// rejections and id-less success responses both surface as import errors with
// upstream status and body attached.
func (c *Client) CreateWorkflow(ctx context.Context, def source.Definition) (string, error) {
	payload := map[string]any{
		"name":        def.Name,
		"nodes":       rawOrEmptyArray(def.Nodes),
		"connections": rawOrEmptyObject(def.Connections),
		"settings":    rawOrEmptyObject(def.Settings),
	}
	if len(def.StaticData) > 0 {
		payload["staticData"] = def.StaticData
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(workflowsPath)
	if err != nil {
		return "", services.Wrap(services.ErrImport, "engine", "create workflow", "", err)
	}
	if resp.IsError() {
		impErr := &ImportError{
			StatusCode: resp.StatusCode(),
			Body:       truncate(string(resp.Body())),
			Reason:     "engine rejected workflow",
		}
		return "", services.Wrap(services.ErrImport, "engine", "create workflow", "", impErr)
	}

	id := extractID(resp.Body())
	if id == "" {
		impErr := &ImportError{
			StatusCode: resp.StatusCode(),
			Body:       truncate(string(resp.Body())),
			Reason:     "engine response carries no workflow id",
		}
		return "", services.Wrap(services.ErrImport, "engine", "create workflow", "", impErr)
	}

	c.logger.Debug("workflow imported", logging.Args(
		logging.String("workflow", def.Name),
		logging.String("remote_id", id),
	)...)
	return id, nil
}

// DeleteWorkflow removes a previously imported workflow. Callers treat
// failures as cleanup warnings; the returned error is for logging only.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(workflowsPath + "/" + id)
	if err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete workflow %s: status %d: %s", id, resp.StatusCode(), truncate(string(resp.Body())))
	}
	return nil
}

// CanvasURL returns the browser-reachable canvas view for an imported
// workflow.
func (c *Client) CanvasURL(id string) string {
	return c.baseURL + "/workflow/" + id
}

// extractID pulls the workflow identifier out of a create response. The
// engine returns {id} at the top level; older builds nest it under data.
// String and numeric identifiers are both accepted.
func extractID(body []byte) string {
	var envelope struct {
		ID   json.RawMessage `json:"id"`
		Data struct {
			ID json.RawMessage `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if id := rawToString(envelope.ID); id != "" {
		return id
	}
	return rawToString(envelope.Data.ID)
}

func rawToString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	// Numeric id.
	return trimmed
}

func rawOrEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}

func rawOrEmptyArray(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`[]`)
	}
	return raw
}

func truncate(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > maxErrorBody {
		return body[:maxErrorBody] + "..."
	}
	return body
}
