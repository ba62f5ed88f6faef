package config

import (
	"fmt"
	"strings"

	"flowshot/internal/services"
)

// Validate checks structural configuration values. Credential presence is
// checked separately by ValidateCredentials so read-only commands (discover,
// config show) work without secrets.
func (c *Config) Validate() error {
	if c.Capture.ViewportWidth <= 0 || c.Capture.ViewportHeight <= 0 {
		return fmt.Errorf("capture viewport must be positive, got %dx%d",
			c.Capture.ViewportWidth, c.Capture.ViewportHeight)
	}
	if c.Capture.ImageQuality < 1 || c.Capture.ImageQuality > 100 {
		return fmt.Errorf("capture image_quality must be in 1..100, got %d", c.Capture.ImageQuality)
	}
	if c.Pipeline.PostImportDelayMS < 0 || c.Pipeline.InterItemDelayMS < 0 || c.Capture.SettleDelayMS < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.Pipeline.BatchLimit < 0 {
		return fmt.Errorf("pipeline batch_limit must not be negative, got %d", c.Pipeline.BatchLimit)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging format must be console or json, got %q", c.Logging.Format)
	}
	if c.GitHub.Repo != "" {
		if _, _, err := c.SplitRepo(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCredentials checks the values a publishing run cannot proceed
// without. Failures carry the configuration marker so callers abort before
// any item is processed.
func (c *Config) ValidateCredentials() error {
	missing := make([]string, 0, 3)
	if c.Engine.APIKey == "" {
		missing = append(missing, "engine api_key (N8N_API_KEY)")
	}
	if c.GitHub.Token == "" {
		missing = append(missing, "github token (GITHUB_TOKEN)")
	}
	if c.GitHub.Repo == "" {
		missing = append(missing, "github repo (GITHUB_REPO)")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			"missing required settings: "+strings.Join(missing, ", "), nil)
	}
	if _, _, err := c.SplitRepo(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "validate", err.Error(), nil)
	}
	return nil
}

// SplitRepo splits the configured repository into owner and name.
func (c *Config) SplitRepo() (owner, name string, err error) {
	parts := strings.Split(c.GitHub.Repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("github repo must be owner/name, got %q", c.GitHub.Repo)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
