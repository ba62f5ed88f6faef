package config

import (
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.WorkflowsDir, err = expandPath(strings.TrimSpace(c.Paths.WorkflowsDir)); err != nil {
		return err
	}
	if c.Paths.BackupDir, err = expandPath(strings.TrimSpace(c.Paths.BackupDir)); err != nil {
		return err
	}
	if c.Paths.ReportPath, err = expandPath(strings.TrimSpace(c.Paths.ReportPath)); err != nil {
		return err
	}

	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = filepath.Join(os.TempDir(), "flowshot.lock")
	}
	if c.Paths.LockPath, err = expandPath(strings.TrimSpace(c.Paths.LockPath)); err != nil {
		return err
	}

	c.Engine.URL = strings.TrimRight(strings.TrimSpace(c.Engine.URL), "/")
	c.Engine.APIKey = strings.TrimSpace(c.Engine.APIKey)
	c.GitHub.Token = strings.TrimSpace(c.GitHub.Token)
	c.GitHub.Repo = strings.TrimSpace(strings.Trim(c.GitHub.Repo, "/"))
	c.GitHub.Branch = strings.TrimSpace(c.GitHub.Branch)
	if c.GitHub.Branch == "" {
		c.GitHub.Branch = "main"
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	if c.Engine.TimeoutSeconds <= 0 {
		c.Engine.TimeoutSeconds = 30
	}
	if c.Capture.SignalTimeoutSeconds <= 0 {
		c.Capture.SignalTimeoutSeconds = 10
	}

	return nil
}
