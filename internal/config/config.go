package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and output file configuration.
type Paths struct {
	WorkflowsDir string `toml:"workflows_dir"`
	BackupDir    string `toml:"backup_dir"`
	ReportPath   string `toml:"report_path"`
	LockPath     string `toml:"lock_path"`
}

// Engine contains configuration for the workflow execution engine API and
// the credentials the browser needs to reach its canvas view.
type Engine struct {
	URL               string `toml:"url"`
	APIKey            string `toml:"api_key"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	BasicAuthUser     string `toml:"basic_auth_user"`
	BasicAuthPassword string `toml:"basic_auth_password"`
	LoginEmail        string `toml:"login_email"`
	LoginPassword     string `toml:"login_password"`
}

// GitHub contains configuration for the content store repository.
type GitHub struct {
	Token  string `toml:"token"`
	Repo   string `toml:"repo"` // owner/name
	Branch string `toml:"branch"`
}

// Capture contains configuration for the headless browser capture.
type Capture struct {
	ViewportWidth        int    `toml:"viewport_width"`
	ViewportHeight       int    `toml:"viewport_height"`
	ImageQuality         int    `toml:"image_quality"`
	SignalTimeoutSeconds int    `toml:"signal_timeout_seconds"`
	SettleDelayMS        int    `toml:"settle_delay_ms"`
	ChromePath           string `toml:"chrome_path"`
}

// Pipeline contains configuration for orchestration pacing and policies.
type Pipeline struct {
	PostImportDelayMS int  `toml:"post_import_delay_ms"`
	InterItemDelayMS  int  `toml:"inter_item_delay_ms"`
	BatchLimit        int  `toml:"batch_limit"`
	SkipExisting      bool `toml:"skip_existing"`
	SkipOnCheckError  bool `toml:"skip_on_check_error"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for flowshot.
//
// Configuration sections by subsystem:
//   - Paths: workflow source tree, local backup mirror, report and lock files
//   - Engine: execution engine API endpoint, key, and canvas credentials
//   - GitHub: content store repository and token
//   - Capture: viewport, quality, readiness timeouts, settle delay
//   - Pipeline: pacing delays, batch limit, skip policies
//   - Logging: log level and format
type Config struct {
	Paths    Paths    `toml:"paths"`
	Engine   Engine   `toml:"engine"`
	GitHub   GitHub   `toml:"github"`
	Capture  Capture  `toml:"capture"`
	Pipeline Pipeline `toml:"pipeline"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/flowshot/config.toml")
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory is applied first so environment overrides for
// secrets work without exporting them. The returned config has all path
// fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	// Best-effort: a missing .env file is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnvOverrides layers environment values over file values for secrets
// and endpoints, so credentials never need to live in the config file.
func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"N8N_URL", &c.Engine.URL},
		{"N8N_API_KEY", &c.Engine.APIKey},
		{"N8N_BASIC_AUTH_USER", &c.Engine.BasicAuthUser},
		{"N8N_BASIC_AUTH_PASSWORD", &c.Engine.BasicAuthPassword},
		{"N8N_LOGIN_EMAIL", &c.Engine.LoginEmail},
		{"N8N_LOGIN_PASSWORD", &c.Engine.LoginPassword},
		{"GITHUB_TOKEN", &c.GitHub.Token},
		{"GITHUB_REPO", &c.GitHub.Repo},
		{"GITHUB_BRANCH", &c.GitHub.Branch},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(value) != "" {
			*o.dst = strings.TrimSpace(value)
		}
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("flowshot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.BackupDir, filepath.Dir(c.Paths.ReportPath), filepath.Dir(c.Paths.LockPath)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
