package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"

	"flowshot/internal/config"
	"flowshot/internal/logging"
	"flowshot/internal/services"
)

// rawContentHost serves public reads for published artifacts, mirroring the
// contents API path layout.
const rawContentHost = "https://raw.githubusercontent.com"

// PublishResult is the public locator of a stored artifact plus the version
// token (content sha) an update would need.
type PublishResult struct {
	URL string
	SHA string
}

// Store publishes capture artifacts to a GitHub repository via the contents
// API and answers existence checks against it.
type Store struct {
	client *github.Client
	owner  string
	repo   string
	branch string
	logger *slog.Logger
}

// New builds a Store from configuration, authenticating with the configured
// token.
func New(cfg config.GitHub, logger *slog.Logger) (*Store, error) {
	owner, repo, err := splitRepo(cfg.Repo)
	if err != nil {
		return nil, err
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(cfg.Token)})
	client := github.NewClient(oauth2.NewClient(context.Background(), ts))
	return NewWithClient(client, owner, repo, cfg.Branch, logger), nil
}

// NewWithClient builds a Store around an existing GitHub client. Tests use
// this to point the store at a local server.
func NewWithClient(client *github.Client, owner, repo, branch string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(branch) == "" {
		branch = "main"
	}
	return &Store{
		client: client,
		owner:  owner,
		repo:   repo,
		branch: branch,
		logger: logger.With(logging.String(logging.FieldComponent, "store")),
	}
}

// Exists reports whether an artifact is already present at path, returning
// its version token when it is. A 404 is a normal non-error outcome; only
// transport-level failures return an error, and the caller decides whether
// to skip or reprocess on those.
func (s *Store) Exists(ctx context.Context, path string) (bool, string, error) {
	file, _, resp, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, path,
		&github.RepositoryContentGetOptions{Ref: s.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, "", nil
		}
		return false, "", services.Wrap(services.ErrTransient, "store", "existence check", path, err)
	}
	if file == nil {
		// Path resolves to a directory listing; treat as absent.
		return false, "", nil
	}
	return true, file.GetSHA(), nil
}

// Publish uploads image bytes to path, updating in place when a version
// token already exists at the destination and creating otherwise. The remote
// store rejects updates with a stale token; that surfaces as a publish error
// rather than being retried here.
func (s *Store) Publish(ctx context.Context, path string, data []byte, message string) (PublishResult, error) {
	exists, sha, err := s.Exists(ctx, path)
	if err != nil {
		// Proceed as a create; a racing writer shows up as a PUT conflict.
		s.logger.Warn("existence check failed before publish, attempting create",
			logging.Args(logging.String("path", path), logging.Error(err))...)
		exists = false
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: data,
		Branch:  github.Ptr(s.branch),
	}

	var contentResp *github.RepositoryContentResponse
	if exists && sha != "" {
		opts.SHA = github.Ptr(sha)
		contentResp, _, err = s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, path, opts)
	} else {
		contentResp, _, err = s.client.Repositories.CreateFile(ctx, s.owner, s.repo, path, opts)
	}
	if err != nil {
		op := "create"
		if exists {
			op = "update"
		}
		return PublishResult{}, services.Wrap(services.ErrPublish, "store", op, path, err)
	}

	result := PublishResult{URL: s.RawURL(path)}
	if contentResp != nil && contentResp.Content != nil {
		result.SHA = contentResp.Content.GetSHA()
	}
	s.logger.Debug("artifact published", logging.Args(
		logging.String("path", path),
		logging.Bool("updated", exists),
	)...)
	return result, nil
}

// RawURL returns the public read locator for a stored path.
func (s *Store) RawURL(path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", rawContentHost, s.owner, s.repo, s.branch, strings.TrimPrefix(path, "/"))
}

func splitRepo(repo string) (string, string, error) {
	parts := strings.Split(strings.Trim(strings.TrimSpace(repo), "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("github repo must be owner/name, got %q", repo)
	}
	return parts[0], parts[1], nil
}
