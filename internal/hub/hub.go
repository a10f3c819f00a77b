// Package hub resolves model artifacts. A source containing "/" is a
// remote hub repository id whose files are fetched over HTTPS into a local
// cache directory; any other source is a local directory holding the files
// directly.
package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Well-known artifact filenames of a BERT-family checkpoint.
const (
	TokenizerFile = "tokenizer.json"
	ConfigFile    = "config.json"
	WeightsFile   = "model.safetensors"
)

// DefaultBaseURL is the hub endpoint artifacts are fetched from.
const DefaultBaseURL = "https://huggingface.co"

// Artifacts holds the resolved local paths of the three model files.
type Artifacts struct {
	TokenizerPath string
	ConfigPath    string
	WeightsPath   string
}

// Client resolves sources to artifact paths, downloading when needed.
type Client struct {
	baseURL  string
	cacheDir string
	http     *http.Client
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the hub endpoint (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the HTTP client used for downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger enables download logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client that caches downloaded artifacts under cacheDir.
func New(cacheDir string, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		cacheDir: cacheDir,
		http:     http.DefaultClient,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsRepoID reports whether source names a remote hub repository of the
// form namespace/name rather than a local directory. Absolute paths and
// paths starting with "." are always local.
func IsRepoID(source string) bool {
	if filepath.IsAbs(source) || strings.HasPrefix(source, ".") {
		return false
	}
	parts := strings.Split(source, "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// Resolve returns local paths for the three artifacts of source. Remote
// repositories are fetched from the default branch; files already present
// in the cache are reused.
func (c *Client) Resolve(ctx context.Context, source string) (Artifacts, error) {
	if IsRepoID(source) {
		return c.resolveRemote(ctx, source)
	}
	return resolveLocal(source)
}

func resolveLocal(dir string) (Artifacts, error) {
	paths := [3]string{}
	for i, name := range []string{TokenizerFile, ConfigFile, WeightsFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			return Artifacts{}, fmt.Errorf("%s not found in %s", name, dir)
		}
		paths[i] = path
	}
	return Artifacts{TokenizerPath: paths[0], ConfigPath: paths[1], WeightsPath: paths[2]}, nil
}

func (c *Client) resolveRemote(ctx context.Context, repo string) (Artifacts, error) {
	dir := filepath.Join(c.cacheDir, filepath.FromSlash(repo))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Artifacts{}, fmt.Errorf("failed to create cache dir: %w", err)
	}
	paths := [3]string{}
	for i, name := range []string{TokenizerFile, ConfigFile, WeightsFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if err := c.download(ctx, repo, name, path); err != nil {
				return Artifacts{}, err
			}
		}
		paths[i] = path
	}
	return Artifacts{TokenizerPath: paths[0], ConfigPath: paths[1], WeightsPath: paths[2]}, nil
}

// download fetches one artifact from the default branch of repo into path.
// The body is written to a temp file first so a partial download never
// poisons the cache.
func (c *Client) download(ctx context.Context, repo, name, path string) error {
	url := fmt.Sprintf("%s/%s/resolve/main/%s", c.baseURL, repo, name)
	c.logger.Info("downloading model artifact", zap.String("repo", repo), zap.String("file", name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s not found in %s", name, repo)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: server returned %d", name, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), name+".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to download %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}
