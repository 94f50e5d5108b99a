// Package assets persists remote images to local files so topic and
// category artwork keeps rendering offline. The return value of
// Resolve is a best-available source, never a guarantee: every failure
// degrades to the remote URL.
package assets

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

type Cache struct {
	dir    string
	http   *http.Client
	logger *slog.Logger
}

func NewCache(dir string, httpClient *http.Client, logger *slog.Logger) *Cache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{dir: dir, http: httpClient, logger: logger}
}

// Resolve returns a local file path for the image at rawURL,
// downloading it on a miss. A URL without a scheme is corrected by
// prefixing https:// before the request (best-effort, not validation).
// On any failure the (corrected) remote URL comes back instead of an
// error.
func (c *Cache) Resolve(ctx context.Context, rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return rawURL
	}

	remote := EnsureScheme(rawURL)
	localPath := filepath.Join(c.dir, cacheFileName(remote))

	if _, err := os.Stat(localPath); err == nil {
		return localPath
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn("asset dir unavailable", "dir", c.dir, "error", err)
		return remote
	}

	if err := c.download(ctx, remote, localPath); err != nil {
		c.logger.Warn("asset download failed, using remote url", "url", remote, "error", err)
		return remote
	}
	return localPath
}

// Source picks the rendering source for an image: the cached file when
// offline and still present, the remote URL otherwise. A cached path
// whose file was evicted degrades to the remote URL rather than
// failing.
func Source(offline bool, localPath, remoteURL string) string {
	if offline && localPath != "" {
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}
	return remoteURL
}

// EnsureScheme prefixes https:// when the URL has no scheme at all.
func EnsureScheme(rawURL string) string {
	if strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "https://" + rawURL
}

func (c *Cache) download(ctx context.Context, remote, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &url.Error{Op: "Get", URL: remote, Err: statusError(resp.StatusCode)}
	}

	// Write to a temp file first so a torn download never shows up as
	// a cache hit.
	tmp, err := os.CreateTemp(c.dir, filepath.Base(localPath)+".*.part")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), localPath)
}

// cacheFileName is the URL's basename prefixed by a short URL hash, so
// two different URLs sharing a basename never collide while the name
// stays recognizable in the cache directory.
func cacheFileName(remote string) string {
	sum := sha1.Sum([]byte(remote))
	prefix := hex.EncodeToString(sum[:6])

	base := ""
	if parsed, err := url.Parse(remote); err == nil {
		base = path.Base(parsed.Path)
	}
	if base == "" || base == "." || base == "/" {
		return "asset_" + prefix
	}
	return prefix + "_" + base
}

type statusError int

func (s statusError) Error() string {
	return "unexpected status " + strconv.Itoa(int(s))
}
