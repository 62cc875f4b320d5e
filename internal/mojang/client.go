// SPDX-License-Identifier: MPL-2.0

// Package mojang acquires the client distribution for one version: it walks
// the launcher version manifest to the client jar URL and maintains a local
// download cache so a jar is fetched at most once.
package mojang

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultManifestURL is the launcher metadata endpoint listing every
// released version.
const DefaultManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"

// ErrVersionNotFound is the sentinel error wrapped by VersionNotFoundError.
var ErrVersionNotFound = errors.New("version not found in manifest")

type (
	// VersionNotFoundError is returned when the manifest has no entry for
	// the requested version. It wraps ErrVersionNotFound.
	VersionNotFoundError struct {
		Version string
	}

	// ClientJar describes the downloadable client jar of one version.
	ClientJar struct {
		URL  string
		SHA1 string
		Size int64
	}

	// Client fetches launcher metadata and client jars.
	Client struct {
		http        *http.Client
		manifestURL string
		logger      *slog.Logger
	}

	manifest struct {
		Versions []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"versions"`
	}

	versionMeta struct {
		Downloads struct {
			Client struct {
				URL  string `json:"url"`
				SHA1 string `json:"sha1"`
				Size int64  `json:"size"`
			} `json:"client"`
		} `json:"downloads"`
	}
)

// Error implements the error interface.
func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %s not found in manifest", e.Version)
}

// Unwrap returns ErrVersionNotFound.
func (e *VersionNotFoundError) Unwrap() error {
	return ErrVersionNotFound
}

// NewClient creates a Client against the given manifest URL (empty uses
// DefaultManifestURL) and logger (nil uses the default slog logger).
func NewClient(manifestURL string, logger *slog.Logger) *Client {
	if manifestURL == "" {
		manifestURL = DefaultManifestURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:        &http.Client{},
		manifestURL: manifestURL,
		logger:      logger,
	}
}

// ClientJar resolves the client jar descriptor for version.
func (c *Client) ClientJar(ctx context.Context, version string) (*ClientJar, error) {
	var m manifest
	if err := c.getJSON(ctx, c.manifestURL, &m); err != nil {
		return nil, fmt.Errorf("fetch version manifest: %w", err)
	}

	metaURL := ""
	for _, v := range m.Versions {
		if v.ID == version {
			metaURL = v.URL
			break
		}
	}
	if metaURL == "" {
		return nil, &VersionNotFoundError{Version: version}
	}

	var meta versionMeta
	if err := c.getJSON(ctx, metaURL, &meta); err != nil {
		return nil, fmt.Errorf("fetch version metadata for %s: %w", version, err)
	}
	return &ClientJar{
		URL:  meta.Downloads.Client.URL,
		SHA1: meta.Downloads.Client.SHA1,
		Size: meta.Downloads.Client.Size,
	}, nil
}

// JarPath returns the cache location for a version's client jar.
func JarPath(cacheDir, version string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("minecraft-%s-client.jar", version))
}

// EnsureJar returns the local path of the version's client jar, downloading
// it into cacheDir when absent. A cached jar is trusted as-is; downloads are
// checksum-verified and moved into place atomically so an interrupted run
// never leaves a truncated jar behind.
func (c *Client) EnsureJar(ctx context.Context, version, cacheDir string) (string, error) {
	path := JarPath(cacheDir, version)
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("client jar already cached", "version", version, "path", path)
		return path, nil
	}

	jar, err := c.ClientJar(ctx, version)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	c.logger.Info("downloading client jar", "version", version, "url", jar.URL, "size", jar.Size)
	tmp, err := os.CreateTemp(cacheDir, "client-*.jar.part")
	if err != nil {
		return "", fmt.Errorf("create temp download file: %w", err)
	}
	defer os.Remove(tmp.Name())

	sum, err := c.download(ctx, jar.URL, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("download client jar: %w", err)
	}

	if jar.SHA1 != "" && sum != jar.SHA1 {
		return "", fmt.Errorf("client jar checksum mismatch: got %s, want %s", sum, jar.SHA1)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move client jar into cache: %w", err)
	}
	return path, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// download streams url into w and returns the hex SHA-1 of the bytes
// written (the digest Mojang publishes for client jars).
func (c *Client) download(ctx context.Context, url string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	h := sha1.New()
	if _, err := io.Copy(io.MultiWriter(w, h), resp.Body); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
