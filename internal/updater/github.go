package updater

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	checksumSuffix   = ".sha256"
	maxChecksumBytes = 1024
)

// ReleaseInfo contains information about a GitHub release.
type ReleaseInfo struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset represents a downloadable file in a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// GitHubConfig configures a GitHubSource.
type GitHubConfig struct {
	// Endpoint is the "latest release" API URL.
	Endpoint string
	// AssetName is the release asset holding this platform's binary.
	AssetName string
	// DownloadDir receives downloaded artifacts; os.TempDir when empty.
	DownloadDir string
	// TargetPath is the binary replaced on install; os.Executable when empty.
	TargetPath string
	UserAgent  string
	Client     *http.Client
}

// GitHubSource finds updates in GitHub Releases and installs them by
// replacing the running binary.
type GitHubSource struct {
	cfg    GitHubConfig
	client *http.Client
}

// NewGitHubSource creates a source for the given release endpoint.
func NewGitHubSource(cfg GitHubConfig) *GitHubSource {
	if cfg.AssetName == "" {
		cfg.AssetName = AssetName("wraith")
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &GitHubSource{cfg: cfg, client: client}
}

// AssetName returns the expected asset name of binary for this platform.
func AssetName(binary string) string {
	name := fmt.Sprintf("%s-%s-%s", binary, runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// FindAsset finds an asset by name in a release.
func FindAsset(release *ReleaseInfo, name string) *Asset {
	for i := range release.Assets {
		if release.Assets[i].Name == name {
			return &release.Assets[i]
		}
	}
	return nil
}

// Check queries the releases API for the latest release.
func (g *GitHubSource) Check(ctx context.Context) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	g.setUserAgent(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No releases yet
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("releases API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	asset := FindAsset(&release, g.cfg.AssetName)
	if asset == nil {
		return nil, fmt.Errorf("release %s has no asset %s", release.TagName, g.cfg.AssetName)
	}

	manifest := &Manifest{
		Version:    strings.TrimPrefix(release.TagName, "v"),
		Size:       asset.Size,
		URL:        asset.BrowserDownloadURL,
		Name:       asset.Name,
		ReleaseURL: release.HTMLURL,
	}

	if sum := FindAsset(&release, g.cfg.AssetName+checksumSuffix); sum != nil {
		digest, err := g.fetchChecksum(ctx, sum.BrowserDownloadURL)
		if err != nil {
			return nil, fmt.Errorf("fetch checksum: %w", err)
		}
		manifest.SHA256 = digest
	}

	return manifest, nil
}

// fetchChecksum reads a "<hex digest>  <file name>" checksum file.
func (g *GitHubSource) fetchChecksum(ctx context.Context, url string) (string, error) {
	resp, err := g.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxChecksumBytes))
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", errors.New("empty checksum file")
	}
	digest := strings.ToLower(fields[0])
	if _, err := hex.DecodeString(digest); err != nil || len(digest) != sha256.Size*2 {
		return "", fmt.Errorf("malformed checksum %q", fields[0])
	}
	return digest, nil
}

// Download fetches the manifest's artifact to a temp file, reporting
// progress as bytes arrive.
func (g *GitHubSource) Download(ctx context.Context, m Manifest, onProgress ProgressFunc) (Artifact, error) {
	resp, err := g.get(ctx, m.URL)
	if err != nil {
		return Artifact{}, err
	}
	defer resp.Body.Close()

	total := resp.ContentLength
	if total <= 0 {
		total = m.Size
	}

	dir := g.cfg.DownloadDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Artifact{}, fmt.Errorf("create download dir: %w", err)
		}
	}
	tmpFile, err := os.CreateTemp(dir, "wraith-update-*")
	if err != nil {
		return Artifact{}, fmt.Errorf("create temp file: %w", err)
	}

	hasher := sha256.New()
	pw := &progressWriter{total: total, onProgress: onProgress}
	written, err := io.Copy(io.MultiWriter(tmpFile, hasher, pw), resp.Body)
	if cerr := tmpFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpFile.Name())
		return Artifact{}, fmt.Errorf("write temp file: %w", err)
	}

	if m.Size > 0 && written != m.Size {
		os.Remove(tmpFile.Name())
		return Artifact{}, fmt.Errorf("size mismatch: got %d bytes, expected %d", written, m.Size)
	}
	if m.SHA256 != "" {
		if got := hex.EncodeToString(hasher.Sum(nil)); got != m.SHA256 {
			os.Remove(tmpFile.Name())
			return Artifact{}, fmt.Errorf("checksum mismatch: got %s, expected %s", got, m.SHA256)
		}
	}

	// Make executable
	if err := os.Chmod(tmpFile.Name(), 0755); err != nil {
		os.Remove(tmpFile.Name())
		return Artifact{}, fmt.Errorf("chmod temp file: %w", err)
	}

	log.Debugf("[update] Downloaded %s to %s", m.Name, tmpFile.Name())
	return Artifact{Manifest: m, Path: tmpFile.Name()}, nil
}

// Install replaces the target binary with the artifact.
func (g *GitHubSource) Install(ctx context.Context, a Artifact) error {
	target := g.cfg.TargetPath
	if target == "" {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("find executable: %w", err)
		}
		target = self
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ReplaceBinary(target, a.Path)
}

func (g *GitHubSource) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	g.setUserAgent(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", filepath.Base(url), err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}
	return resp, nil
}

func (g *GitHubSource) setUserAgent(req *http.Request) {
	if g.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", g.cfg.UserAgent)
	}
}

// progressWriter counts bytes written through it.
type progressWriter struct {
	written    int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.onProgress != nil {
		p.onProgress(p.written, p.total)
	}
	return len(b), nil
}
