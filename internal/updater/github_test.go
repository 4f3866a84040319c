package updater

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAsset = "wraith-test-bin"

func newReleaseServer(t *testing.T, payload []byte, withChecksum bool) *httptest.Server {
	t.Helper()
	sum := sha256.Sum256(payload)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wraith/test", r.Header.Get("User-Agent"))
		release := ReleaseInfo{
			TagName: "v1.4.0",
			HTMLURL: srv.URL + "/releases/v1.4.0",
			Assets: []Asset{
				{Name: "wraith-other-arch", BrowserDownloadURL: srv.URL + "/download/other", Size: 1},
				{Name: testAsset, BrowserDownloadURL: srv.URL + "/download/bin", Size: int64(len(payload))},
			},
		}
		if withChecksum {
			release.Assets = append(release.Assets, Asset{
				Name:               testAsset + checksumSuffix,
				BrowserDownloadURL: srv.URL + "/download/bin.sha256",
			})
		}
		require.NoError(t, json.NewEncoder(w).Encode(release))
	})
	mux.HandleFunc("/download/bin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})
	mux.HandleFunc("/download/bin.sha256", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s  %s\n", hex.EncodeToString(sum[:]), testAsset)
	})
	return srv
}

func newTestSource(srv *httptest.Server, dir string) *GitHubSource {
	return NewGitHubSource(GitHubConfig{
		Endpoint:    srv.URL + "/releases/latest",
		AssetName:   testAsset,
		DownloadDir: dir,
		UserAgent:   "wraith/test",
		Client:      srv.Client(),
	})
}

func TestGitHubSourceCheck(t *testing.T) {
	payload := []byte("new wraith binary")
	srv := newReleaseServer(t, payload, true)

	m, err := newTestSource(srv, t.TempDir()).Check(context.Background())
	require.NoError(t, err)
	require.NotNil(t, m)

	sum := sha256.Sum256(payload)
	assert.Equal(t, "1.4.0", m.Version)
	assert.Equal(t, testAsset, m.Name)
	assert.Equal(t, int64(len(payload)), m.Size)
	assert.Equal(t, srv.URL+"/download/bin", m.URL)
	assert.Equal(t, hex.EncodeToString(sum[:]), m.SHA256)
}

func TestGitHubSourceCheckNoRelease(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	m, err := newTestSource(srv, t.TempDir()).Check(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestGitHubSourceCheckServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestSource(srv, t.TempDir()).Check(context.Background())
	assert.ErrorContains(t, err, "502")
}

func TestGitHubSourceCheckMissingAsset(t *testing.T) {
	srv := newReleaseServer(t, []byte("x"), false)
	src := newTestSource(srv, t.TempDir())
	src.cfg.AssetName = "wraith-plan9-mips"

	_, err := src.Check(context.Background())
	assert.ErrorContains(t, err, "no asset")
}

func TestGitHubSourceDownload(t *testing.T) {
	payload := make([]byte, 64*1024)
	for i := range payload {
		payload[i] = byte(i)
	}
	srv := newReleaseServer(t, payload, true)
	src := newTestSource(srv, t.TempDir())

	m, err := src.Check(context.Background())
	require.NoError(t, err)

	var last int64
	a, err := src.Download(context.Background(), *m, func(downloaded, total int64) {
		assert.GreaterOrEqual(t, downloaded, last)
		assert.Equal(t, int64(len(payload)), total)
		last = downloaded
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), last)

	got, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestGitHubSourceDownloadChecksumMismatch(t *testing.T) {
	srv := newReleaseServer(t, []byte("payload"), false)
	dir := t.TempDir()
	src := newTestSource(srv, dir)

	m, err := src.Check(context.Background())
	require.NoError(t, err)
	m.SHA256 = hex.EncodeToString(make([]byte, sha256.Size))

	_, err = src.Download(context.Background(), *m, nil)
	assert.ErrorContains(t, err, "checksum mismatch")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGitHubSourceInstall(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "wraith")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0755))
	update := filepath.Join(dir, "update")
	require.NoError(t, os.WriteFile(update, []byte("new"), 0755))

	src := NewGitHubSource(GitHubConfig{TargetPath: target})
	require.NoError(t, src.Install(context.Background(), Artifact{Path: update}))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	assert.NoFileExists(t, update)
	assert.NoFileExists(t, target+".bak")
}

func TestReplaceBinaryRestoresTargetOnFailure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "wraith")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0755))

	require.Error(t, ReplaceBinary(target, filepath.Join(dir, "wraith-update-missing")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
	assert.NoFileExists(t, target+".bak")
}

func TestAssetName(t *testing.T) {
	name := AssetName("wraith")
	assert.Contains(t, name, "wraith-")
	assert.NotContains(t, name, " ")
}
