package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	svc, _ := newService(t)

	srv, err := New("127.0.0.1", 0, svc)
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	t.Cleanup(srv.Stop)
	return srv
}

func TestServerSpeaksGRPC(t *testing.T) {
	srv := startServer(t)
	require.NotZero(t, srv.Port())

	conn, err := grpc.NewClient(fmt.Sprintf("127.0.0.1:%d", srv.Port()),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	info, err := NewShellClient(conn).GetSystemInfo(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, info.Fields["platform"].GetStringValue())
}

func TestServerSpeaksGRPCWeb(t *testing.T) {
	srv := startServer(t)

	// One uncompressed, zero-length frame: an encoded Empty.
	body := bytes.NewReader([]byte{0, 0, 0, 0, 0})
	url := fmt.Sprintf("http://127.0.0.1:%d%s", srv.Port(), fullMethod("GetSystemInfo"))
	req, err := http.NewRequest(http.MethodPost, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	req.Header.Set("Origin", "http://localhost:1420")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/grpc-web"))
}

func TestAllowOrigin(t *testing.T) {
	assert.True(t, allowOrigin("http://localhost:1420"))
	assert.True(t, allowOrigin("http://127.0.0.1:8080"))
	assert.True(t, allowOrigin("http://[::1]:3000"))
	assert.False(t, allowOrigin("https://example.com"))
	assert.False(t, allowOrigin("::not a url"))
}
