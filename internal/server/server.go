// Package server exposes the shell commands to UI front-ends as a gRPC
// service, served as native gRPC and grpc-web on one cleartext port.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/improbable-eng/grpc-web/go/grpcweb"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
)

const shutdownTimeout = 3 * time.Second

// Server is the local command endpoint.
type Server struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	listener   net.Listener
	port       int
}

// New creates a server listening on host:port. Pass port 0 for dynamic
// allocation.
func New(host string, port int, svc ShellServer) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	// Get actual port if dynamically allocated
	actualPort := listener.Addr().(*net.TCPAddr).Port

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary))
	RegisterShellServer(grpcServer, svc)

	web := grpcweb.WrapServer(grpcServer, grpcweb.WithOriginFunc(allowOrigin))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if web.IsGrpcWebRequest(r) || web.IsAcceptableGrpcCorsRequest(r) {
			web.ServeHTTP(w, r)
			return
		}
		grpcServer.ServeHTTP(w, r)
	})

	return &Server{
		grpcServer: grpcServer,
		httpServer: &http.Server{
			Handler:           h2c.NewHandler(handler, &http2.Server{}),
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
		port:     actualPort,
	}, nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes open streams and shuts the listener down.
func (s *Server) Stop() {
	s.grpcServer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Warnf("[server] Shutdown: %v", err)
	}
}

// allowOrigin accepts grpc-web calls from pages served on this machine.
func allowOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		log.Warnf("[server] %s failed after %s: %v", info.FullMethod, time.Since(start), err)
	} else {
		log.Debugf("[server] %s (%s)", info.FullMethod, time.Since(start))
	}
	return resp, err
}
