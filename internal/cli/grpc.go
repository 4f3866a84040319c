package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/wraith-app/wraith/internal/config"
	"github.com/wraith-app/wraith/internal/server"
)

const rpcTimeout = 10 * time.Second

var errNotRunning = errors.New("wraith is not running")

// connectInstance establishes a gRPC connection to the running shell.
func connectInstance() (*grpc.ClientConn, *server.ShellClient, error) {
	info, err := config.LoadInstanceInfo()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load instance info: %w", err)
	}
	if info == nil {
		return nil, nil, errNotRunning
	}

	addr := fmt.Sprintf("%s:%d", info.Host, info.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to wraith: %w", err)
	}

	return conn, server.NewShellClient(conn), nil
}

// showRunningInstance asks the running shell to show its main window.
func showRunningInstance() error {
	conn, client, err := connectInstance()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	return client.SetVisibility(ctx, true)
}

// rpcError strips the gRPC envelope so users see only the reason.
func rpcError(err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		return errors.New(st.Message())
	}
	return err
}
