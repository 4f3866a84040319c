package cli

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wraith-app/wraith/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the shell is running",
	RunE:  runStatus,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running shell",
	RunE:  runStop,
}

func runStatus(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsInstanceRunning()
	if err != nil {
		return fmt.Errorf("failed to check instance status: %w", err)
	}

	if !running || info == nil {
		fmt.Println("Wraith is not running.")
		return nil
	}

	uptime := time.Since(info.StartedAt).Truncate(time.Second)

	fmt.Println(styleSuccess.Render("Wraith is running."))
	field("Version", info.AppVer)
	field("Address", fmt.Sprintf("%s:%d", info.Host, info.Port))
	field("PID", fmt.Sprintf("%d", info.PID))
	field("Uptime", uptime.String())

	// Live details are optional: an unreachable shell still has a PID.
	conn, client, err := connectInstance()
	if err != nil {
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	st, err := client.GetStatus(ctx)
	if err != nil {
		fmt.Println(styleWarning.Render("Command endpoint not responding: " + rpcError(err).Error()))
		return nil
	}
	field("Scheme", st.Fields["scheme"].GetStringValue()+"://")
	field("Windows", fmt.Sprintf("%.0f attached", st.Fields["subscribers"].GetNumberValue()))

	if state, err := client.GetUpdateState(ctx); err == nil {
		phase := state.Fields["phase"].GetStringValue()
		if v := state.Fields["version"].GetStringValue(); v != "" {
			phase += " (v" + v + ")"
		}
		field("Update", phase)
	}
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsInstanceRunning()
	if err != nil {
		return fmt.Errorf("failed to check instance status: %w", err)
	}

	if !running || info == nil {
		fmt.Println("Wraith is not running.")
		return nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("failed to find wraith process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	// Poll for shutdown (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		stillRunning, _, err := config.IsInstanceRunning()
		if err == nil && !stillRunning {
			fmt.Println("Wraith stopped.")
			return nil
		}
	}

	return fmt.Errorf("wraith did not stop within timeout")
}
