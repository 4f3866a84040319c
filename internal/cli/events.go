package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var eventsWindow string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream shell events",
	Long: `Attach to the running shell as a window and print every event it emits.
The stream reconnects with backoff when the shell restarts.`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsWindow, "window", "cli", "Window name to attach as")
}

func runEvents(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	expBackOff := backoff.WithContext(&backoff.ExponentialBackOff{
		InitialInterval:     time.Second,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         10 * time.Second,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}, ctx)

	err := backoff.Retry(func() error { return streamEvents(ctx) }, expBackOff)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func streamEvents(ctx context.Context) error {
	conn, client, err := connectInstance()
	if err != nil {
		if errors.Is(err, errNotRunning) {
			log.Debugf("[events] %v, retrying", err)
		}
		return err
	}
	defer conn.Close()

	stream, err := client.Attach(ctx, eventsWindow)
	if err != nil {
		return err
	}
	fmt.Println(styleHint.Render(fmt.Sprintf("Attached as window %q", eventsWindow)))

	for {
		msg, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if status.Code(err) == codes.Aborted {
				// Another client took over this window name.
				return backoff.Permanent(rpcError(err))
			}
			log.Debugf("[events] Stream ended: %v", err)
			return err
		}
		fmt.Println(formatEvent(msg.AsMap()))
	}
}

// formatEvent renders one event as "time name payload".
func formatEvent(ev map[string]any) string {
	name, _ := ev["name"].(string)
	when, _ := ev["emitted_at"].(string)
	if t, err := time.Parse(time.RFC3339Nano, when); err == nil {
		when = t.Local().Format("15:04:05.000")
	}

	payload := "{}"
	if p, ok := ev["payload"].(map[string]any); ok && len(p) > 0 {
		if data, err := json.Marshal(p); err == nil {
			payload = string(data)
		}
	}
	return fmt.Sprintf("%s %s %s", styleHint.Render(when), eventStyle(name).Render(padRight(name, 16)), payload)
}
