package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wraith-app/wraith/internal/app"
	"github.com/wraith-app/wraith/internal/config"
	"github.com/wraith-app/wraith/internal/models"
)

var runFlags struct {
	headless bool
	port     int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the shell (default command)",
	RunE:  runShell,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&runFlags.headless, "headless", false, "Run without the system tray icon")
	cmd.Flags().IntVar(&runFlags.port, "port", 0, "Port for the command endpoint (0 for dynamic allocation)")
}

func runShell(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Warnf("[config] Failed to load settings, using defaults: %v", err)
		settings = models.NewSettings()
	}
	if err := config.InitLog(settings.Log.Level, settings.Log.File); err != nil {
		log.Warnf("[config] Failed to set up logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(settings, app.Options{
		Headless: runFlags.headless,
		Port:     runFlags.port,
	})
	if err != nil {
		return err
	}

	err = a.Run(ctx)
	if errors.Is(err, app.ErrAlreadyRunning) {
		// Single instance: bring the running shell forward instead.
		if showErr := showRunningInstance(); showErr != nil {
			log.Warnf("[app] Failed to reach running instance: %v", showErr)
			return err
		}
		fmt.Println(styleHint.Render("Wraith is already running; showing its window."))
		return nil
	}
	if err == nil {
		log.Info("[app] Stopped")
	}
	return err
}
