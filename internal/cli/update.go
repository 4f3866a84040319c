package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wraith-app/wraith/internal/buildinfo"
	"github.com/wraith-app/wraith/internal/config"
	"github.com/wraith-app/wraith/internal/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for and install updates",
}

var updateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a newer version is published",
	RunE:  runUpdateCheck,
}

var updateInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Download and install the latest version",
	RunE:  runUpdateInstall,
}

func init() {
	updateCmd.AddCommand(updateCheckCmd)
	updateCmd.AddCommand(updateInstallCmd)
}

func runUpdateCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("Checking for updates...")

	// Prefer the running shell so its state and the UI stay in sync.
	if conn, client, err := connectInstance(); err == nil {
		defer conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()

		available, err := client.CheckForUpdates(ctx)
		if err != nil {
			return rpcError(err)
		}
		state, err := client.GetUpdateState(ctx)
		if err != nil {
			return rpcError(err)
		}
		printCheckResult(available,
			state.Fields["current_version"].GetStringValue(),
			state.Fields["version"].GetStringValue(),
			state.Fields["release_url"].GetStringValue())
		return nil
	} else if !errors.Is(err, errNotRunning) {
		return err
	}

	m, err := newLocalManager()
	if err != nil {
		return err
	}
	available, err := m.CheckForUpdate(cmd.Context())
	if err != nil {
		return err
	}
	latest, releaseURL := "", ""
	if s := m.State(); s.Manifest != nil {
		latest, releaseURL = s.Manifest.Version, s.Manifest.ReleaseURL
	}
	printCheckResult(available, m.CurrentVersion(), latest, releaseURL)
	return nil
}

func printCheckResult(available bool, current, latest, releaseURL string) {
	if !available {
		fmt.Printf("Already up to date (v%s).\n", current)
		return
	}
	fmt.Printf("%s v%s → v%s\n", styleUpdate.Render("Update available:"), current, latest)
	if releaseURL != "" {
		fmt.Printf("Release: %s\n", releaseURL)
	}
	fmt.Println(styleHint.Render("Run `wraith update install` to install it."))
}

func runUpdateInstall(cmd *cobra.Command, args []string) error {
	// A running shell installs and restarts itself.
	if conn, client, err := connectInstance(); err == nil {
		defer conn.Close()
		ctx := context.Background()

		available, err := client.CheckForUpdates(ctx)
		if err != nil {
			return rpcError(err)
		}
		if !available {
			fmt.Println("Already up to date.")
			return nil
		}
		fmt.Println("Installing update in the running shell...")
		// The shell re-executes itself on success, which may cut the call short.
		if err := client.InstallUpdate(ctx); err != nil && status.Code(err) != codes.Unavailable {
			return rpcError(err)
		}
		fmt.Println(styleSuccess.Render("Update installed; wraith is restarting."))
		return nil
	} else if !errors.Is(err, errNotRunning) {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := newLocalManager()
	if err != nil {
		return err
	}
	available, err := m.CheckForUpdate(ctx)
	if err != nil {
		return err
	}
	if !available {
		fmt.Printf("Already up to date (v%s).\n", m.CurrentVersion())
		return nil
	}
	latest := m.State().Manifest.Version

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case p := <-m.Progress():
				fmt.Printf("\rDownloading v%s... %3d%%", p.Version, p.Percent)
			}
		}
	}()
	err = m.Install(ctx)
	close(done)
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("%s v%s.\n", styleSuccess.Render("Updated to"), latest)
	return nil
}

// newLocalManager builds an update manager for this CLI process. The binary
// is replaced on disk; the next launch runs the new version.
func newLocalManager() (*updater.Manager, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	downloads, err := config.GlobalUpdatesDir()
	if err != nil {
		return nil, err
	}

	source := updater.NewGitHubSource(updater.GitHubConfig{
		Endpoint:    settings.Updates.Endpoint,
		DownloadDir: downloads,
		UserAgent:   buildinfo.UserAgent(),
	})
	return updater.NewManager(source, updater.Options{
		CurrentVersion: buildinfo.Version,
		Restart:        func() error { return nil },
	}), nil
}
