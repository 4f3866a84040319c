// Package cli implements the wraith command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wraith",
	Short: "Wraith desktop shell",
	Long: `Wraith runs the desktop shell: the tray icon, background updates and
wraith:// deep links. Without a subcommand it starts the shell.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("Error:"), err)
	}
	return err
}

func init() {
	addRunFlags(rootCmd)

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}
