package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wraith-app/wraith/internal/commands"
	"github.com/wraith-app/wraith/internal/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system information and file locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		sys := commands.System()
		fmt.Printf("  %s\n", styleBrand.Render("System"))
		field("Platform", sys.Platform)
		field("Arch", sys.Arch)
		field("Family", sys.Family)

		dir, err := config.GlobalDir()
		if err != nil {
			return err
		}
		settingsFile, err := config.GlobalSettingsFile()
		if err != nil {
			return err
		}
		logs, err := config.GlobalLogsDir()
		if err != nil {
			return err
		}
		fmt.Printf("\n  %s\n", styleBrand.Render("Paths"))
		field("Home", dir)
		field("Settings", settingsFile)
		field("Logs", logs)
		return nil
	},
}
