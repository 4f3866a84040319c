package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wraith-app/wraith/internal/config"
	"github.com/wraith-app/wraith/internal/models"
)

var configureCmd = &cobra.Command{
	Use:     "configure",
	Aliases: []string{"config"},
	Short:   "Configure global settings",
	Long: `Configure global settings interactively.

This allows you to modify:
  - Notifications
  - Update checks (on startup, frequency)
  - Start hidden in the tray
  - Anonymous telemetry
  - Log level

Press Enter to keep the current value for any setting. A running shell
picks up the changes immediately.`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	changed := false

	setBool := func(dst *bool, prompt string) {
		if v := promptYesNoWithCurrent(reader, prompt, *dst); v != *dst {
			*dst = v
			changed = true
		}
	}

	fmt.Println("General:")
	setBool(&settings.Notifications.Enabled, "Show desktop notifications?")
	setBool(&settings.Window.StartHidden, "Start hidden in the tray?")
	setBool(&settings.Telemetry.Enabled, "Send anonymous usage statistics?")

	fmt.Println("\nUpdates:")
	setBool(&settings.Updates.CheckOnStartup, "Check for updates on startup?")
	if settings.Updates.CheckOnStartup {
		freq, err := promptChoice(reader, "Check frequency", settings.Updates.CheckFrequency,
			[]string{models.CheckEveryLaunch, models.CheckDaily, models.CheckWeekly})
		if err != nil {
			return err
		}
		if freq != settings.Updates.CheckFrequency {
			settings.Updates.CheckFrequency = freq
			changed = true
		}
	}

	fmt.Println("\nLogging:")
	level, err := promptChoice(reader, "Log level", settings.Log.Level, logLevels())
	if err != nil {
		return err
	}
	if level != settings.Log.Level {
		settings.Log.Level = level
		changed = true
	}

	if !changed {
		fmt.Println("\nNo changes made.")
		return nil
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println("\n" + styleSuccess.Render("Settings updated."))
	return nil
}

// promptYesNoWithCurrent prompts for a yes/no value showing the current value.
func promptYesNoWithCurrent(reader *bufio.Reader, prompt string, current bool) bool {
	currentStr := "no"
	if current {
		currentStr = "yes"
	}

	fmt.Printf("  %s [%s]: ", prompt, currentStr)
	response, _ := reader.ReadString('\n')
	return parseYesNo(response, current)
}

func parseYesNo(response string, current bool) bool {
	response = strings.TrimSpace(strings.ToLower(response))
	if response == "" {
		return current
	}
	return response == "y" || response == "yes"
}

// promptChoice prompts for one of choices, keeping current on empty input.
func promptChoice(reader *bufio.Reader, prompt, current string, choices []string) (string, error) {
	fmt.Printf("  %s (%s) [%s]: ", prompt, strings.Join(choices, "|"), current)
	response, _ := reader.ReadString('\n')
	return parseChoice(response, current, choices)
}

func parseChoice(response, current string, choices []string) (string, error) {
	response = strings.TrimSpace(strings.ToLower(response))
	if response == "" {
		return current, nil
	}
	for _, c := range choices {
		if response == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid choice %q (expected one of %s)", response, strings.Join(choices, ", "))
}

func logLevels() []string {
	levels := make([]string, 0, len(log.AllLevels))
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	return levels
}
