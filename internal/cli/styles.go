package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/wraith-app/wraith/internal/eventbus"
)

// Adaptive colors for light and dark terminals.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleUpdate  = lipgloss.NewStyle().Bold(true).Foreground(colorOrange)
)

// Event name styles for `wraith events`.
var eventStyles = map[string]lipgloss.Style{
	eventbus.DeepLink:        lipgloss.NewStyle().Foreground(colorCyan),
	eventbus.TrayMenu:        lipgloss.NewStyle().Foreground(colorWhite),
	eventbus.UpdateAvailable: styleUpdate,
	eventbus.UpdateProgress:  lipgloss.NewStyle().Foreground(colorYellow),
	eventbus.UpdateState:     lipgloss.NewStyle().Foreground(colorOrange),
	eventbus.WindowControl:   lipgloss.NewStyle().Foreground(colorGreen),
}

func eventStyle(name string) lipgloss.Style {
	if s, ok := eventStyles[name]; ok {
		return s
	}
	return styleValue
}

// field prints one aligned label/value line.
func field(label, value string) {
	fmt.Printf("    %s %s\n", styleLabel.Render(padRight(label, 9)), styleValue.Render(value))
}

func padRight(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s
}
