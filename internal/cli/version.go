package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/wraith-app/wraith/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		channel := ""
		if buildinfo.Channel != "" {
			channel = styleHint.Render("(" + buildinfo.Channel + ")")
		}
		fmt.Printf("  %s %s %s\n",
			styleBrand.Render("wraith"),
			styleVersion.Render(buildinfo.Version),
			channel,
		)
		field("Commit", buildinfo.CommitHash)
		field("Built", buildinfo.BuildDate)
		field("OS/Arch", runtime.GOOS+"/"+runtime.GOARCH)
		field("Go", runtime.Version())
	},
}
