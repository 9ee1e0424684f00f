package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "tp",
	Short:         "TaskPoints — local-first gamified day scoring",
	Long:          "TaskPoints scores your days: completions earn points through title-derived formulas, momentum compounds across days, and best days/weeks/months compete on leaderboards.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newLogCmd(),
		newDayCmd(),
		newTodayCmd(),
		newLeadersCmd(),
		newRecordCmd(),
		newSyncCmd(),
		newExportCmd(),
		newImportCmd(),
		newSettingsCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
