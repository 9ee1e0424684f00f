package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

func newTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's score with momentum",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			state, err := svc.LoadState()
			if err != nil {
				return err
			}

			rollups := engine.BuildRollups(&state)
			today := engine.DeriveTodayWithInertia(rollups.Daily, engine.TodayKey(), &state)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDay, "Today"))
			fmt.Fprintln(out, ui.LabelValue("Score", fmt.Sprintf("%.2f", today.TodayPoints)))
			fmt.Fprintln(out, ui.LabelValue("Base", fmt.Sprintf("%.2f", today.Base)))
			fmt.Fprintln(out, ui.LabelValue("Inertia", fmt.Sprintf("%.2f (lookback avg %.2f)", today.Inertia, today.Average)))
			return nil
		},
	}

	return cmd
}
