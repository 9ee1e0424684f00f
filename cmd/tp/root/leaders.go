package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

func newLeadersCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaders",
		Short: "Show best days, weeks and months",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1")
			}

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
			leaders := engine.ComputeLeaderboards(&state)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Leaderboards"))
			printLeaders(cmd, "Best days", leaders.BestDays, limit, func(e engine.LeaderboardEntry) string {
				return engine.NiceDate(e.Key)
			})
			printLeaders(cmd, "Best weeks", leaders.BestWeeks, limit, func(e engine.LeaderboardEntry) string {
				if e.Start.IsZero() {
					return e.Key
				}
				return fmt.Sprintf("%s (%s to %s)", e.Key, e.Start.Format("Jan 2"), e.End.Format("Jan 2"))
			})
			printLeaders(cmd, "Best months", leaders.BestMonths, limit, func(e engine.LeaderboardEntry) string {
				return engine.FormatMonthKey(e.Key)
			})
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Entries per board")

	return cmd
}

func printLeaders(cmd *cobra.Command, title string, entries []engine.LeaderboardEntry, limit int, label func(engine.LeaderboardEntry) string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.H2.Render(title))
	if len(entries) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("(none)"))
		return
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i, e := range entries {
		medal := fmt.Sprintf("%d.", i+1)
		if i == 0 {
			medal = ui.Gold.Render("1.")
		}
		fmt.Fprintf(out, "%s %-24s %.2f\n", medal, label(e), e.Total)
	}
	fmt.Fprintln(out, "")
}
