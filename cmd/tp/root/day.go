package root

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

func newDayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Show a day's itemized breakdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dateKey := engine.TodayKey()
			if len(args) == 1 {
				if _, ok := engine.FromKey(args[0]); !ok {
					return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", args[0])
				}
				dateKey = args[0]
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

			snap := engine.BuildDaySnapshot(dateKey, &state)
			totals := engine.ComputeDayTotals(snap)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDay, engine.NiceDate(dateKey)))
			if len(snap.Items) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no entries)"))
			}
			for _, item := range snap.Items {
				label := engine.CategoryLabel(item.Category)
				fmt.Fprintf(out, "%s %-28s %s\n", ui.CategoryIcon(label), item.Label, ui.Points(item.Points))
			}
			if snap.Inertia != 0 {
				fmt.Fprintf(out, "%s %-28s %s %s\n", ui.IconInertia, engine.InertiaCategoryLabel,
					ui.Points(snap.Inertia), ui.Muted.Render(fmt.Sprintf("(lookback avg %.2f)", snap.InertiaAverage)))
			}
			fmt.Fprintln(out, "")

			labels := make([]string, 0, len(totals.ByCategory))
			for label := range totals.ByCategory {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				if totals.ByCategory[label] == 0 {
					continue
				}
				fmt.Fprintf(out, "- %-10s %s\n", label, ui.Points(totals.ByCategory[label]))
			}
			fmt.Fprintln(out, ui.LabelValue("Total", fmt.Sprintf("%.2f", totals.Total)))
			for _, note := range totals.RoundingNotes {
				fmt.Fprintln(out, ui.Muted.Render(note))
			}
			return nil
		},
	}

	return cmd
}
