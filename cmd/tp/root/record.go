package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

func newRecordCmd() *cobra.Command {
	var includeToday bool

	cmd := &cobra.Command{
		Use:   "record [player]",
		Short: "Show a player's win/loss/tie record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID := engine.PlayerYou
			if len(args) == 1 {
				playerID = args[0]
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

			rec := engine.ComputeRecord(&state, playerID, includeToday)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Record"))
			fmt.Fprintln(out, ui.LabelValue("Player", playerID))
			fmt.Fprintln(out, ui.LabelValue("W-L-T", ui.RecordText(rec.Wins, rec.Losses, rec.Ties)))
			fmt.Fprintln(out, ui.LabelValue("Basis", rec.Basis))
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeToday, "include-today", false, "Count today's provisional matchups")

	return cmd
}
