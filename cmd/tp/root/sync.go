package root

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

// syncReport is the audit artifact written by --report. Pre-sync values
// survive only here; the stored document keeps the derived ones.
type syncReport struct {
	SyncedAt        string                  `yaml:"syncedAt"`
	DryRun          bool                    `yaml:"dryRun"`
	Mismatches      []engine.PointsMismatch `yaml:"mismatches"`
	MatchupsUpdated int                     `yaml:"matchupsUpdated"`
}

func newSyncCmd() *cobra.Command {
	var dryRun bool
	var reportPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Re-derive stored points from the scoring formulas",
		Long:  "Re-derive every completion's points from its title and the current scoring settings, overwriting drifted values, and refresh your side of daily matchups. Use --dry-run to preview and --report to keep the pre-sync values.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cfg, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			state, err := svc.LoadState()
			if err != nil {
				return err
			}

			mismatches := engine.SyncDerivedPoints(&state, &state, dryRun)
			matchupsUpdated := 0
			if !dryRun {
				matchupsUpdated = engine.SyncYouMatchups(&state)
			}

			if reportPath != "" {
				report := syncReport{
					SyncedAt:        engine.TodayKey(),
					DryRun:          dryRun,
					Mismatches:      mismatches,
					MatchupsUpdated: matchupsUpdated,
				}
				data, err := yaml.Marshal(report)
				if err != nil {
					return fmt.Errorf("marshal report: %w", err)
				}
				if err := os.WriteFile(reportPath, data, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}

			if !dryRun && (len(mismatches) > 0 || matchupsUpdated > 0) {
				if err := svc.SaveStateSnapshot(state, saveOptions(cfg)); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconInfo, "Sync"))
			fmt.Fprintln(out, ui.LabelValue("Points corrected", len(mismatches)))
			fmt.Fprintln(out, ui.LabelValue("Matchups updated", matchupsUpdated))
			if dryRun {
				fmt.Fprintln(out, ui.Muted.Render("dry run: nothing was written"))
			}
			if reportPath != "" {
				fmt.Fprintln(out, ui.LabelValue("Report", reportPath))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report drift without writing")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML drift report to this file")

	return cmd
}
