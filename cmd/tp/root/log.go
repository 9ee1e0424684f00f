package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
	"github.com/mkhrrs89/TaskPoints/internal/storage"
	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

func newLogCmd() *cobra.Command {
	var points float64
	var source string
	var rested bool
	var hours float64
	var calories float64
	var at string

	cmd := &cobra.Command{
		Use:   "log <title>",
		Short: "Log a completion",
		Long:  "Log a completion. Recognized titles (\"Sleep Score (92)\", \"Work Score (7)\", \"Calories 2100\", \"Mood Score (3)\") have their points derived from the scoring formulas; anything else keeps --points.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			src := engine.Source(source)
			if !src.IsValid() {
				return fmt.Errorf("invalid source %q", source)
			}

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

			c := engine.Completion{
				ID:             storage.NewCompletionID(),
				Title:          args[0],
				Source:         src,
				CompletedAtISO: at,
				Points:         points,
				WorkHours:      hours,
				Calories:       calories,
			}
			if c.CompletedAtISO == "" {
				c.CompletedAtISO = storage.Now()
			}
			if rested {
				c.SleepRested = 1
			}

			formula := "stored"
			if d, ok := engine.DeriveCompletionPoints(c, &state); ok {
				c.Points = d.Points
				formula = d.Formula
			}

			state.Completions = append(state.Completions, c)
			if err := svc.SaveStateSnapshot(state, saveOptions(cfg)); err != nil {
				return err
			}

			rollups := engine.BuildRollups(&state)
			today := engine.DeriveTodayWithInertia(rollups.Daily, engine.TodayKey(), &state)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTask, "Logged"))
			fmt.Fprintln(out, ui.LabelValue("Title", c.Title))
			fmt.Fprintln(out, ui.LabelValue("Points", fmt.Sprintf("%s (%s)", ui.Points(c.Points), formula)))
			fmt.Fprintln(out, ui.LabelValue("Today", fmt.Sprintf("%.2f (base %.2f + inertia %.2f)", today.TodayPoints, today.Base, today.Inertia)))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&points, "points", "p", 0, "Stored points (ignored for recognized titles)")
	cmd.Flags().StringVarP(&source, "source", "s", string(engine.DefaultSource), "Source (task|habit|vice|flex|work|game|metric)")
	cmd.Flags().BoolVar(&rested, "sleep-rested", false, "Woke up rested (sleep bonus)")
	cmd.Flags().Float64Var(&hours, "work-hours", 0, "Hours worked (work formula)")
	cmd.Flags().Float64Var(&calories, "calories", 0, "Calories eaten (calorie-log bonus)")
	cmd.Flags().StringVar(&at, "at", "", "Completion time (RFC 3339, default now)")

	return cmd
}
