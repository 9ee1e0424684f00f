package root

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkhrrs89/TaskPoints/internal/engine"
	"github.com/mkhrrs89/TaskPoints/internal/ui"
)

func newSettingsCmd() *cobra.Command {
	var reset bool
	var fromFile string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show, replace or reset the scoring settings",
		Long:  "Show the scoring settings. --from-file replaces them with a JSON settings object (same shape as the stored document's scoringSettings); --reset restores the defaults.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset && fromFile != "" {
				return fmt.Errorf("--reset and --from-file are mutually exclusive")
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

			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", fromFile, err)
				}
				var incoming engine.Settings
				if err := json.Unmarshal(data, &incoming); err != nil {
					return fmt.Errorf("parse settings: %w", err)
				}
				state.ScoringSettings = engine.NormalizeSettings(incoming)
				opts := saveOptions(cfg)
				opts.OverrideSticky = true
				if _, err := svc.MergeAndSaveState(state, opts); err != nil {
					return err
				}
			}

			if reset {
				state.ScoringSettings = engine.DefaultSettings()
				opts := saveOptions(cfg)
				opts.OverrideSticky = true
				if _, err := svc.MergeAndSaveState(state, opts); err != nil {
					return err
				}
			}

			s := engine.ResolveSettings(&state)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconInfo, "Scoring settings"))
			if reset {
				fmt.Fprintln(out, ui.Warn.Render("reset to defaults"))
			} else if fromFile != "" {
				fmt.Fprintln(out, ui.Warn.Render("replaced from "+fromFile))
			} else if s.IsDefault() {
				fmt.Fprintln(out, ui.Muted.Render("(defaults)"))
			}

			fmt.Fprintln(out, ui.H2.Render(ui.IconSleep+" Sleep"))
			fmt.Fprintf(out, "- points = score/%.0f*%.2f %+.2f, rested x%.2f\n",
				s.Sleep.BaseDivisor, s.Sleep.BaseMultiplier, s.Sleep.BaseOffset, s.Sleep.RestedMultiplier)
			for _, tier := range s.Sleep.Tiers {
				fmt.Fprintf(out, "- tier: score >= %.0f gives +%.2f\n", tier.Min, tier.Bonus)
			}

			fmt.Fprintln(out, ui.H2.Render(ui.IconWork+" Work"))
			hoursMax := "unbounded"
			if s.Work.HoursMax != nil {
				hoursMax = fmt.Sprintf("%.1f", *s.Work.HoursMax)
			}
			fmt.Fprintf(out, "- points = score*%.2f %+.2f + hours*%.2f %+.2f (hours %.1f to %s)\n",
				s.Work.BaseMultiplier, s.Work.BaseOffset, s.Work.HoursMultiplier, s.Work.HoursOffset,
				s.Work.HoursMin, hoursMax)

			fmt.Fprintln(out, ui.H2.Render(ui.IconMeals+" Calories"))
			fmt.Fprintf(out, "- points = (%.0f - calories)/100*%.2f, clamped to [%.1f, %.1f]\n",
				s.Calories.Target, s.Calories.PointsPer100, s.Calories.MinPoints, s.Calories.MaxPoints)

			fmt.Fprintln(out, ui.H2.Render(ui.IconMood+" Mood"))
			moodRange := ""
			if s.Mood.Min != nil || s.Mood.Max != nil {
				lo, hi := "-inf", "+inf"
				if s.Mood.Min != nil {
					lo = fmt.Sprintf("%.1f", *s.Mood.Min)
				}
				if s.Mood.Max != nil {
					hi = fmt.Sprintf("%.1f", *s.Mood.Max)
				}
				moodRange = fmt.Sprintf(", clamped to [%s, %s]", lo, hi)
			}
			fmt.Fprintf(out, "- points = score*%.2f %+.2f%s\n", s.Mood.Multiplier, s.Mood.Offset, moodRange)

			fmt.Fprintln(out, ui.H2.Render(ui.IconInertia+" Inertia"))
			fmt.Fprintf(out, "- bonus = %.2f x average of the last %d tracked days\n",
				s.Inertia.Multiplier, s.Inertia.WindowDays)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Reset scoring settings to defaults")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Replace scoring settings from a JSON file")

	return cmd
}
