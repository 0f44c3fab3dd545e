package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/cue"
	"redub/internal/modeselect"
	"redub/internal/project"
)

// newRecommendCommand exposes spec §4.11's Mode-Selection Heuristic as an
// advisor the operator consults before choosing --mode on "redub dub": it
// never picks a mode itself.
func newRecommendCommand(cfgFn func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <project-dir>",
		Short: "Recommend Mode A or Mode B for a project's subtitle track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if cfg == nil {
				return fmt.Errorf("configuration not available")
			}

			proj, err := project.Discover(args[0])
			if err != nil {
				return err
			}
			cues, err := cue.Load(proj.SubtitlePath)
			if err != nil {
				return err
			}

			rec := modeselect.Recommend(cues, cfg.PanicCPM, modeselect.DefaultTargetCPMLow, modeselect.DefaultTargetCPMHigh)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cues: %d\n", len(cues))
			fmt.Fprintf(out, "max cpm: %.1f\n", rec.Stats.MaxCPM)
			fmt.Fprintf(out, "mean cpm: %.1f\n", rec.Stats.MeanCPM)
			fmt.Fprintf(out, "min cpm: %.1f\n", rec.Stats.MinCPM)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "recommended mode: %s\n", rec.Mode)
			fmt.Fprintf(out, "clusterer: %v\n", rec.UseClusterer)
			fmt.Fprintf(out, "no-rebalance: %v\n", rec.NoRebalance)
			fmt.Fprintf(out, "target cpm band: [%.0f, %.0f]\n", rec.TargetCPMLow, rec.TargetCPMHigh)
			fmt.Fprintf(out, "reason: %s\n", rec.Reason)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "this is advisory only; run with --mode to override")
			return nil
		},
	}
}
