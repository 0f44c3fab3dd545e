package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"redub/internal/cue"
	"redub/internal/project"
	"redub/internal/speaker"
)

// newInspectCommand lists a project's parsed cues alongside their
// resolved speaker, character/CPM stats, and whether a first-class gap
// (spec §3's Gap) follows, without running any synthesis.
func newInspectCommand() *cobra.Command {
	var gapThresholdMS int

	cmd := &cobra.Command{
		Use:   "inspect <project-dir>",
		Short: "List a project's cues, speakers, and pacing without synthesizing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Discover(args[0])
			if err != nil {
				return err
			}
			cues, err := cue.Load(proj.SubtitlePath)
			if err != nil {
				return err
			}
			gaps := cue.DetectGaps(cues, gapThresholdMS)
			gapAfter := make(map[int]cue.Gap, len(gaps))
			for _, g := range gaps {
				gapAfter[g.PrevIdx] = g
			}

			resolver := speaker.NewResolver()
			rows := make([][]string, 0, len(cues))
			for i, c := range cues {
				name, _ := resolver.Resolve(c.Text)
				gapLabel := "-"
				if g, ok := gapAfter[i]; ok {
					gapLabel = strconv.Itoa(g.DurationMS) + "ms"
				}
				rows = append(rows, []string{
					strconv.Itoa(i),
					strconv.Itoa(c.StartMS),
					strconv.Itoa(c.EndMS),
					strconv.Itoa(c.Duration()),
					strconv.Itoa(c.Chars()),
					fmt.Sprintf("%.0f", c.CPM()),
					name,
					gapLabel,
				})
			}

			out := cmd.OutOrStdout()
			headers := []string{"cue", "start_ms", "end_ms", "duration_ms", "chars", "cpm", "speaker", "gap_after"}
			aligns := []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft, alignRight}
			fmt.Fprint(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&gapThresholdMS, "gap-threshold-ms", 100, "minimum inter-cue silence treated as a first-class gap")
	return cmd
}
