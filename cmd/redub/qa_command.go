package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"redub/internal/project"
	"redub/internal/report"
)

// newQACommand renders a previously written report.json's post-flight
// sync-audit table, one row per cue's onset delta, for operators
// inspecting a completed (or previously failed post-flight) run without
// re-running the pipeline.
func newQACommand() *cobra.Command {
	return &cobra.Command{
		Use:   "qa <project-dir>",
		Short: "Show the post-flight sync audit for a project's last run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Discover(args[0])
			if err != nil {
				return err
			}

			r, err := loadReport(proj.ReportPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, report.RenderSummary(r))
			fmt.Fprintln(out)

			if r.SyncAudit == nil || len(r.SyncAudit.Entries) == 0 {
				fmt.Fprintln(out, "no sync audit entries recorded")
				return nil
			}
			fmt.Fprint(out, report.RenderSyncAuditTable(r.SyncAudit.Entries))
			return nil
		},
	}
}

func loadReport(path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %q (run \"redub dub\" first): %w", path, err)
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %q: %w", path, err)
	}
	return &r, nil
}
