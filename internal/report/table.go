package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"redub/internal/qa"
)

// RenderSummary renders a CLI summary table for a completed run: mode,
// cue counts, warnings, and sync-audit pass rate. Cue and warning counts are
// humanized with thousands separators; durations are shown in plain ms.
func RenderSummary(r *Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"field", "value"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})

	tw.AppendRow(table.Row{"input video", r.InputVideoPath})
	tw.AppendRow(table.Row{"input subtitle", r.InputSubtitlePath})
	tw.AppendRow(table.Row{"mode", r.Mode})
	tw.AppendRow(table.Row{"cues total", humanize.Comma(int64(r.CuesTotal))})
	tw.AppendRow(table.Row{"cues synthesized", humanize.Comma(int64(r.CuesSynthesized))})
	tw.AppendRow(table.Row{"cues cached", humanize.Comma(int64(r.CuesCached))})
	tw.AppendRow(table.Row{"warnings", humanize.Comma(int64(len(r.Warnings)))})
	tw.AppendRow(table.Row{"length parity delta", fmt.Sprintf("%d ms", r.LengthParityMS)})

	if r.SyncAudit != nil {
		total := r.SyncAudit.PassCount + r.SyncAudit.FailCount
		tw.AppendRow(table.Row{
			"sync audit",
			fmt.Sprintf("%d/%d passed (tolerance %d ms)", r.SyncAudit.PassCount, total, r.SyncAudit.ToleranceMS),
		})
	}
	if r.Preflight != nil {
		tw.AppendRow(table.Row{"preflight", passFailLabel(r.Preflight.AllPassed)})
	}

	tw.AppendRow(table.Row{"output video", r.OutputVideoPath})
	tw.AppendRow(table.Row{"report", r.ReportPath})
	tw.AppendRow(table.Row{"cpm audit csv", r.AuditCSVPath})

	return tw.Render()
}

func passFailLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

// RenderSyncAuditTable renders one row per post-flight onset-delta entry,
// for the `redub qa` subcommand's verbose output.
func RenderSyncAuditTable(entries []qa.SyncAuditEntry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"cue", "start_ms", "detected_ms", "delta_ms", "result"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Index, e.StartMS, e.DetectedMS, e.DeltaMS, passFailLabel(e.Passed)})
	}
	return tw.Render()
}
