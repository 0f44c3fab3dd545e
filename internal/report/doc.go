// Package report assembles the final run report (report.json), the CPM
// audit CSV, and the CLI summary table printed at the end of a run: input
// files, mode, chosen parameters, cues synthesized vs cached, warnings,
// post-flight sync statistics, and output paths.
package report
