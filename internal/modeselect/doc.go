// Package modeselect implements the Mode-Selection Heuristic: a pure
// advisor that looks at a cue list's aggregate characters-per-minute
// statistics and recommends which synthesis mode is likely to produce
// natural-sounding output. It never gates a run; the caller is always
// free to override the recommendation.
package modeselect
