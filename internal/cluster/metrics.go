package cluster

import "redub/internal/cue"

// Break records a point where consecutive cues neither end on terminal
// punctuation nor open with a dialogue dash — a place a viewer would
// perceive as a mid-thought cut.
type Break struct {
	AtIdx    int
	Previous string
	Next     string
}

// FluencyMetrics is a pipeline-independent diagnostic scoring how cleanly a
// CueList already divides along clustering boundaries. It does not affect
// any pipeline stage and is not written to report.json; callers may run it
// to characterize a CueList before or after clustering.
type FluencyMetrics struct {
	Total            int
	TerminalEndRatio float64
	BreakCount       int
	Breaks           []Break
}

// ScoreFluency computes FluencyMetrics for cues.
func ScoreFluency(cues cue.CueList) FluencyMetrics {
	total := len(cues)
	if total == 0 {
		return FluencyMetrics{}
	}

	termEnd := 0
	for _, c := range cues {
		if endsWithTerminalPunctuation(c.Text) {
			termEnd++
		}
	}

	var breaks []Break
	for i := 0; i < len(cues)-1; i++ {
		a, b := cues[i], cues[i+1]
		if !endsWithTerminalPunctuation(a.Text) && !beginsWithDialogueDash(b.Text) {
			breaks = append(breaks, Break{
				AtIdx:    i + 1,
				Previous: a.Text,
				Next:     b.Text,
			})
		}
	}

	return FluencyMetrics{
		Total:            total,
		TerminalEndRatio: float64(termEnd) / float64(total),
		BreakCount:       len(breaks),
		Breaks:           breaks,
	}
}
