package modeselect

import "redub/internal/cue"

// Mode identifies which synthesis mode is recommended.
type Mode string

const (
	// ModeA is elastic audio: video stays fixed, audio stretches/pads to
	// meet each cue's visual window.
	ModeA Mode = "mode_a"
	// ModeB is elastic video: audio runs at natural speed, video stretches
	// to meet it.
	ModeB Mode = "mode_b"
)

// DefaultPanicCPM is the aggregate max-CPM threshold above which a cue
// list is considered too dense for Mode A to fit comfortably.
const DefaultPanicCPM = 300.0

// DefaultTargetCPMLow and DefaultTargetCPMHigh bound the target CPM band
// recommended for Mode A's Rebalancer when Mode A is chosen.
const (
	DefaultTargetCPMLow  = 160.0
	DefaultTargetCPMHigh = 180.0
)

// Stats are the aggregate CPM statistics the heuristic reasons over.
type Stats struct {
	MaxCPM  float64
	MeanCPM float64
	MinCPM  float64
}

// ComputeStats aggregates per-cue CPM across a cue list. Zero-duration
// cues contribute a CPM of 0 (per cue.Cue.CPM), which can pull MeanCPM
// down but never inflates MaxCPM.
func ComputeStats(cues cue.CueList) Stats {
	if len(cues) == 0 {
		return Stats{}
	}
	var sum, max, min float64
	min = cues[0].CPM()
	for i, c := range cues {
		cpm := c.CPM()
		sum += cpm
		if cpm > max {
			max = cpm
		}
		if i == 0 || cpm < min {
			min = cpm
		}
	}
	return Stats{
		MaxCPM:  max,
		MeanCPM: sum / float64(len(cues)),
		MinCPM:  min,
	}
}

// Recommendation is the heuristic's advisory output.
type Recommendation struct {
	Mode          Mode
	UseClusterer  bool
	NoRebalance   bool
	TargetCPMLow  float64
	TargetCPMHigh float64
	Reason        string
	Stats         Stats
}

// Recommend computes the Mode-Selection Heuristic's recommendation from a
// cue list's aggregate CPM statistics: above panicCPM, recommend Mode B
// with no_rebalance (the Rebalancer is skipped entirely so content isn't
// squeezed further); otherwise recommend Mode A with the Clusterer enabled.
// Both branches carry the same target CPM band of [targetLow, targetHigh];
// the Recommendation holds no length limits, so a Mode B recommendation does
// not tighten them. This is advisory only — the caller always picks the mode.
func Recommend(cues cue.CueList, panicCPM, targetLow, targetHigh float64) Recommendation {
	if panicCPM <= 0 {
		panicCPM = DefaultPanicCPM
	}
	if targetLow <= 0 {
		targetLow = DefaultTargetCPMLow
	}
	if targetHigh <= 0 {
		targetHigh = DefaultTargetCPMHigh
	}

	stats := ComputeStats(cues)

	if stats.MaxCPM > panicCPM {
		return Recommendation{
			Mode:          ModeB,
			UseClusterer:  false,
			NoRebalance:   true,
			TargetCPMLow:  targetLow,
			TargetCPMHigh: targetHigh,
			Reason:        "max CPM exceeds the panic threshold; audio stretching would need to exceed safe limits",
			Stats:         stats,
		}
	}

	return Recommendation{
		Mode:          ModeA,
		UseClusterer:  true,
		NoRebalance:   false,
		TargetCPMLow:  targetLow,
		TargetCPMHigh: targetHigh,
		Reason:        "CPM stays within comfortable stretch range for elastic audio",
		Stats:         stats,
	}
}
