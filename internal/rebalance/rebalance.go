package rebalance

import (
	"fmt"
	"math"

	"redub/internal/cue"
	"redub/internal/rerr"
)

const (
	stageRebalance = "rebalance"
	opRebalance    = "rebalance_intervals"

	maxSweeps = 3

	// DefaultTargetCPM is the per-cue pacing target the Rebalancer aims
	// for when no override is supplied.
	DefaultTargetCPM = 180.0
	// DefaultMaxShiftMS bounds how much duration a single sweep may move
	// across one cue boundary.
	DefaultMaxShiftMS = 1000
	// DefaultPanicCPM marks a cue dense enough to double its shift cap.
	DefaultPanicCPM = 300.0
)

// Params configures a single Rebalance call.
type Params struct {
	TargetCPM  float64
	MaxShiftMS int
	PanicCPM   float64
}

// DefaultParams returns the engine's default Rebalancer configuration.
func DefaultParams() Params {
	return Params{
		TargetCPM:  DefaultTargetCPM,
		MaxShiftMS: DefaultMaxShiftMS,
		PanicCPM:   DefaultPanicCPM,
	}
}

func (p Params) normalize() Params {
	if p.TargetCPM <= 0 {
		p.TargetCPM = DefaultTargetCPM
	}
	if p.MaxShiftMS <= 0 {
		p.MaxShiftMS = DefaultMaxShiftMS
	}
	if p.PanicCPM <= 0 {
		p.PanicCPM = DefaultPanicCPM
	}
	return p
}

// Rebalance moves visual duration between neighbouring cues to relieve
// over-dense ones, running up to three sweeps until a fixed point is
// reached. The total span, cue ordering, and cue text are all preserved;
// AssertTextEqual is run on the result before it is returned.
func Rebalance(cues cue.CueList, params Params) (cue.CueList, error) {
	n := len(cues)
	if n == 0 {
		return cues, rerr.Wrap(rerr.ErrInputInvalid, stageRebalance, opRebalance, "cannot rebalance empty cue list", nil)
	}
	params = params.normalize()

	out := cues.Clone()
	ideal := make([]float64, n)
	for i, c := range out {
		ideal[i] = idealDurationMS(c.Chars(), params.TargetCPM)
	}

	for sweep := 0; sweep < maxSweeps; sweep++ {
		changed := false
		for i := 0; i < n; i++ {
			actual := out[i].Duration()
			idealI := int(math.Round(ideal[i]))
			if actual >= idealI {
				continue
			}
			deficit := idealI - actual

			leftSurplus := 0
			if i-1 >= 0 {
				leftIdeal := int(math.Round(ideal[i-1]))
				leftSurplus = max0(out[i-1].Duration() - leftIdeal)
			}
			rightSurplus := 0
			if i+1 < n {
				rightIdeal := int(math.Round(ideal[i+1]))
				rightSurplus = max0(out[i+1].Duration() - rightIdeal)
			}

			borrowLeft := minInt(deficit/2, leftSurplus)
			borrowRight := minInt(deficit-borrowLeft, rightSurplus)

			shiftCap := params.MaxShiftMS
			if out[i].CPM() > params.PanicCPM {
				shiftCap = params.MaxShiftMS * 2
			}
			borrowLeft = minInt(borrowLeft, shiftCap)
			borrowRight = minInt(borrowRight, shiftCap)

			if borrowLeft > 0 && i-1 >= 0 {
				out[i-1].EndMS = maxInt(out[i-1].StartMS, out[i-1].EndMS-borrowLeft)
				out[i].StartMS = maxInt(0, out[i].StartMS-borrowLeft)
				changed = true
			}
			if borrowRight > 0 && i+1 < n {
				out[i].EndMS += borrowRight
				out[i+1].StartMS += borrowRight
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	if err := cue.AssertTextEqual(cues, out); err != nil {
		return nil, err
	}
	if err := validateSpan(cues, out); err != nil {
		return nil, err
	}
	if err := cue.Validate(out, true); err != nil {
		return nil, rerr.Wrap(rerr.ErrInvariant, stageRebalance, opRebalance, "ordering invariant broken after rebalance", err)
	}

	return out, nil
}

func idealDurationMS(chars int, targetCPM float64) float64 {
	return (float64(chars) / targetCPM) * 60000.0
}

func validateSpan(before, after cue.CueList) error {
	if len(before) == 0 || len(after) == 0 {
		return nil
	}
	wantStart := before[0].StartMS
	wantEnd := before[len(before)-1].EndMS
	gotStart := after[0].StartMS
	gotEnd := after[len(after)-1].EndMS
	if gotStart != wantStart || gotEnd != wantEnd {
		return rerr.WrapHint(rerr.ErrInvariant, stageRebalance, opRebalance,
			fmt.Sprintf("span changed: [%d,%d) -> [%d,%d)", wantStart, wantEnd, gotStart, gotEnd),
			"span_preservation", "rebalance must not move the first cue's start or the last cue's end", nil)
	}
	return nil
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
