package audiofit

import (
	"context"
	"fmt"
	"io"
	"os"

	"redub/internal/cluster"
	"redub/internal/media/ffmpeg"
	"redub/internal/rerr"
)

const stageFit = "audio_fitter"
const opFit = "fit"
const opTrim = "trim_leading_silence"

// Action records which adjustment Fit applied.
type Action string

const (
	ActionCopy         Action = "copy"
	ActionPad          Action = "pad"
	ActionStretch      Action = "stretch"
	ActionNaturalSpeed Action = "natural_speed"
)

// DefaultCopyToleranceMS is the largest source/target gap still treated as
// an exact match (roughly one video frame at 50fps).
const DefaultCopyToleranceMS = 20

// DefaultLeadingSilenceTrimCPMThreshold and
// DefaultLeadingSilenceTrimMinTargetMS gate the optional leading-silence
// trim: only cues speaking slowly (low CPM) with a generously long target
// span are worth trimming.
const (
	DefaultLeadingSilenceTrimCPMThreshold = 260.0
	DefaultLeadingSilenceTrimMinTargetMS  = 1200
)

// Params configures a Fitter's thresholds.
type Params struct {
	CopyToleranceMS                int
	LeadingSilenceTrimCPMThreshold float64
	LeadingSilenceTrimMinTargetMS  int
	TrimLeadingSilence             bool
}

// DefaultParams returns the Fitter's default thresholds.
func DefaultParams() Params {
	return Params{
		CopyToleranceMS:                DefaultCopyToleranceMS,
		LeadingSilenceTrimCPMThreshold: DefaultLeadingSilenceTrimCPMThreshold,
		LeadingSilenceTrimMinTargetMS:  DefaultLeadingSilenceTrimMinTargetMS,
		TrimLeadingSilence:             true,
	}
}

func (p Params) normalize() Params {
	if p.CopyToleranceMS <= 0 {
		p.CopyToleranceMS = DefaultCopyToleranceMS
	}
	if p.LeadingSilenceTrimCPMThreshold <= 0 {
		p.LeadingSilenceTrimCPMThreshold = DefaultLeadingSilenceTrimCPMThreshold
	}
	if p.LeadingSilenceTrimMinTargetMS <= 0 {
		p.LeadingSilenceTrimMinTargetMS = DefaultLeadingSilenceTrimMinTargetMS
	}
	return p
}

// Result reports what Fit did and the durations it observed.
type Result struct {
	Action   Action
	SourceMS int
	TargetMS int
	Trimmed  bool
}

// Fitter reconciles synthesized audio duration with a visual target span.
type Fitter struct {
	ffmpeg  ffmpeg.Client
	workDir string
	params  Params
}

// New builds a Fitter. workDir is used to stage the intermediate
// leading-silence-trimmed file, when that step runs.
func New(client ffmpeg.Client, workDir string, params Params) *Fitter {
	return &Fitter{ffmpeg: client, workDir: workDir, params: params.normalize()}
}

// Fit adjusts src (a mono PCM WAV) to targetMS and writes the result to
// dst. cpm is the cue or cluster's characters-per-minute rate, used only to
// decide whether a leading-silence trim is worth attempting first.
func (f *Fitter) Fit(ctx context.Context, src string, targetMS int, cpm float64, dst string) (Result, error) {
	working := src
	trimmed := false

	if f.params.TrimLeadingSilence && f.shouldTrimLeadingSilence(cpm, targetMS) {
		trimmedPath := f.tempPath("trimmed")
		if err := f.ffmpeg.TrimLeadingSilence(ctx, src, trimmedPath); err == nil {
			working = trimmedPath
			trimmed = true
			defer removeFile(trimmedPath)
		}
		// A failed trim falls back to the original source, same as the
		// original's remove_silence best-effort behavior.
	}

	pcm, err := cluster.ReadWavFile(working)
	if err != nil {
		return Result{}, rerr.Wrap(rerr.ErrInputInvalid, stageFit, opFit, "read source audio", err)
	}
	sourceMS := pcm.DurationMS()

	diff := targetMS - sourceMS
	result := Result{SourceMS: sourceMS, TargetMS: targetMS, Trimmed: trimmed}

	switch {
	case abs(diff) <= f.params.CopyToleranceMS:
		if err := copyFile(working, dst); err != nil {
			return Result{}, rerr.Wrap(rerr.ErrToolFailure, stageFit, opFit, "copy audio through unchanged", err)
		}
		result.Action = ActionCopy
	case sourceMS < targetMS:
		if err := f.ffmpeg.PadTrailingSilence(ctx, working, targetMS, dst); err != nil {
			return Result{}, rerr.Wrap(rerr.ErrToolFailure, stageFit, opFit, "pad trailing silence", err)
		}
		result.Action = ActionPad
	default:
		ratio := float64(sourceMS) / float64(targetMS)
		if err := f.ffmpeg.ApplyTempo(ctx, working, ratio, dst); err != nil {
			return Result{}, rerr.Wrap(rerr.ErrToolFailure, stageFit, opFit, "apply tempo stretch", err)
		}
		result.Action = ActionStretch
	}

	return result, nil
}

// FitNaturalSpeed is Mode B's variant: the normalized TTS audio is returned
// untouched, with no duration reconciliation at all.
func (f *Fitter) FitNaturalSpeed(src, dst string) (Result, error) {
	if err := copyFile(src, dst); err != nil {
		return Result{}, rerr.Wrap(rerr.ErrToolFailure, stageFit, opFit, "copy natural-speed audio", err)
	}
	return Result{Action: ActionNaturalSpeed}, nil
}

func (f *Fitter) shouldTrimLeadingSilence(cpm float64, targetMS int) bool {
	return cpm > 0 && cpm <= f.params.LeadingSilenceTrimCPMThreshold && targetMS >= f.params.LeadingSilenceTrimMinTargetMS
}

func (f *Fitter) tempPath(label string) string {
	dir := f.workDir
	if dir == "" {
		dir = os.TempDir()
	}
	return fmt.Sprintf("%s/audiofit_%s_%d.wav", dir, label, os.Getpid())
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func removeFile(path string) {
	_ = os.Remove(path)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
