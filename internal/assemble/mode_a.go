package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"redub/internal/cue"
	"redub/internal/media/ffmpeg"
	"redub/internal/rerr"
)

const stageAssemble = "timeline_assembler"
const opAssembleModeA = "assemble_mode_a"

// ModeAInput describes the inputs to a Mode A (elastic audio) assembly.
type ModeAInput struct {
	Cues             cue.CueList
	FittedAudioPaths []string // one entry per cue, already fitted to cue duration
	VideoDurationMS  int
	SampleRateHz     int
}

// AssembleModeA concatenates leading silence, each cue's fitted audio
// interleaved with inter-cue silence, and trailing silence out to the
// video's total duration, writing the result to dstAudioPath. The video
// itself is untouched in Mode A.
func AssembleModeA(ctx context.Context, client ffmpeg.Client, workDir string, in ModeAInput, dstAudioPath string) error {
	if len(in.Cues) == 0 {
		return rerr.Wrap(rerr.ErrInputInvalid, stageAssemble, opAssembleModeA, "cue list is empty", nil)
	}
	if len(in.FittedAudioPaths) != len(in.Cues) {
		return rerr.Wrap(rerr.ErrInputInvalid, stageAssemble, opAssembleModeA,
			"fitted audio path count must match cue count", nil)
	}

	var parts []string
	var cleanup []string
	defer func() {
		for _, p := range cleanup {
			_ = os.Remove(p)
		}
	}()

	addSilence := func(durationMS int, label string) error {
		if durationMS <= 0 {
			return nil
		}
		path := filepath.Join(workDir, fmt.Sprintf("silence_%s.wav", label))
		if err := client.GenerateSilence(ctx, durationMS, in.SampleRateHz, path); err != nil {
			return rerr.Wrap(rerr.ErrToolFailure, stageAssemble, opAssembleModeA,
				fmt.Sprintf("generate %s silence", label), err)
		}
		parts = append(parts, path)
		cleanup = append(cleanup, path)
		return nil
	}

	if err := addSilence(in.Cues[0].StartMS, "leading"); err != nil {
		return err
	}

	for i, c := range in.Cues {
		parts = append(parts, in.FittedAudioPaths[i])
		if i+1 < len(in.Cues) {
			gapMS := in.Cues[i+1].StartMS - c.EndMS
			if err := addSilence(gapMS, fmt.Sprintf("gap_%d", i)); err != nil {
				return err
			}
		}
	}

	last := in.Cues[len(in.Cues)-1]
	if err := addSilence(in.VideoDurationMS-last.EndMS, "trailing"); err != nil {
		return err
	}

	if err := client.Concat(ctx, parts, dstAudioPath); err != nil {
		return rerr.Wrap(rerr.ErrToolFailure, stageAssemble, opAssembleModeA, "concatenate audio track", err)
	}
	return nil
}
