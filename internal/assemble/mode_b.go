package assemble

import (
	"context"

	"redub/internal/cue"
	"redub/internal/media/ffmpeg"
	"redub/internal/rerr"
	"redub/internal/speaker"
)

const opAssembleModeB = "assemble_mode_b"
const opBuildModeBTimeline = "build_mode_b_subtitle"

// ModeBSegment is one retimed video clip plus its matching natural-speed
// audio clip, in final timeline order. Role distinguishes a synthesised
// cue from an inserted gap or blank passthrough.
type ModeBSegment struct {
	CueIdx    int
	Role      Role
	VideoPath string
	AudioPath string
	TTSMs     int
}

// AssembleModeB concatenates each segment's video and audio clips, in
// order, into the final video and audio tracks.
func AssembleModeB(ctx context.Context, client ffmpeg.Client, segments []ModeBSegment, dstVideoPath, dstAudioPath string) error {
	if len(segments) == 0 {
		return rerr.Wrap(rerr.ErrInputInvalid, stageAssemble, opAssembleModeB, "segment list is empty", nil)
	}

	videoParts := make([]string, len(segments))
	audioParts := make([]string, len(segments))
	for i, seg := range segments {
		if seg.VideoPath == "" || seg.AudioPath == "" {
			return rerr.Wrap(rerr.ErrInputInvalid, stageAssemble, opAssembleModeB,
				"segment is missing a video or audio path", nil)
		}
		videoParts[i] = seg.VideoPath
		audioParts[i] = seg.AudioPath
	}

	if err := client.Concat(ctx, videoParts, dstVideoPath); err != nil {
		return rerr.Wrap(rerr.ErrToolFailure, stageAssemble, opAssembleModeB, "concatenate video track", err)
	}
	if err := client.Concat(ctx, audioParts, dstAudioPath); err != nil {
		return rerr.Wrap(rerr.ErrToolFailure, stageAssemble, opAssembleModeB, "concatenate audio track", err)
	}
	return nil
}

// BuildModeBTimeline constructs the new subtitle timeline Mode B produces:
// each cue's new start is the running cumulative offset, its new end adds
// that cue's synthesised duration, and any gap whose PrevIdx matches the
// cue's index is added to the offset before the next cue begins. When
// keepSpeakerTags is false, a leading "[Speaker:Name]" tag is stripped from the
// cue's text via speaker.ExtractSpeaker.
func BuildModeBTimeline(cues cue.CueList, ttsDurationsMS []int, gaps []cue.Gap, keepSpeakerTags bool) (cue.CueList, error) {
	if len(cues) == 0 {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageAssemble, opBuildModeBTimeline, "cue list is empty", nil)
	}
	if len(ttsDurationsMS) != len(cues) {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageAssemble, opBuildModeBTimeline,
			"tts duration count must match cue count", nil)
	}

	gapByPrevIdx := make(map[int]cue.Gap, len(gaps))
	for _, g := range gaps {
		gapByPrevIdx[g.PrevIdx] = g
	}

	out := make(cue.CueList, len(cues))
	cumulativeMS := 0
	for i, c := range cues {
		text := c.Text
		if !keepSpeakerTags {
			_, rest := speaker.ExtractSpeaker(text)
			text = rest
		}

		duration := ttsDurationsMS[i]
		out[i] = cue.Cue{
			StartMS: cumulativeMS,
			EndMS:   cumulativeMS + duration,
			Text:    text,
		}
		cumulativeMS += duration

		if g, ok := gapByPrevIdx[i]; ok {
			cumulativeMS += g.DurationMS
		}
	}
	return out, nil
}
