package videostretch

import (
	"context"
	"fmt"
	"os"

	"redub/internal/media/ffmpeg"
	"redub/internal/rerr"
)

const stageStretch = "video_stretcher"
const opExtract = "extract_segment"
const opRetime = "retime"

// SkipRatioTolerance is the narrowest |ratio-1| still treated as "no
// stretch needed" — a video segment already matching its target duration
// within 1% is extracted but left untouched.
const SkipRatioTolerance = 0.01

// WarnRatioLow and WarnRatioHigh bound the ratio range considered safe to
// retime without visibly distorting motion; outside this range the segment
// is still retimed, but the caller should surface a warning.
const (
	WarnRatioLow  = 0.3
	WarnRatioHigh = 3.0
)

// Segment is the outcome of stretching one cue or gap's video.
type Segment struct {
	Path      string
	Ratio     float64
	Stretched bool
	Warning   string
}

// Stretcher extracts and retimes video segments against a single source
// video file.
type Stretcher struct {
	ffmpeg ffmpeg.Client
}

// New builds a Stretcher bound to client.
func New(client ffmpeg.Client) *Stretcher {
	return &Stretcher{ffmpeg: client}
}

// Stretch extracts [startMS, endMS) from videoPath into dst and retimes it
// by ratio (target_duration / source_duration, the inverse of
// internal/audiofit's tempo ratio: RetimeVideo multiplies every timestamp
// by it, so ratio > 1 lengthens the clip), unless ratio is within
// SkipRatioTolerance of 1.0, in which case the extracted segment is left
// untouched.
func (s *Stretcher) Stretch(ctx context.Context, videoPath string, startMS, endMS int, ratio float64, dst string) (Segment, error) {
	extracted := dst
	if needsRetime(ratio) {
		extracted = dst + ".extracted.mp4"
	}

	if err := s.ffmpeg.ExtractSegment(ctx, videoPath, startMS, endMS, extracted); err != nil {
		return Segment{}, rerr.Wrap(rerr.ErrToolFailure, stageStretch, opExtract,
			fmt.Sprintf("extract video segment [%d,%d)", startMS, endMS), err)
	}

	if !needsRetime(ratio) {
		return Segment{Path: dst, Ratio: ratio, Stretched: false}, nil
	}
	defer func() { _ = os.Remove(extracted) }()

	if err := s.ffmpeg.RetimeVideo(ctx, extracted, ratio, dst); err != nil {
		return Segment{}, rerr.Wrap(rerr.ErrToolFailure, stageStretch, opRetime,
			fmt.Sprintf("retime video segment [%d,%d) by ratio %f", startMS, endMS, ratio), err)
	}

	seg := Segment{Path: dst, Ratio: ratio, Stretched: true}
	if ratio < WarnRatioLow || ratio > WarnRatioHigh {
		seg.Warning = fmt.Sprintf("stretch ratio %.3f outside recommended [%.1f, %.1f] range", ratio, WarnRatioLow, WarnRatioHigh)
	}
	return seg, nil
}

// StretchGap extracts a gap segment with no retiming: gaps always keep the
// source video's pace.
func (s *Stretcher) StretchGap(ctx context.Context, videoPath string, startMS, endMS int, dst string) (Segment, error) {
	if err := s.ffmpeg.ExtractSegment(ctx, videoPath, startMS, endMS, dst); err != nil {
		return Segment{}, rerr.Wrap(rerr.ErrToolFailure, stageStretch, opExtract,
			fmt.Sprintf("extract gap segment [%d,%d)", startMS, endMS), err)
	}
	return Segment{Path: dst, Ratio: 1.0, Stretched: false}, nil
}

// StretchBlank extracts a blank cue's segment with no retiming: blank cues
// keep the original video's pace and length.
func (s *Stretcher) StretchBlank(ctx context.Context, videoPath string, startMS, endMS int, dst string) (Segment, error) {
	if err := s.ffmpeg.ExtractSegment(ctx, videoPath, startMS, endMS, dst); err != nil {
		return Segment{}, rerr.Wrap(rerr.ErrToolFailure, stageStretch, opExtract,
			fmt.Sprintf("extract blank cue segment [%d,%d)", startMS, endMS), err)
	}
	return Segment{Path: dst, Ratio: 1.0, Stretched: false}, nil
}

func needsRetime(ratio float64) bool {
	return absF(ratio-1.0) > SkipRatioTolerance
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
