package mux

import (
	"context"

	"redub/internal/media/ffmpeg"
	"redub/internal/media/ffprobe"
	"redub/internal/rerr"
)

const stageMux = "muxer"
const opMux = "mux"

// inspect is swappable in tests so DetectNegativeTS can be exercised
// without shelling out to a real ffprobe binary.
var inspect = ffprobe.Inspect

// Options configures a mux run. SubtitlePath and SubtitleLanguage are
// optional; an empty SubtitlePath omits the subtitle track entirely.
type Options struct {
	VideoPath        string
	AudioPath        string
	SubtitlePath     string
	SubtitleLanguage string
	DstPath          string
}

// DefaultSubtitleLanguage is used when Options.SubtitleLanguage is empty
// but a subtitle track is present.
const DefaultSubtitleLanguage = "eng"

// Mux combines a video track, an audio track, and an optional subtitle
// track into the final output container. Whether robust-timestamp
// correction is applied is decided automatically: if probing videoPath
// reports a negative start time, the mux carries +genpts/+igndts and
// avoid_negative_ts handling; otherwise it does not.
func Mux(ctx context.Context, client ffmpeg.Client, probeBinary string, opts Options) error {
	if opts.VideoPath == "" || opts.AudioPath == "" || opts.DstPath == "" {
		return rerr.Wrap(rerr.ErrInputInvalid, stageMux, opMux,
			"video, audio, and destination paths are required", nil)
	}

	robust := DetectNegativeTS(ctx, probeBinary, opts.VideoPath)

	lang := opts.SubtitleLanguage
	if opts.SubtitlePath != "" && lang == "" {
		lang = DefaultSubtitleLanguage
	}

	muxOpts := ffmpeg.MuxOptions{
		VideoPath:        opts.VideoPath,
		AudioPath:        opts.AudioPath,
		SubtitlePath:     opts.SubtitlePath,
		SubtitleLanguage: lang,
		RobustTimestamps: robust,
		DstPath:          opts.DstPath,
	}
	if err := client.Mux(ctx, muxOpts); err != nil {
		return rerr.Wrap(rerr.ErrToolFailure, stageMux, opMux, "mux video and audio tracks", err)
	}
	return nil
}

// DetectNegativeTS probes videoPath and reports whether its container
// start time is negative, the signal that downstream timestamps need
// correction. A probe failure is treated as "no correction needed" rather
// than propagated, mirroring the original's best-effort detection: a
// source that can't be probed is assumed to carry ordinary timestamps.
func DetectNegativeTS(ctx context.Context, probeBinary, videoPath string) bool {
	result, err := inspect(ctx, probeBinary, videoPath)
	if err != nil {
		return false
	}
	return result.StartTimeSeconds() < 0.0
}
