package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Client is the media tool contract the engine's stages depend on:
// segment extraction, video re-timing, and final muxing, plus the handful
// of audio-processing primitives (silence generation, tempo adjustment,
// concatenation, PCM normalization) the Fitter and Assembler build on top
// of the same ffmpeg binary.
type Client interface {
	ExtractSegment(ctx context.Context, src string, startMS, endMS int, dst string) error
	RetimeVideo(ctx context.Context, src string, ratio float64, dst string) error
	Mux(ctx context.Context, opts MuxOptions) error

	GenerateSilence(ctx context.Context, durationMS, sampleRateHz int, dst string) error
	ApplyTempo(ctx context.Context, src string, ratio float64, dst string) error
	Concat(ctx context.Context, parts []string, dst string) error
	ToMonoPCM(ctx context.Context, src string, sampleRateHz int, dst string) error
	PadTrailingSilence(ctx context.Context, src string, totalMS int, dst string) error
	TrimLeadingSilence(ctx context.Context, src string, dst string) error
}

// Option configures a CLI client.
type Option func(*CLI)

// WithBinary overrides the ffmpeg binary name or path.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client defaulting to the "ffmpeg" binary on PATH.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

var _ Client = (*CLI)(nil)

func (c *CLI) run(ctx context.Context, args []string) error {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ExtractSegment extracts the frames covering [startMS, endMS) of src into
// dst, re-encoded to keep the cut frame-accurate.
func (c *CLI) ExtractSegment(ctx context.Context, src string, startMS, endMS int, dst string) error {
	if endMS <= startMS {
		return fmt.Errorf("extract segment: end_ms %d must be after start_ms %d", endMS, startMS)
	}
	durationS := float64(endMS-startMS) / 1000.0
	startS := float64(startMS) / 1000.0
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-ss", formatSeconds(startS),
		"-i", src,
		"-t", formatSeconds(durationS),
		"-c:v", "libx264", "-preset", "veryfast", "-crf", "18",
		"-an",
		dst,
	}
	return c.run(ctx, args)
}

// RetimeVideo re-times src by multiplying every frame's presentation
// timestamp by ratio and writes the result (video only) to dst.
func (c *CLI) RetimeVideo(ctx context.Context, src string, ratio float64, dst string) error {
	if ratio <= 0 {
		return fmt.Errorf("retime video: ratio must be positive, got %f", ratio)
	}
	filter := fmt.Sprintf("setpts=%s*PTS", formatRatio(ratio))
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-i", src,
		"-vf", filter,
		"-an",
		"-c:v", "libx264", "-preset", "veryfast", "-crf", "18",
		dst,
	}
	return c.run(ctx, args)
}

// MuxOptions configures a final mux operation.
type MuxOptions struct {
	VideoPath        string
	AudioPath        string
	SubtitlePath     string // empty means no embedded subtitle track
	SubtitleLanguage string
	RobustTimestamps bool
	DstPath          string
}

// Mux combines a video track, an audio track, and an optional subtitle
// track into the output container: copied video stream, AAC-encoded
// audio, an optional embedded subtitle stream tagged with a language, and
// a fast-start layout. RobustTimestamps enables negative-PTS correction
// and disables muxer pre-load/delay.
func (c *CLI) Mux(ctx context.Context, opts MuxOptions) error {
	if opts.VideoPath == "" || opts.AudioPath == "" || opts.DstPath == "" {
		return fmt.Errorf("mux: video, audio, and destination paths are required")
	}

	args := []string{"-y", "-hide_banner", "-v", "error"}
	if opts.RobustTimestamps {
		args = append(args, "-fflags", "+genpts+igndts")
	}
	args = append(args, "-i", opts.VideoPath, "-i", opts.AudioPath)
	if opts.SubtitlePath != "" {
		args = append(args, "-i", opts.SubtitlePath)
	}

	args = append(args, "-map", "0:v:0", "-map", "1:a:0")
	if opts.SubtitlePath != "" {
		args = append(args, "-map", "2:s:0")
	}

	args = append(args, "-c:v", "copy", "-c:a", "aac")
	if opts.SubtitlePath != "" {
		args = append(args, "-c:s", "mov_text")
		if opts.SubtitleLanguage != "" {
			args = append(args, "-metadata:s:s:0", "language="+opts.SubtitleLanguage)
		}
	}

	if opts.RobustTimestamps {
		args = append(args, "-avoid_negative_ts", "make_zero", "-muxpreload", "0", "-muxdelay", "0")
	}
	args = append(args, "-movflags", "+faststart", opts.DstPath)

	return c.run(ctx, args)
}

// GenerateSilence writes durationMS of mono silence at sampleRateHz to dst.
func (c *CLI) GenerateSilence(ctx context.Context, durationMS, sampleRateHz int, dst string) error {
	if durationMS < 0 {
		return fmt.Errorf("generate silence: negative duration_ms %d", durationMS)
	}
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=channel_layout=mono:sample_rate=%d", sampleRateHz),
		"-t", formatSeconds(float64(durationMS) / 1000.0),
		dst,
	}
	return c.run(ctx, args)
}

// ApplyTempo time-stretches src by 1/ratio using ffmpeg's atempo filter,
// composing a chain of factors when ratio falls outside atempo's native
// [0.5, 2.0] range.
func (c *CLI) ApplyTempo(ctx context.Context, src string, ratio float64, dst string) error {
	if ratio <= 0 {
		return fmt.Errorf("apply tempo: ratio must be positive, got %f", ratio)
	}
	filter := "atempo=" + strings.Join(tempoChain(ratio), ",atempo=")
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-i", src,
		"-filter:a", filter,
		dst,
	}
	return c.run(ctx, args)
}

// Concat concatenates parts (already sharing a codec/format) into dst
// using ffmpeg's concat demuxer.
func (c *CLI) Concat(ctx context.Context, parts []string, dst string) error {
	if len(parts) == 0 {
		return fmt.Errorf("concat: no parts given")
	}
	listFile, err := writeConcatList(parts)
	if err != nil {
		return fmt.Errorf("concat: %w", err)
	}
	defer removeFile(listFile)

	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-f", "concat", "-safe", "0",
		"-i", listFile,
		"-c", "copy",
		dst,
	}
	return c.run(ctx, args)
}

// ToMonoPCM decodes src to mono PCM at sampleRateHz, the normalization
// step the TTS Orchestrator applies to every backend response before
// returning it.
func (c *CLI) ToMonoPCM(ctx context.Context, src string, sampleRateHz int, dst string) error {
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-i", src,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRateHz),
		"-c:a", "pcm_s16le",
		dst,
	}
	return c.run(ctx, args)
}

// PadTrailingSilence pads src with trailing silence so the result is
// exactly totalMS long; a src already longer than totalMS is cut to
// totalMS. The Fitter is responsible for choosing pad vs stretch vs copy beforehand.
func (c *CLI) PadTrailingSilence(ctx context.Context, src string, totalMS int, dst string) error {
	filter := fmt.Sprintf("apad=whole_dur=%s", formatSeconds(float64(totalMS)/1000.0))
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-i", src,
		"-af", filter,
		"-t", formatSeconds(float64(totalMS) / 1000.0),
		dst,
	}
	return c.run(ctx, args)
}

// TrimLeadingSilence strips silence from the start of src only, leaving
// trailing silence untouched. Used by the Audio Fitter's optional leading-
// silence trim for low-CPM cues with a generous target span.
func (c *CLI) TrimLeadingSilence(ctx context.Context, src string, dst string) error {
	filter := "silenceremove=start_periods=1:start_duration=0.15:start_threshold=-50dB:detection=peak"
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-i", src,
		"-af", filter,
		dst,
	}
	return c.run(ctx, args)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func formatRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', 6, 64)
}

// tempoChain decomposes an arbitrary positive stretch ratio into a
// sequence of factors each within atempo's supported [0.5, 2.0] range.
// ratio here is "source duration / target duration": ratio > 1 means the
// source must speed up (tempo factor > 1); ratio < 1 means it must slow
// down (tempo factor < 1).
func tempoChain(ratio float64) []string {
	const lo, hi = 0.5, 2.0
	var factors []float64
	remaining := ratio
	for remaining > hi {
		factors = append(factors, hi)
		remaining /= hi
	}
	for remaining < lo {
		factors = append(factors, lo)
		remaining /= lo
	}
	factors = append(factors, remaining)

	out := make([]string, len(factors))
	for i, f := range factors {
		out[i] = formatRatio(f)
	}
	return out
}
