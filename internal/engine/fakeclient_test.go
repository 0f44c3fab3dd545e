package engine

import (
	"context"
	"errors"
	"os"
	"strings"

	"redub/internal/cluster"
	"redub/internal/media/ffmpeg"
)

var errRatio = errors.New("ratio must be positive")

// fakeFFmpegClient implements ffmpeg.Client over in-process WAV arithmetic
// for audio operations and placeholder files for video operations, so the
// engine stages can be exercised without a real ffmpeg binary.
type fakeFFmpegClient struct {
	sampleRate int
}

func newFakeFFmpegClient(sampleRate int) *fakeFFmpegClient {
	return &fakeFFmpegClient{sampleRate: sampleRate}
}

func (f *fakeFFmpegClient) writeSilence(dst string, durationMS int) error {
	n := durationMS * f.sampleRate / 1000
	if n < 0 {
		n = 0
	}
	return cluster.WriteWavFile(dst, cluster.PCM{SampleRate: f.sampleRate, Samples: make([]int16, n)})
}

func (f *fakeFFmpegClient) ExtractSegment(ctx context.Context, src string, startMS, endMS int, dst string) error {
	return os.WriteFile(dst, []byte("video-segment"), 0o644)
}

func (f *fakeFFmpegClient) RetimeVideo(ctx context.Context, src string, ratio float64, dst string) error {
	if ratio <= 0 {
		return errRatio
	}
	return os.WriteFile(dst, []byte("video-retimed"), 0o644)
}

func (f *fakeFFmpegClient) Mux(ctx context.Context, opts ffmpeg.MuxOptions) error {
	return os.WriteFile(opts.DstPath, []byte("muxed"), 0o644)
}

func (f *fakeFFmpegClient) GenerateSilence(ctx context.Context, durationMS, sampleRateHz int, dst string) error {
	return f.writeSilence(dst, durationMS)
}

func (f *fakeFFmpegClient) ApplyTempo(ctx context.Context, src string, ratio float64, dst string) error {
	pcm, err := cluster.ReadWavFile(src)
	if err != nil {
		return err
	}
	n := int(float64(len(pcm.Samples)) / ratio)
	if n < 0 {
		n = 0
	}
	if n > len(pcm.Samples) {
		n = len(pcm.Samples)
	}
	return cluster.WriteWavFile(dst, cluster.PCM{SampleRate: pcm.SampleRate, Samples: pcm.Samples[:n]})
}

func (f *fakeFFmpegClient) Concat(ctx context.Context, parts []string, dst string) error {
	if strings.HasSuffix(dst, ".wav") {
		var combined []int16
		rate := f.sampleRate
		for _, p := range parts {
			pcm, err := cluster.ReadWavFile(p)
			if err != nil {
				return err
			}
			rate = pcm.SampleRate
			combined = append(combined, pcm.Samples...)
		}
		return cluster.WriteWavFile(dst, cluster.PCM{SampleRate: rate, Samples: combined})
	}
	return os.WriteFile(dst, []byte("video-concat"), 0o644)
}

func (f *fakeFFmpegClient) ToMonoPCM(ctx context.Context, src string, sampleRateHz int, dst string) error {
	pcm, err := cluster.ReadWavFile(src)
	if err != nil {
		return err
	}
	return cluster.WriteWavFile(dst, pcm)
}

func (f *fakeFFmpegClient) PadTrailingSilence(ctx context.Context, src string, totalMS int, dst string) error {
	pcm, err := cluster.ReadWavFile(src)
	if err != nil {
		return err
	}
	targetSamples := totalMS * pcm.SampleRate / 1000
	if targetSamples <= len(pcm.Samples) {
		return cluster.WriteWavFile(dst, pcm)
	}
	padded := make([]int16, targetSamples)
	copy(padded, pcm.Samples)
	return cluster.WriteWavFile(dst, cluster.PCM{SampleRate: pcm.SampleRate, Samples: padded})
}

func (f *fakeFFmpegClient) TrimLeadingSilence(ctx context.Context, src string, dst string) error {
	pcm, err := cluster.ReadWavFile(src)
	if err != nil {
		return err
	}
	return cluster.WriteWavFile(dst, pcm)
}
