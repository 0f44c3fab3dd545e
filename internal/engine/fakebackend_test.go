package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"redub/internal/cluster"
)

// fakeTTSBackend synthesizes deterministic silence whose length encodes the
// requested text's rune count, so tests can assert on TTS output duration
// without a real backend.
type fakeTTSBackend struct {
	dir       string
	msPerChar int
	calls     int
}

func newFakeTTSBackend(dir string, msPerChar int) *fakeTTSBackend {
	return &fakeTTSBackend{dir: dir, msPerChar: msPerChar}
}

func (f *fakeTTSBackend) Synthesize(ctx context.Context, text, voiceID string, sampleRateHz uint32) (string, error) {
	f.calls++
	durationMS := len([]rune(text)) * f.msPerChar
	n := durationMS * int(sampleRateHz) / 1000
	path := filepath.Join(f.dir, fmt.Sprintf("backend_raw_%d.wav", f.calls))
	if err := cluster.WriteWavFile(path, cluster.PCM{SampleRate: int(sampleRateHz), Samples: make([]int16, n)}); err != nil {
		return "", err
	}
	return path, nil
}
