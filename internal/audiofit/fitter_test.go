package audiofit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"redub/internal/cluster"
	"redub/internal/media/ffmpeg"
)

type fakeClient struct {
	ffmpeg.Client
	padCalls    int
	tempoCalls  int
	tempoRatio  float64
	trimCalls   int
	trimFails   bool
}

func (f *fakeClient) PadTrailingSilence(ctx context.Context, src string, totalMS int, dst string) error {
	f.padCalls++
	return copyFile(src, dst)
}

func (f *fakeClient) ApplyTempo(ctx context.Context, src string, ratio float64, dst string) error {
	f.tempoCalls++
	f.tempoRatio = ratio
	return copyFile(src, dst)
}

func (f *fakeClient) TrimLeadingSilence(ctx context.Context, src string, dst string) error {
	f.trimCalls++
	if f.trimFails {
		return os.ErrInvalid
	}
	return copyFile(src, dst)
}

func writeTestWav(t *testing.T, dir string, name string, sampleRate, numSamples int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	pcm := cluster.PCM{SampleRate: sampleRate, Samples: make([]int16, numSamples)}
	if err := cluster.WriteWavFile(path, pcm); err != nil {
		t.Fatalf("WriteWavFile: %v", err)
	}
	return path
}

func TestFitCopiesWhenWithinTolerance(t *testing.T) {
	dir := t.TempDir()
	src := writeTestWav(t, dir, "src.wav", 1000, 1000) // 1000ms
	dst := filepath.Join(dir, "dst.wav")

	client := &fakeClient{}
	f := New(client, dir, DefaultParams())

	result, err := f.Fit(context.Background(), src, 1010, 180, dst) // within 20ms tolerance
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if result.Action != ActionCopy {
		t.Errorf("Action = %q, want %q", result.Action, ActionCopy)
	}
	if client.padCalls != 0 || client.tempoCalls != 0 {
		t.Errorf("expected no pad/tempo calls for a within-tolerance fit, got pad=%d tempo=%d", client.padCalls, client.tempoCalls)
	}
}

func TestFitPadsWhenSourceShorterThanTarget(t *testing.T) {
	dir := t.TempDir()
	src := writeTestWav(t, dir, "src.wav", 1000, 500) // 500ms
	dst := filepath.Join(dir, "dst.wav")

	client := &fakeClient{}
	f := New(client, dir, DefaultParams())

	result, err := f.Fit(context.Background(), src, 2000, 180, dst)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if result.Action != ActionPad {
		t.Errorf("Action = %q, want %q", result.Action, ActionPad)
	}
	if client.padCalls != 1 {
		t.Errorf("expected 1 pad call, got %d", client.padCalls)
	}
}

func TestFitStretchesWhenSourceLongerThanTarget(t *testing.T) {
	dir := t.TempDir()
	src := writeTestWav(t, dir, "src.wav", 1000, 3000) // 3000ms
	dst := filepath.Join(dir, "dst.wav")

	client := &fakeClient{}
	f := New(client, dir, DefaultParams())

	result, err := f.Fit(context.Background(), src, 1000, 180, dst)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if result.Action != ActionStretch {
		t.Errorf("Action = %q, want %q", result.Action, ActionStretch)
	}
	if client.tempoCalls != 1 {
		t.Errorf("expected 1 tempo call, got %d", client.tempoCalls)
	}
	if client.tempoRatio != 3.0 {
		t.Errorf("tempo ratio = %f, want 3.0", client.tempoRatio)
	}
}

func TestFitTrimsLeadingSilenceWhenGated(t *testing.T) {
	dir := t.TempDir()
	src := writeTestWav(t, dir, "src.wav", 1000, 1000)
	dst := filepath.Join(dir, "dst.wav")

	client := &fakeClient{}
	f := New(client, dir, DefaultParams())

	// cpm below threshold (260) and target above minimum (1200ms).
	result, err := f.Fit(context.Background(), src, 1500, 150, dst)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if client.trimCalls != 1 {
		t.Errorf("expected leading-silence trim to run, got %d calls", client.trimCalls)
	}
	if !result.Trimmed {
		t.Error("expected Result.Trimmed to be true")
	}
}

func TestFitSkipsLeadingSilenceTrimWhenCPMTooHigh(t *testing.T) {
	dir := t.TempDir()
	src := writeTestWav(t, dir, "src.wav", 1000, 1000)
	dst := filepath.Join(dir, "dst.wav")

	client := &fakeClient{}
	f := New(client, dir, DefaultParams())

	if _, err := f.Fit(context.Background(), src, 1500, 280, dst); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if client.trimCalls != 0 {
		t.Errorf("expected no trim call for high-CPM cue, got %d", client.trimCalls)
	}
}

func TestFitFallsBackToOriginalWhenTrimFails(t *testing.T) {
	dir := t.TempDir()
	src := writeTestWav(t, dir, "src.wav", 1000, 1000)
	dst := filepath.Join(dir, "dst.wav")

	client := &fakeClient{trimFails: true}
	f := New(client, dir, DefaultParams())

	result, err := f.Fit(context.Background(), src, 1500, 150, dst)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if result.Trimmed {
		t.Error("expected Trimmed to be false when trim fails")
	}
}

func TestFitNaturalSpeedCopiesUnchanged(t *testing.T) {
	dir := t.TempDir()
	src := writeTestWav(t, dir, "src.wav", 1000, 1000)
	dst := filepath.Join(dir, "dst.wav")

	f := New(&fakeClient{}, dir, DefaultParams())
	result, err := f.FitNaturalSpeed(src, dst)
	if err != nil {
		t.Fatalf("FitNaturalSpeed: %v", err)
	}
	if result.Action != ActionNaturalSpeed {
		t.Errorf("Action = %q, want %q", result.Action, ActionNaturalSpeed)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("expected dst to exist: %v", err)
	}
}
