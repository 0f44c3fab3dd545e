package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"redub/internal/cluster"
	"redub/internal/config"
	"redub/internal/cue"
	"redub/internal/modeselect"
	"redub/internal/project"
	"redub/internal/speaker"
	"redub/internal/tts"
	"redub/internal/ttscache"
)

func newTestVoiceMap(t *testing.T) *speaker.VoiceMap {
	t.Helper()
	vm, err := speaker.NewVoiceMap(map[string]string{speaker.DefaultSpeaker: "voice-default"})
	if err != nil {
		t.Fatalf("NewVoiceMap: %v", err)
	}
	return vm
}

func TestSynthesisHandler_Execute(t *testing.T) {
	outputDir := t.TempDir()
	cache, err := ttscache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("ttscache.Open: %v", err)
	}
	backend := newFakeTTSBackend(t.TempDir(), 100)
	ffmpegClient := newFakeFFmpegClient(1000)

	s := &State{
		Project: &project.Project{OutputDir: outputDir, TTSCacheDir: t.TempDir()},
		Config: &config.Config{
			SampleRateHz:  1000,
			Concurrency:   2,
			RetryAttempts: 1,
		},
		VoiceMap:    newTestVoiceMap(t),
		Mode:        modeselect.ModeB,
		CleanedCues: cue.CueList{{StartMS: 0, EndMS: 1000, Text: "Hello"}, {StartMS: 1000, EndMS: 2000, Text: "Hi there"}},
		Speakers:    []string{speaker.DefaultSpeaker, speaker.DefaultSpeaker},
		FFmpeg:      ffmpegClient,
		Backend:     backend,
		Cache:       cache,
	}

	h := NewSynthesisHandler(s)
	if err := h.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(s.TTSResults) != 2 {
		t.Fatalf("got %d results, want 2", len(s.TTSResults))
	}
	for i, res := range s.TTSResults {
		if res.Err != nil {
			t.Fatalf("result %d: unexpected error %v", i, res.Err)
		}
		if res.Index != i {
			t.Fatalf("result %d: index = %d, want %d", i, res.Index, i)
		}
		if res.Cached {
			t.Fatalf("result %d: expected a fresh synthesis, not a cache hit", i)
		}
		if _, err := os.Stat(res.Path); err != nil {
			t.Fatalf("result %d: synthesized path %q does not exist: %v", i, res.Path, err)
		}
	}
	if backend.calls != 2 {
		t.Fatalf("backend.calls = %d, want 2", backend.calls)
	}

	// Re-running against the same cache should hit it rather than
	// re-invoking the backend.
	s2 := &State{
		Project:     s.Project,
		Config:      s.Config,
		VoiceMap:    s.VoiceMap,
		Mode:        modeselect.ModeB,
		CleanedCues: s.CleanedCues,
		Speakers:    s.Speakers,
		FFmpeg:      ffmpegClient,
		Backend:     backend,
		Cache:       cache,
	}
	if err := NewSynthesisHandler(s2).Execute(context.Background(), nil); err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("backend.calls after cached rerun = %d, want still 2", backend.calls)
	}
	for i, res := range s2.TTSResults {
		if !res.Cached {
			t.Fatalf("result %d: expected a cache hit on rerun", i)
		}
	}
}

// TestFitHandler_Execute regression-tests the Mode A cluster split: the
// cluster's raw TTS audio must be fit once to the cluster's total
// rebalanced duration before being split, and the split proportions must
// come from the rebalanced per-cue durations, not the pre-rebalance ones.
func TestFitHandler_Execute(t *testing.T) {
	outputDir := t.TempDir()
	ffmpegClient := newFakeFFmpegClient(1000)

	rawPath := filepath.Join(outputDir, "cluster_raw.wav")
	if err := cluster.WriteWavFile(rawPath, cluster.PCM{SampleRate: 1000, Samples: make([]int16, 400)}); err != nil {
		t.Fatalf("write raw cluster audio: %v", err)
	}

	s := &State{
		Project: &project.Project{OutputDir: outputDir},
		Config:  &config.Config{SampleRateHz: 1000},
		Mode:    modeselect.ModeA,
		// Deliberately lopsided relative to the rebalanced durations below,
		// so a split still keyed off CleanedCues would produce very
		// different cut points.
		CleanedCues: cue.CueList{{StartMS: 0, EndMS: 200, Text: "AAAAA"}, {StartMS: 200, EndMS: 400, Text: "BBB"}},
		RebalancedCues: cue.CueList{
			{StartMS: 0, EndMS: 500, Text: "AAAAA"},
			{StartMS: 500, EndMS: 800, Text: "BBB"},
		},
		Clusters: []cluster.Cluster{{StartIdx: 0, EndIdx: 1, StartMS: 0, EndMS: 800, Text: "AAAAA BBB", Speaker: speaker.DefaultSpeaker}},
		TTSResults: []tts.Result{
			{Index: 0, Path: rawPath},
		},
		FFmpeg: ffmpegClient,
	}

	h := NewFitHandler(s)
	if err := h.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(s.FittedAudioPaths) != 2 {
		t.Fatalf("got %d fitted paths, want 2", len(s.FittedAudioPaths))
	}

	want := []int{500, 300}
	for i, path := range s.FittedAudioPaths {
		pcm, err := cluster.ReadWavFile(path)
		if err != nil {
			t.Fatalf("cue %d: read fitted audio %q: %v", i, path, err)
		}
		if got := pcm.DurationMS(); got != want[i] {
			t.Fatalf("cue %d: fitted duration = %dms, want %dms (rebalanced split, not cleaned)", i, got, want[i])
		}
	}
}

func TestFitHandler_Execute_BlankCluster(t *testing.T) {
	outputDir := t.TempDir()
	ffmpegClient := newFakeFFmpegClient(1000)

	s := &State{
		Project:        &project.Project{OutputDir: outputDir},
		Config:         &config.Config{SampleRateHz: 1000},
		Mode:           modeselect.ModeA,
		CleanedCues:    cue.CueList{{StartMS: 0, EndMS: 200, Text: ""}},
		RebalancedCues: cue.CueList{{StartMS: 0, EndMS: 250, Text: ""}},
		Clusters:       []cluster.Cluster{{StartIdx: 0, EndIdx: 0, StartMS: 0, EndMS: 250, Text: "", Speaker: speaker.DefaultSpeaker}},
		TTSResults:     []tts.Result{{Index: 0, Blank: true}},
		FFmpeg:         ffmpegClient,
	}

	if err := NewFitHandler(s).Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	pcm, err := cluster.ReadWavFile(s.FittedAudioPaths[0])
	if err != nil {
		t.Fatalf("read fitted silence: %v", err)
	}
	if got := pcm.DurationMS(); got != 250 {
		t.Fatalf("blank cue fitted duration = %dms, want 250ms", got)
	}
}

func TestAssembleHandler_Execute(t *testing.T) {
	outputDir := t.TempDir()
	ffmpegClient := newFakeFFmpegClient(1000)

	cueA := filepath.Join(outputDir, "cue_0000_fit.wav")
	cueB := filepath.Join(outputDir, "cue_0001_fit.wav")
	if err := ffmpegClient.writeSilence(cueA, 500); err != nil {
		t.Fatalf("write cue A audio: %v", err)
	}
	if err := ffmpegClient.writeSilence(cueB, 300); err != nil {
		t.Fatalf("write cue B audio: %v", err)
	}

	rebalanced := cue.CueList{
		{StartMS: 0, EndMS: 500, Text: "AAAAA"},
		{StartMS: 500, EndMS: 800, Text: "BBB"},
	}

	s := &State{
		Project: &project.Project{
			Dir:       outputDir,
			Name:      "demo",
			OutputDir: outputDir,
			VideoPath: "nonexistent-source.mkv",
		},
		Config:           &config.Config{SampleRateHz: 1000},
		ProbeBinary:      "nonexistent-ffprobe-binary",
		Mode:             modeselect.ModeA,
		SourceCues:       rebalanced,
		RebalancedCues:   rebalanced,
		VideoDurationMS:  800,
		FittedAudioPaths: []string{cueA, cueB},
		FFmpeg:           ffmpegClient,
	}

	h := NewAssembleHandler(s)
	if err := h.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wantFinal := filepath.Join(outputDir, "demo.mkv")
	if s.FinalVideoPath != wantFinal {
		t.Fatalf("FinalVideoPath = %q, want %q", s.FinalVideoPath, wantFinal)
	}
	if _, err := os.Stat(s.FinalVideoPath); err != nil {
		t.Fatalf("final video not written: %v", err)
	}

	pcm, err := cluster.ReadWavFile(s.OutputAudioPath)
	if err != nil {
		t.Fatalf("read assembled audio: %v", err)
	}
	if got := pcm.DurationMS(); got != 800 {
		t.Fatalf("assembled audio duration = %dms, want 800ms", got)
	}

	for _, p := range []string{
		filepath.Join(outputDir, "demo.display.srt"),
		filepath.Join(outputDir, "demo.audio.srt"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected subtitle file %q: %v", p, err)
		}
	}
}
