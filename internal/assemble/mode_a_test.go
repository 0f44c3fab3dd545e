package assemble

import (
	"context"
	"testing"

	"redub/internal/cue"
	"redub/internal/media/ffmpeg"
)

type fakeClient struct {
	ffmpeg.Client
	silenceCalls int
	silenceDurs  []int
	concatCalls  int
	concatParts  []string
	concatDst    string
	failGenerate bool
	failConcat   bool
}

func (f *fakeClient) GenerateSilence(ctx context.Context, durationMS, sampleRateHz int, dst string) error {
	f.silenceCalls++
	f.silenceDurs = append(f.silenceDurs, durationMS)
	if f.failGenerate {
		return errFake
	}
	return nil
}

func (f *fakeClient) Concat(ctx context.Context, parts []string, dst string) error {
	f.concatCalls++
	f.concatParts = append([]string{}, parts...)
	f.concatDst = dst
	if f.failConcat {
		return errFake
	}
	return nil
}

var errFake = &fakeError{}

type fakeError struct{}

func (e *fakeError) Error() string { return "fake failure" }

func TestAssembleModeARejectsEmptyCues(t *testing.T) {
	client := &fakeClient{}
	err := AssembleModeA(context.Background(), client, t.TempDir(), ModeAInput{}, "out.wav")
	if err == nil {
		t.Fatal("expected error for empty cue list")
	}
}

func TestAssembleModeARejectsMismatchedAudioCount(t *testing.T) {
	client := &fakeClient{}
	in := ModeAInput{
		Cues:             cue.CueList{{StartMS: 0, EndMS: 1000, Text: "a"}},
		FittedAudioPaths: nil,
		VideoDurationMS:  2000,
		SampleRateHz:     16000,
	}
	err := AssembleModeA(context.Background(), client, t.TempDir(), in, "out.wav")
	if err == nil {
		t.Fatal("expected error for mismatched audio path count")
	}
}

func TestAssembleModeAInsertsLeadingInterCueAndTrailingSilence(t *testing.T) {
	client := &fakeClient{}
	in := ModeAInput{
		Cues: cue.CueList{
			{StartMS: 500, EndMS: 1500, Text: "a"},
			{StartMS: 2500, EndMS: 3000, Text: "b"},
		},
		FittedAudioPaths: []string{"cue0.wav", "cue1.wav"},
		VideoDurationMS:  4000,
		SampleRateHz:     16000,
	}
	if err := AssembleModeA(context.Background(), client, t.TempDir(), in, "out.wav"); err != nil {
		t.Fatalf("AssembleModeA: %v", err)
	}

	// leading 500ms, gap 1000ms (2500-1500), trailing 1000ms (4000-3000) = 3 silences
	if client.silenceCalls != 3 {
		t.Fatalf("silence calls = %d, want 3", client.silenceCalls)
	}
	wantDurs := []int{500, 1000, 1000}
	for i, want := range wantDurs {
		if client.silenceDurs[i] != want {
			t.Errorf("silence[%d] = %d, want %d", i, client.silenceDurs[i], want)
		}
	}
	if len(client.concatParts) != 5 {
		t.Fatalf("concat part count = %d, want 5 (leading, cue0, gap, cue1, trailing)", len(client.concatParts))
	}
	if client.concatDst != "out.wav" {
		t.Errorf("concat dst = %q, want out.wav", client.concatDst)
	}
}

func TestAssembleModeASkipsZeroDurationSilence(t *testing.T) {
	client := &fakeClient{}
	in := ModeAInput{
		Cues: cue.CueList{
			{StartMS: 0, EndMS: 1000, Text: "a"},
			{StartMS: 1000, EndMS: 2000, Text: "b"},
		},
		FittedAudioPaths: []string{"cue0.wav", "cue1.wav"},
		VideoDurationMS:  2000,
		SampleRateHz:     16000,
	}
	if err := AssembleModeA(context.Background(), client, t.TempDir(), in, "out.wav"); err != nil {
		t.Fatalf("AssembleModeA: %v", err)
	}
	if client.silenceCalls != 0 {
		t.Errorf("silence calls = %d, want 0 (no leading/gap/trailing silence needed)", client.silenceCalls)
	}
	if len(client.concatParts) != 2 {
		t.Fatalf("concat part count = %d, want 2", len(client.concatParts))
	}
}

func TestAssembleModeAPropagatesConcatFailure(t *testing.T) {
	client := &fakeClient{failConcat: true}
	in := ModeAInput{
		Cues:             cue.CueList{{StartMS: 0, EndMS: 1000, Text: "a"}},
		FittedAudioPaths: []string{"cue0.wav"},
		VideoDurationMS:  1000,
		SampleRateHz:     16000,
	}
	if err := AssembleModeA(context.Background(), client, t.TempDir(), in, "out.wav"); err == nil {
		t.Fatal("expected error when Concat fails")
	}
}
