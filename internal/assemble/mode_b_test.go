package assemble

import (
	"context"
	"testing"

	"redub/internal/cue"
)

func TestAssembleModeBRejectsEmptySegments(t *testing.T) {
	client := &fakeClient{}
	if err := AssembleModeB(context.Background(), client, nil, "v.mp4", "a.wav"); err == nil {
		t.Fatal("expected error for empty segment list")
	}
}

func TestAssembleModeBRejectsMissingPaths(t *testing.T) {
	client := &fakeClient{}
	segs := []ModeBSegment{{CueIdx: 0, Role: RoleSpeech, VideoPath: "", AudioPath: "a.wav"}}
	if err := AssembleModeB(context.Background(), client, segs, "v.mp4", "a.wav"); err == nil {
		t.Fatal("expected error for segment missing a path")
	}
}

func TestAssembleModeBConcatenatesVideoAndAudioInOrder(t *testing.T) {
	client := &fakeClient{}
	segs := []ModeBSegment{
		{CueIdx: 0, Role: RoleSpeech, VideoPath: "v0.mp4", AudioPath: "a0.wav", TTSMs: 1000},
		{CueIdx: -1, Role: RoleGap, VideoPath: "gap.mp4", AudioPath: "gap.wav", TTSMs: 500},
		{CueIdx: 1, Role: RoleSpeech, VideoPath: "v1.mp4", AudioPath: "a1.wav", TTSMs: 800},
	}
	if err := AssembleModeB(context.Background(), client, segs, "out.mp4", "out.wav"); err != nil {
		t.Fatalf("AssembleModeB: %v", err)
	}
	if client.concatCalls != 2 {
		t.Fatalf("concat calls = %d, want 2 (video track + audio track)", client.concatCalls)
	}
}

func TestBuildModeBTimelineAccumulatesOffsets(t *testing.T) {
	cues := cue.CueList{
		{StartMS: 0, EndMS: 1000, Text: "hello"},
		{StartMS: 2000, EndMS: 3000, Text: "world"},
	}
	gaps := []cue.Gap{{PrevIdx: 0, NextIdx: 1, StartMS: 1000, EndMS: 2000, DurationMS: 1000}}
	durations := []int{1200, 900}

	out, err := BuildModeBTimeline(cues, durations, gaps, true)
	if err != nil {
		t.Fatalf("BuildModeBTimeline: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].StartMS != 0 || out[0].EndMS != 1200 {
		t.Errorf("cue 0 = [%d,%d], want [0,1200]", out[0].StartMS, out[0].EndMS)
	}
	// cumulative after cue 0 = 1200, plus gap 1000 = 2200
	if out[1].StartMS != 2200 || out[1].EndMS != 3100 {
		t.Errorf("cue 1 = [%d,%d], want [2200,3100]", out[1].StartMS, out[1].EndMS)
	}
}

func TestBuildModeBTimelineStripsSpeakerTagsWhenNotKept(t *testing.T) {
	cues := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "[Alice] hello there"}}
	out, err := BuildModeBTimeline(cues, []int{900}, nil, false)
	if err != nil {
		t.Fatalf("BuildModeBTimeline: %v", err)
	}
	if out[0].Text != "hello there" {
		t.Errorf("text = %q, want speaker tag stripped", out[0].Text)
	}
}

func TestBuildModeBTimelineKeepsSpeakerTagsWhenRequested(t *testing.T) {
	cues := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "[Alice] hello there"}}
	out, err := BuildModeBTimeline(cues, []int{900}, nil, true)
	if err != nil {
		t.Fatalf("BuildModeBTimeline: %v", err)
	}
	if out[0].Text != "[Alice] hello there" {
		t.Errorf("text = %q, want speaker tag preserved", out[0].Text)
	}
}

func TestBuildModeBTimelineRejectsMismatchedDurationCount(t *testing.T) {
	cues := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "a"}}
	if _, err := BuildModeBTimeline(cues, nil, nil, true); err == nil {
		t.Fatal("expected error for mismatched duration count")
	}
}

func TestBuildModeBTimelineRejectsEmptyCues(t *testing.T) {
	if _, err := BuildModeBTimeline(nil, nil, nil, true); err == nil {
		t.Fatal("expected error for empty cue list")
	}
}
