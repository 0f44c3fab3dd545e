package qa

import (
	"os"
	"path/filepath"
	"testing"

	"redub/internal/cue"
)

func TestCheckSpeakerCoverageAllTagged(t *testing.T) {
	cues := cue.CueList{
		{StartMS: 0, EndMS: 1000, Text: "[Speaker:Alice] hello"},
		{StartMS: 1000, EndMS: 2000, Text: "[Speaker:Bob] world"},
	}
	coverage, missing := CheckSpeakerCoverage(cues)
	if coverage != 1.0 {
		t.Errorf("coverage = %f, want 1.0", coverage)
	}
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
}

func TestCheckSpeakerCoverageReportsMissing(t *testing.T) {
	cues := cue.CueList{
		{StartMS: 0, EndMS: 1000, Text: "[Speaker:Alice] hello"},
		{StartMS: 1000, EndMS: 2000, Text: "untagged"},
	}
	coverage, missing := CheckSpeakerCoverage(cues)
	if coverage != 0.5 {
		t.Errorf("coverage = %f, want 0.5", coverage)
	}
	if len(missing) != 1 || missing[0] != 1 {
		t.Errorf("missing = %v, want [1]", missing)
	}
}

func TestCheckSpeakerCoverageEmptyIsFullCoverage(t *testing.T) {
	coverage, missing := CheckSpeakerCoverage(nil)
	if coverage != 1.0 || missing != nil {
		t.Errorf("empty cue list should report full coverage with no missing")
	}
}

func TestCheckTimelineCompletenessWithVideoDuration(t *testing.T) {
	cues := cue.CueList{
		{StartMS: 100, EndMS: 1000, Text: "a"},
		{StartMS: 2000, EndMS: 9800, Text: "b"},
	}
	dur := 10000
	complete, first, last := CheckTimelineCompleteness(cues, &dur, 1000)
	if !complete {
		t.Error("expected complete within tolerance")
	}
	if first != 100 || last != 9800 {
		t.Errorf("first=%d last=%d", first, last)
	}
}

func TestCheckTimelineCompletenessFailsOutsideTolerance(t *testing.T) {
	cues := cue.CueList{{StartMS: 5000, EndMS: 6000, Text: "a"}}
	dur := 20000
	complete, _, _ := CheckTimelineCompleteness(cues, &dur, 1000)
	if complete {
		t.Error("expected incomplete: first start far beyond tolerance")
	}
}

func TestCheckTimelineCompletenessWithoutVideoDuration(t *testing.T) {
	cues := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "a"}}
	complete, _, _ := CheckTimelineCompleteness(cues, nil, 1000)
	if !complete {
		t.Error("expected complete when end follows start and no video duration given")
	}
}

func TestCheckTimelineCompletenessEmptyCues(t *testing.T) {
	complete, first, last := CheckTimelineCompleteness(nil, nil, 1000)
	if complete || first != 0 || last != 0 {
		t.Error("expected incomplete zero-value result for empty cue list")
	}
}

func TestCheckBlockLimitsFlagsExceedingCues(t *testing.T) {
	cues := cue.CueList{
		{StartMS: 0, EndMS: 1000, Text: "short"},
		{StartMS: 1000, EndMS: 20000, Text: "this one is way too long for the limit"},
	}
	charsExceeded, durationExceeded := CheckBlockLimits(cues, 10, 15000)
	if len(charsExceeded) != 1 || charsExceeded[0] != 1 {
		t.Errorf("charsExceeded = %v, want [1]", charsExceeded)
	}
	if len(durationExceeded) != 1 || durationExceeded[0] != 1 {
		t.Errorf("durationExceeded = %v, want [1]", durationExceeded)
	}
}

func TestCheckVoiceMapFileValidWithDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voice_map.json")
	if err := os.WriteFile(path, []byte(`{"DEFAULT":"voice-1","Alice":"voice-2"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	valid, hasDefault := CheckVoiceMapFile(path)
	if !valid || !hasDefault {
		t.Errorf("valid=%v hasDefault=%v, want both true", valid, hasDefault)
	}
}

func TestCheckVoiceMapFileMissingDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voice_map.json")
	if err := os.WriteFile(path, []byte(`{"Alice":"voice-2"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	valid, hasDefault := CheckVoiceMapFile(path)
	if !valid || hasDefault {
		t.Errorf("valid=%v hasDefault=%v, want valid=true hasDefault=false", valid, hasDefault)
	}
}

func TestCheckVoiceMapFileMissingFile(t *testing.T) {
	valid, hasDefault := CheckVoiceMapFile(filepath.Join(t.TempDir(), "nope.json"))
	if valid || hasDefault {
		t.Error("expected both false for a missing file")
	}
}

func TestCheckVoiceMapFileMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voice_map.json")
	if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	valid, hasDefault := CheckVoiceMapFile(path)
	if valid || hasDefault {
		t.Error("expected both false for malformed JSON")
	}
}

func TestRunPreflightAllPassed(t *testing.T) {
	cues := cue.CueList{
		{StartMS: 0, EndMS: 1000, Text: "[Speaker:Alice] hello"},
		{StartMS: 1000, EndMS: 2000, Text: "[Speaker:Bob] world"},
	}
	report := RunPreflight(cues, "", nil, 250, 15000, 1000)
	if !report.AllPassed {
		t.Errorf("expected all checks to pass, got %+v", report)
	}
}

func TestRunPreflightFailsWhenSpeakerMissing(t *testing.T) {
	cues := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "untagged"}}
	report := RunPreflight(cues, "", nil, 250, 15000, 1000)
	if report.AllPassed {
		t.Error("expected AllPassed=false when speaker coverage is incomplete")
	}
}

func TestRunPreflightSkipsVoiceMapWhenPathEmpty(t *testing.T) {
	cues := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "[Speaker:Alice] hello"}}
	report := RunPreflight(cues, "", nil, 250, 15000, 1000)
	if !report.AllPassed {
		t.Error("expected AllPassed=true when voice map path is not provided")
	}
}
