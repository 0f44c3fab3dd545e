package qa

import (
	"encoding/json"
	"os"

	"redub/internal/cue"
	"redub/internal/speaker"
)

// DefaultTimelineToleranceMS is the allowed drift between a cue list's
// first/last boundary and the video's actual start/end before the
// timeline is considered incomplete.
const DefaultTimelineToleranceMS = 1000

// PreflightReport collects every pre-synthesis check's result.
type PreflightReport struct {
	SpeakerCoverage     float64
	MissingSpeakers     []int
	TimelineComplete    bool
	FirstStartMS        int
	LastEndMS           int
	MaxCharsExceeded    []int
	MaxDurationExceeded []int
	VoiceMapValid       bool
	VoiceMapHasDefault  bool
	AllPassed           bool
}

// CheckSpeakerCoverage reports the fraction of cues carrying an explicit
// leading speaker tag, and which cue indices lack one.
func CheckSpeakerCoverage(cues cue.CueList) (coverage float64, missing []int) {
	if len(cues) == 0 {
		return 1.0, nil
	}
	for i, c := range cues {
		name, _ := speaker.ExtractSpeaker(c.Text)
		if name == "" {
			missing = append(missing, i)
		}
	}
	coverage = float64(len(cues)-len(missing)) / float64(len(cues))
	return coverage, missing
}

// CheckTimelineCompleteness reports whether the cue list's first start and
// last end land within toleranceMS of the video's bounds. When
// videoDurationMS is nil, it instead only checks that the list is
// non-empty and ends after it starts.
func CheckTimelineCompleteness(cues cue.CueList, videoDurationMS *int, toleranceMS int) (complete bool, firstStartMS, lastEndMS int) {
	if len(cues) == 0 {
		return false, 0, 0
	}
	firstStartMS = cues[0].StartMS
	lastEndMS = cues[len(cues)-1].EndMS

	if videoDurationMS == nil {
		return lastEndMS > firstStartMS, firstStartMS, lastEndMS
	}

	startOK := firstStartMS <= toleranceMS
	endDiff := lastEndMS - *videoDurationMS
	if endDiff < 0 {
		endDiff = -endDiff
	}
	endOK := endDiff <= toleranceMS
	return startOK && endOK, firstStartMS, lastEndMS
}

// CheckBlockLimits reports which cues exceed the given per-cue character
// and duration ceilings.
func CheckBlockLimits(cues cue.CueList, maxChars, maxDurationMS int) (charsExceeded, durationExceeded []int) {
	for i, c := range cues {
		if c.Chars() > maxChars {
			charsExceeded = append(charsExceeded, i)
		}
		if c.Duration() > maxDurationMS {
			durationExceeded = append(durationExceeded, i)
		}
	}
	return charsExceeded, durationExceeded
}

// voiceMapFile is the on-disk shape of a voice map document: a flat
// mapping from speaker name to backend voice identifier.
type voiceMapFile map[string]string

// CheckVoiceMapFile reports whether path decodes as a JSON voice map
// object and whether it carries a DEFAULT entry. A missing or malformed
// file reports (false, false) rather than an error, matching a pre-flight
// check's job of accumulating findings rather than aborting early.
func CheckVoiceMapFile(path string) (valid bool, hasDefault bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, false
	}
	var vm voiceMapFile
	if err := json.Unmarshal(data, &vm); err != nil {
		return false, false
	}
	_, hasDefault = vm[speaker.DefaultSpeaker]
	return true, hasDefault
}

// RunPreflight executes every pre-flight check and aggregates them into a
// single report. voiceMapPath may be empty, in which case the voice map
// checks are skipped and do not affect AllPassed.
func RunPreflight(cues cue.CueList, voiceMapPath string, videoDurationMS *int, maxChars, maxDurationMS, timelineToleranceMS int) PreflightReport {
	coverage, missing := CheckSpeakerCoverage(cues)
	complete, firstStart, lastEnd := CheckTimelineCompleteness(cues, videoDurationMS, timelineToleranceMS)
	charsExceeded, durationExceeded := CheckBlockLimits(cues, maxChars, maxDurationMS)

	var voiceMapValid, voiceMapHasDefault bool
	if voiceMapPath != "" {
		voiceMapValid, voiceMapHasDefault = CheckVoiceMapFile(voiceMapPath)
	}

	allPassed := coverage == 1.0 &&
		complete &&
		len(charsExceeded) == 0 &&
		len(durationExceeded) == 0 &&
		(voiceMapPath == "" || (voiceMapValid && voiceMapHasDefault))

	return PreflightReport{
		SpeakerCoverage:     coverage,
		MissingSpeakers:     missing,
		TimelineComplete:    complete,
		FirstStartMS:        firstStart,
		LastEndMS:           lastEnd,
		MaxCharsExceeded:    charsExceeded,
		MaxDurationExceeded: durationExceeded,
		VoiceMapValid:       voiceMapValid,
		VoiceMapHasDefault:  voiceMapHasDefault,
		AllPassed:           allPassed,
	}
}
