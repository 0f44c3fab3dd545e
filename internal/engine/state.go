package engine

import (
	"redub/internal/assemble"
	"redub/internal/cluster"
	"redub/internal/config"
	"redub/internal/cue"
	"redub/internal/media/ffmpeg"
	"redub/internal/modeselect"
	"redub/internal/project"
	"redub/internal/qa"
	"redub/internal/runstore"
	"redub/internal/speaker"
	"redub/internal/tts"
	"redub/internal/ttscache"
	"redub/internal/videostretch"
)

// State is the shared, in-memory working set every stage.Handler reads
// from and writes into as a run progresses. Unlike runstore.Run (the
// persisted Failure State Machine record), State never survives past the
// process: every run rebuilds it from the project directory. The engine
// does not consult runstore.PendingCueIndexes, so each run sends every cue
// through synthesis again (TTS cache hits skip the backend call).
type State struct {
	Project  *project.Project
	Config   *config.Config
	VoiceMap *speaker.VoiceMap
	Glossary map[string]string

	FFmpeg      ffmpeg.Client
	ProbeBinary string
	Backend     tts.Backend
	Cache       *ttscache.Cache
	Store       *runstore.Store

	Mode modeselect.Mode

	SourceCues  cue.CueList // as parsed from the subtitle file
	CleanedCues cue.CueList // speaker tags stripped, cue.StripMeta applied
	Speakers    []string    // one resolved speaker name per CleanedCues entry
	Gaps        []cue.Gap

	Clusters       []cluster.Cluster // Mode A only
	RebalancedCues cue.CueList       // Mode A only, pre-synthesis pacing pass

	VideoDurationMS int

	TTSResults       []tts.Result
	FittedAudioPaths []string              // one per cue, both modes
	VideoSegments    []videostretch.Segment // Mode B: one per cue/gap, in timeline order
	ModeBSegments    []assemble.ModeBSegment
	ModeBTimeline    cue.CueList

	OutputAudioPath  string
	OutputVideoPath  string
	FinalVideoPath   string
	DisplaySubtitle  cue.CueList
	AudioSubtitle    cue.CueList

	LengthParityMS int
	Preflight      *qa.PreflightReport
	SyncAudit      *qa.SyncAuditReport
	Warnings       []string
}

// Warn appends a warning, the accumulation point both the QA stages and
// report.Report's Warnings field read from.
func (s *State) Warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// ModeParams returns the character/duration ceilings appropriate to the
// run's chosen mode.
func (s *State) ModeParams() (maxChars, maxDurationMS int) {
	if s.Mode == modeselect.ModeB {
		return s.Config.MaxCharsModeB, s.Config.MaxDurationMSModeB
	}
	return s.Config.MaxChars, s.Config.MaxDurationMS
}
