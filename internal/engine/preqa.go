package engine

import (
	"context"
	"log/slog"

	"redub/internal/cluster"
	"redub/internal/cue"
	"redub/internal/logging"
	"redub/internal/modeselect"
	"redub/internal/qa"
	"redub/internal/rerr"
	"redub/internal/runstore"
	"redub/internal/speaker"
	"redub/internal/stage"
)

const stagePreQA = "preqa"

// preflightTimelineToleranceMS bounds the allowed drift between a cue
// list's first/last boundary and the probed video duration.
const preflightTimelineToleranceMS = qa.DefaultTimelineToleranceMS

// PreQAHandler loads the subtitle track, resolves per-cue speakers,
// strips inline tags, runs the pre-synthesis QA gate, and (Mode A only)
// clusters cues into TTS requests.
type PreQAHandler struct {
	State  *State
	logger *slog.Logger
}

// NewPreQAHandler builds a PreQAHandler over the shared run State.
func NewPreQAHandler(s *State) *PreQAHandler {
	return &PreQAHandler{State: s, logger: logging.NewNop()}
}

// SetLogger implements stage.LoggerAware.
func (h *PreQAHandler) SetLogger(l *slog.Logger) { h.logger = l }

// Prepare verifies the run has a discovered project and loaded config to
// work from.
func (h *PreQAHandler) Prepare(ctx context.Context, run *runstore.Run) error {
	if h.State.Project == nil {
		return rerr.Wrap(rerr.ErrInvariant, stagePreQA, "prepare", "project has not been discovered", nil)
	}
	if h.State.Config == nil {
		return rerr.Wrap(rerr.ErrInvariant, stagePreQA, "prepare", "config has not been loaded", nil)
	}
	return nil
}

// Execute parses the subtitle file, resolves speakers, runs the
// pre-synthesis QA gate, and builds Mode A's clusters.
func (h *PreQAHandler) Execute(ctx context.Context, run *runstore.Run) error {
	s := h.State

	cues, err := cue.Load(s.Project.SubtitlePath)
	if err != nil {
		return err
	}
	s.SourceCues = cues
	s.Gaps = cue.DetectGaps(cues, s.Config.GapThresholdMS)

	resolver := speaker.NewResolver()
	speakers := make([]string, len(cues))
	cleaned := make(cue.CueList, len(cues))
	for i, c := range cues {
		name, text := resolver.Resolve(c.Text)
		speakers[i] = name
		cleaned[i] = cue.Cue{StartMS: c.StartMS, EndMS: c.EndMS, Text: cue.StripMeta(text)}
	}
	s.Speakers = speakers
	s.CleanedCues = cleaned

	var videoDurationPtr *int
	if s.VideoDurationMS > 0 {
		videoDurationPtr = &s.VideoDurationMS
	}
	maxChars, maxDurationMS := s.ModeParams()
	report := qa.RunPreflight(cleaned, s.Project.VoiceMapPath, videoDurationPtr, maxChars, maxDurationMS, preflightTimelineToleranceMS)
	s.Preflight = &report

	if !report.AllPassed {
		logging.ErrorWithContext(h.logger, "preflight checks failed", "preflight_failed",
			logging.Any("missing_speakers", report.MissingSpeakers),
			logging.Any("max_chars_exceeded", report.MaxCharsExceeded),
			logging.Any("max_duration_exceeded", report.MaxDurationExceeded),
			logging.Bool("timeline_complete", report.TimelineComplete),
			logging.Bool("voice_map_valid", report.VoiceMapValid),
		)
		return rerr.WrapHint(rerr.ErrInputInvalid, stagePreQA, "run_preflight",
			"one or more pre-synthesis QA checks failed", "preflight_failed",
			"inspect report.json's preflight section for the failing cues", nil)
	}

	if s.Mode == modeselect.ModeA {
		clusters, err := cluster.Group(cleaned, speakers)
		if err != nil {
			return err
		}
		s.Clusters = clusters
	}

	return nil
}

// HealthCheck reports whether the stage has what it needs to run.
func (h *PreQAHandler) HealthCheck(ctx context.Context) stage.Health {
	if h.State.Project == nil {
		return stage.Unhealthy(stagePreQA, "no project discovered")
	}
	return stage.Healthy(stagePreQA)
}
