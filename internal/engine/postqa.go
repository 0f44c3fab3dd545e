package engine

import (
	"context"
	"log/slog"

	"redub/internal/assemble"
	"redub/internal/cluster"
	"redub/internal/logging"
	"redub/internal/media/ffprobe"
	"redub/internal/qa"
	"redub/internal/rerr"
	"redub/internal/runstore"
	"redub/internal/stage"
)

const stagePostQA = "postqa"

// PostQAHandler runs the length-parity integrity check and the windowed
// onset-detection sync audit against the assembled output. Per the
// Failure State Machine, failures here are recorded but never fail the
// run.
type PostQAHandler struct {
	State  *State
	logger *slog.Logger
}

// NewPostQAHandler builds a PostQAHandler over the shared run State.
func NewPostQAHandler(s *State) *PostQAHandler {
	return &PostQAHandler{State: s, logger: logging.NewNop()}
}

// SetLogger implements stage.LoggerAware.
func (h *PostQAHandler) SetLogger(l *slog.Logger) { h.logger = l }

// Prepare verifies assembly has produced output to audit.
func (h *PostQAHandler) Prepare(ctx context.Context, run *runstore.Run) error {
	if h.State.OutputAudioPath == "" {
		return rerr.Wrap(rerr.ErrInvariant, stagePostQA, "prepare", "no assembled audio to audit", nil)
	}
	return nil
}

// Execute runs the integrity and sync-audit checks, recording results on
// State rather than returning an error for anything but a tool failure.
func (h *PostQAHandler) Execute(ctx context.Context, run *runstore.Run) error {
	s := h.State

	pcm, err := cluster.ReadWavFile(s.OutputAudioPath)
	if err != nil {
		return rerr.Wrap(rerr.ErrInputInvalid, stagePostQA, "read_output_audio", s.OutputAudioPath, err)
	}
	audioMS := pcm.DurationMS()

	videoPath := s.FinalVideoPath
	if videoPath == "" {
		videoPath = s.Project.VideoPath
	}
	probe, err := ffprobe.Inspect(ctx, s.ProbeBinary, videoPath)
	if err != nil {
		logging.WarnWithContext(h.logger, "failed to probe output video duration for parity check", "parity_probe_failed",
			logging.Error(err))
	} else {
		videoMS := int(probe.DurationSeconds() * 1000)
		s.LengthParityMS = audioMS - videoMS
		if err := assemble.CheckLengthParity(audioMS, videoMS, assemble.DefaultLengthParityToleranceMS); err != nil {
			logging.WarnWithContext(h.logger, "length parity check failed", "length_parity_failed", logging.Error(err))
			s.Warn(rerr.Describe(err).Message)
		}
	}

	cueList := s.CleanedCues
	if s.ModeBTimeline != nil {
		cueList = s.ModeBTimeline
	} else if s.RebalancedCues != nil {
		cueList = s.RebalancedCues
	}
	toleranceMS := s.Config.OnsetToleranceMS
	searchMS := s.Config.OnsetSearchMS
	report := qa.RunSyncAudit(pcm, cueList, qa.DefaultEnvelopeWindowMS, searchMS, toleranceMS)
	s.SyncAudit = &report
	if report.FailCount > 0 {
		logging.WarnWithContext(h.logger, "post-flight sync audit found drifted cues", "sync_audit_failures",
			logging.Int("fail_count", report.FailCount), logging.Int("pass_count", report.PassCount))
	}

	return nil
}

// HealthCheck reports whether the stage has what it needs to run.
func (h *PostQAHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(stagePostQA)
}
