package engine

import (
	"context"
	"log/slog"
	"time"

	"redub/internal/logging"
	"redub/internal/modeselect"
	"redub/internal/rebalance"
	"redub/internal/rerr"
	"redub/internal/runstore"
	"redub/internal/stage"
	"redub/internal/tts"
)

const stageSynthesis = "synthesis"

// SynthesisHandler rebalances cue pacing (Mode A), fans every cue or
// cluster out to the TTS backend, and persists each cue's synthesis
// outcome to the run store.
type SynthesisHandler struct {
	State  *State
	logger *slog.Logger
}

// NewSynthesisHandler builds a SynthesisHandler over the shared run State.
func NewSynthesisHandler(s *State) *SynthesisHandler {
	return &SynthesisHandler{State: s, logger: logging.NewNop()}
}

// SetLogger implements stage.LoggerAware.
func (h *SynthesisHandler) SetLogger(l *slog.Logger) { h.logger = l }

// Prepare verifies a TTS backend and cache are wired in.
func (h *SynthesisHandler) Prepare(ctx context.Context, run *runstore.Run) error {
	if h.State.Backend == nil {
		return rerr.Wrap(rerr.ErrInvariant, stageSynthesis, "prepare", "no tts backend configured", nil)
	}
	if h.State.Cache == nil {
		return rerr.Wrap(rerr.ErrInvariant, stageSynthesis, "prepare", "no tts cache configured", nil)
	}
	return nil
}

// Execute rebalances cue pacing for Mode A, builds one TTS request per
// cluster (Mode A) or per cue (Mode B), dispatches them through the
// Orchestrator, and records each cue's outcome in the run store.
func (h *SynthesisHandler) Execute(ctx context.Context, run *runstore.Run) error {
	s := h.State

	if s.Mode == modeselect.ModeA {
		rebalanced, err := rebalance.Rebalance(s.CleanedCues, rebalance.Params{
			TargetCPM:  s.Config.TargetCPM,
			MaxShiftMS: s.Config.MaxShiftMS,
			PanicCPM:   s.Config.PanicCPM,
		})
		if err != nil {
			return err
		}
		s.RebalancedCues = rebalanced
	}

	requests := h.buildRequests()

	params := tts.Params{
		Concurrency:            s.Config.Concurrency,
		RetryAttempts:          s.Config.RetryAttempts,
		RequestTimeout:         time.Duration(s.Config.RequestTimeoutSeconds) * time.Second,
		SampleRateHz:           uint32(s.Config.SampleRateHz),
		LengthLimitedThreshold: s.Config.LengthLimitedBackendThreshold,
		NoFallback:             s.Config.NoFallback,
	}
	orch := tts.New(s.Backend, s.Cache, s.FFmpeg, s.Project.TTSCacheDir, params)

	results, err := orch.SynthesizeAll(ctx, requests)
	if err != nil {
		return rerr.Wrap(rerr.ErrToolFailure, stageSynthesis, "synthesize_all", "tts synthesis failed", err)
	}
	s.TTSResults = results

	for _, res := range results {
		status := runstore.CueSynthesized
		cachePath := res.Path
		cueErr := ""
		switch {
		case res.Err != nil:
			status = runstore.CueFailed
			cueErr = res.Err.Error()
		case res.Cached:
			status = runstore.CueCached
		case res.Blank:
			status = runstore.CueSynthesized
		}
		cueIdxs := []int{res.Index}
		if s.Mode == modeselect.ModeA {
			cueIdxs = s.Clusters[res.Index].CueIndices()
		}
		if s.Store != nil {
			for _, idx := range cueIdxs {
				if err := s.Store.UpsertCueState(ctx, run.ID, idx, status, cachePath, cueErr); err != nil {
					logging.WarnWithContext(h.logger, "failed to persist cue state", "cue_state_persist_failed",
						logging.Int(logging.FieldCueIndex, idx), logging.Error(err))
				}
			}
		}
		if res.Err != nil {
			return rerr.WrapDetail(rerr.ErrToolFailure, stageSynthesis, "synthesize_cue",
				"tts synthesis failed for one or more cues", res.Err, "report.json")
		}
	}

	return nil
}

// buildRequests maps the run's clusters (Mode A) or cues (Mode B) into TTS
// requests, resolving each speaker against the voice map.
func (h *SynthesisHandler) buildRequests() []tts.Request {
	s := h.State
	if s.Mode == modeselect.ModeA {
		requests := make([]tts.Request, len(s.Clusters))
		for i, cl := range s.Clusters {
			voiceID, warned := s.VoiceMap.Resolve(cl.Speaker)
			if warned {
				s.Warn("cluster " + cl.Speaker + " is not in the voice map; using the default voice")
			}
			requests[i] = tts.Request{Index: i, Text: cl.Text, VoiceID: voiceID}
		}
		return requests
	}

	requests := make([]tts.Request, len(s.CleanedCues))
	for i, c := range s.CleanedCues {
		voiceID, warned := s.VoiceMap.Resolve(s.Speakers[i])
		if warned {
			s.Warn("cue " + s.Speakers[i] + " is not in the voice map; using the default voice")
		}
		requests[i] = tts.Request{Index: i, Text: c.Text, VoiceID: voiceID}
	}
	return requests
}

// HealthCheck reports whether the stage has what it needs to run.
func (h *SynthesisHandler) HealthCheck(ctx context.Context) stage.Health {
	if h.State.Backend == nil {
		return stage.Unhealthy(stageSynthesis, "no tts backend configured")
	}
	return stage.Healthy(stageSynthesis)
}
