package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"redub/internal/audiofit"
	"redub/internal/cluster"
	"redub/internal/logging"
	"redub/internal/modeselect"
	"redub/internal/rerr"
	"redub/internal/runstore"
	"redub/internal/stage"
)

const stageFitEngine = "fit"

// splitEnvelopeWindowMS and splitSearchWindowMS bound the near-silence
// search Mode A's cluster-to-cue audio split performs around each ideal
// cut point.
const (
	splitEnvelopeWindowMS = 20
	splitSearchWindowMS   = 300
)

// FitHandler reconciles every cue's synthesized audio with its target
// duration: Mode A fits each cluster's audio as a whole to the cluster's
// total rebalanced duration, then splits it into per-cue clips at
// near-silent cut points; Mode B keeps each cue's audio at natural speed
// and leaves stretching the source video to AssembleHandler.
type FitHandler struct {
	State  *State
	logger *slog.Logger
}

// NewFitHandler builds a FitHandler over the shared run State.
func NewFitHandler(s *State) *FitHandler {
	return &FitHandler{State: s, logger: logging.NewNop()}
}

// SetLogger implements stage.LoggerAware.
func (h *FitHandler) SetLogger(l *slog.Logger) { h.logger = l }

// Prepare verifies synthesis has produced results to fit.
func (h *FitHandler) Prepare(ctx context.Context, run *runstore.Run) error {
	if h.State.TTSResults == nil {
		return rerr.Wrap(rerr.ErrInvariant, stageFitEngine, "prepare", "no tts results to fit", nil)
	}
	return nil
}

// Execute runs the mode-appropriate fitting pass.
func (h *FitHandler) Execute(ctx context.Context, run *runstore.Run) error {
	if h.State.Mode == modeselect.ModeA {
		return h.fitModeA(ctx)
	}
	return h.fitModeB(ctx)
}

func (h *FitHandler) fitModeA(ctx context.Context) error {
	s := h.State
	fitter := audiofit.New(s.FFmpeg, s.Project.OutputDir, audiofit.DefaultParams())

	fitted := make([]string, len(s.CleanedCues))
	for clusterIdx, cl := range s.Clusters {
		res := s.TTSResults[clusterIdx]
		cueIdxs := cl.CueIndices()

		if res.Blank {
			for _, idx := range cueIdxs {
				dst := filepath.Join(s.Project.OutputDir, fmt.Sprintf("cue_%04d_fit.wav", idx))
				if err := s.FFmpeg.GenerateSilence(ctx, s.RebalancedCues[idx].Duration(), s.Config.SampleRateHz, dst); err != nil {
					return rerr.Wrap(rerr.ErrToolFailure, stageFitEngine, "generate_blank_silence", dst, err)
				}
				fitted[idx] = dst
			}
			continue
		}

		durations := make([]int, len(cueIdxs))
		targetMS := 0
		chars := 0
		for i, idx := range cueIdxs {
			durations[i] = s.RebalancedCues[idx].Duration()
			targetMS += durations[i]
			chars += s.RebalancedCues[idx].Chars()
		}
		clusterCPM := 0.0
		if targetMS > 0 {
			clusterCPM = float64(chars) / (float64(targetMS) / 60000.0)
		}

		// The cluster's raw TTS audio is fit once, as a whole, to the
		// cluster's total rebalanced duration before it is split: splitting
		// first would carve the cut points out of proportions the
		// Rebalancer never produced.
		clusterFitPath := filepath.Join(s.Project.OutputDir, fmt.Sprintf("cluster_%04d_fit.wav", clusterIdx))
		if _, err := fitter.Fit(ctx, res.Path, targetMS, clusterCPM, clusterFitPath); err != nil {
			return err
		}

		pcm, err := cluster.ReadWavFile(clusterFitPath)
		if err != nil {
			return rerr.Wrap(rerr.ErrInputInvalid, stageFitEngine, "read_cluster_audio", clusterFitPath, err)
		}
		parts := cluster.SplitByDurationsSmart(pcm, durations, splitEnvelopeWindowMS, splitSearchWindowMS)

		for i, idx := range cueIdxs {
			dst := filepath.Join(s.Project.OutputDir, fmt.Sprintf("cue_%04d_fit.wav", idx))
			if err := cluster.WriteWavFile(dst, parts[i]); err != nil {
				return err
			}
			fitted[idx] = dst
		}
	}
	s.FittedAudioPaths = fitted
	return nil
}

func (h *FitHandler) fitModeB(ctx context.Context) error {
	s := h.State
	fitter := audiofit.New(s.FFmpeg, s.Project.OutputDir, audiofit.DefaultParams())

	fitted := make([]string, len(s.CleanedCues))
	for i, res := range s.TTSResults {
		dst := filepath.Join(s.Project.OutputDir, fmt.Sprintf("cue_%04d_natural.wav", i))
		if res.Blank {
			if err := s.FFmpeg.GenerateSilence(ctx, s.CleanedCues[i].Duration(), s.Config.SampleRateHz, dst); err != nil {
				return rerr.Wrap(rerr.ErrToolFailure, stageFitEngine, "generate_blank_silence", dst, err)
			}
			fitted[i] = dst
			continue
		}
		if _, err := fitter.FitNaturalSpeed(res.Path, dst); err != nil {
			return err
		}
		fitted[i] = dst
	}
	s.FittedAudioPaths = fitted
	return nil
}

// HealthCheck reports whether the stage has what it needs to run.
func (h *FitHandler) HealthCheck(ctx context.Context) stage.Health {
	if h.State.FFmpeg == nil {
		return stage.Unhealthy(stageFitEngine, "no ffmpeg client configured")
	}
	return stage.Healthy(stageFitEngine)
}
