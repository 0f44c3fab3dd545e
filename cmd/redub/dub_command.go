package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/cue"
	"redub/internal/engine"
	"redub/internal/logging"
	"redub/internal/media/ffmpeg"
	"redub/internal/media/ffprobe"
	"redub/internal/modeselect"
	"redub/internal/pipeline"
	"redub/internal/project"
	"redub/internal/report"
	"redub/internal/rerr"
	"redub/internal/runstore"
	"redub/internal/tts"
	"redub/internal/ttscache"
)

// newDubCommand builds the "redub dub" command: the end-to-end run that
// drives a project directory through the Failure State Machine
// (PreQA -> Synthesis -> Fit -> Assemble -> PostQA) and writes the dubbed
// output, a run report, and a CPM audit CSV.
func newDubCommand(cfgFn func() *config.Config) *cobra.Command {
	var modeFlag string
	var voiceHost string
	var noFallback bool
	var withDebugLogs bool

	cmd := &cobra.Command{
		Use:   "dub <project-dir>",
		Short: "Re-dub a project directory's video from its subtitle track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if cfg == nil {
				return fmt.Errorf("configuration not available")
			}
			if noFallback {
				cfg.NoFallback = true
			}

			proj, err := project.Discover(args[0])
			if err != nil {
				return err
			}

			lock, err := proj.Lock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			if err := proj.EnsureOutputTree(withDebugLogs); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}

			mode, err := resolveMode(modeFlag, cfg, proj)
			if err != nil {
				return err
			}

			runResult, err := runDub(cmd.Context(), cfg, proj, mode, voiceHost, logger)
			if err != nil {
				return err
			}

			colorize := shouldColorize(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine("dub", statusOK, fmt.Sprintf("wrote %s", runResult.OutputVideoPath), colorize))
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), report.RenderSummary(runResult))
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "auto", `synthesis mode: "a" (elastic audio), "b" (elastic video), or "auto" (use the mode-selection heuristic)`)
	cmd.Flags().StringVar(&voiceHost, "tts-host", "", "override the TTS backend host (advanced; defaults to the built-in endpoint)")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "synthesize one cue at a time and abort at the first TTS failure (a TTS failure aborts the run either way)")
	cmd.Flags().BoolVar(&withDebugLogs, "debug-logs", false, "write per-stage debug artifacts under output/<project>/debug")

	return cmd
}

// resolveMode honors an explicit --mode flag; "auto" defers to
// modeselect.Recommend over the parsed subtitle track, per spec §4.11 (an
// advisor, never a gate the CLI itself is bound by).
func resolveMode(modeFlag string, cfg *config.Config, proj *project.Project) (modeselect.Mode, error) {
	switch modeFlag {
	case "a", "mode_a", "A":
		return modeselect.ModeA, nil
	case "b", "mode_b", "B":
		return modeselect.ModeB, nil
	case "", "auto":
		cues, err := cue.Load(proj.SubtitlePath)
		if err != nil {
			return "", err
		}
		rec := modeselect.Recommend(cues, cfg.PanicCPM, modeselect.DefaultTargetCPMLow, modeselect.DefaultTargetCPMHigh)
		return rec.Mode, nil
	default:
		return "", fmt.Errorf("--mode: unsupported value %q (want \"a\", \"b\", or \"auto\")", modeFlag)
	}
}

// dubRunResult is produced by runDub for the top-level command to render;
// it's an alias of report.Report since that's already the complete,
// serializable description of one run.
type dubRunResult = report.Report

func runDub(ctx context.Context, cfg *config.Config, proj *project.Project, mode modeselect.Mode, ttsHost string, logger *slog.Logger) (*dubRunResult, error) {
	storePath := filepath.Join(proj.OutputDir, "run.db")
	store, err := runstore.Open(storePath)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()

	run, err := store.CreateRun(ctx, proj.Dir, string(mode))
	if err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}

	voiceMap, err := proj.LoadVoiceMap(defaultFallbackVoiceID)
	if err != nil {
		return nil, err
	}
	glossary, err := proj.LoadGlossary()
	if err != nil {
		return nil, err
	}

	ffmpegClient := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary))

	cache, err := ttscache.Open(cfg.TTSCacheDir)
	if err != nil {
		return nil, fmt.Errorf("open tts cache: %w", err)
	}

	var backendOpts []tts.EdgeTTSOption
	if ttsHost != "" {
		backendOpts = append(backendOpts, tts.WithEdgeTTSHost(ttsHost))
	}
	backend := tts.NewEdgeTTSBackend(proj.OutputDir, backendOpts...)
	defer backend.Close()

	probe, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary, proj.VideoPath)
	if err != nil {
		return nil, rerr.Wrap(rerr.ErrToolFailure, "dub", "probe_source_video", proj.VideoPath, err)
	}

	state := &engine.State{
		Project:         proj,
		Config:          cfg,
		VoiceMap:        voiceMap,
		Glossary:        glossary,
		FFmpeg:          ffmpegClient,
		ProbeBinary:     cfg.FFprobeBinary,
		Backend:         backend,
		Cache:           cache,
		Store:           store,
		Mode:            mode,
		VideoDurationMS: int(probe.DurationSeconds() * 1000),
	}

	runner := pipeline.NewRunner(store, logger,
		engine.NewPreQAHandler(state),
		engine.NewSynthesisHandler(state),
		engine.NewFitHandler(state),
		engine.NewAssembleHandler(state),
		engine.NewPostQAHandler(state),
	)

	if err := runner.Run(ctx, run); err != nil {
		return nil, err
	}

	r := buildReport(state)
	if err := r.Write(proj.ReportPath); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	auditCues := state.RebalancedCues
	if state.Mode == modeselect.ModeB {
		auditCues = state.CleanedCues
	}
	if err := report.WriteCPMAuditCSV(proj.AuditCSVPath, auditCues); err != nil {
		return nil, fmt.Errorf("write cpm audit csv: %w", err)
	}

	return r, nil
}

// defaultFallbackVoiceID is used for a project with no voice_map.json,
// resolving every speaker to the same Edge TTS English voice.
const defaultFallbackVoiceID = "en-US-AriaNeural"

func buildReport(s *engine.State) *report.Report {
	cuesTotal := len(s.CleanedCues)
	var synthesized, cached int
	for _, res := range s.TTSResults {
		if res.Cached {
			cached++
		} else {
			synthesized++
		}
	}

	r := &report.Report{
		GeneratedAt:       time.Now(),
		InputVideoPath:    s.Project.VideoPath,
		InputSubtitlePath: s.Project.SubtitlePath,
		VoiceMapPath:      s.Project.VoiceMapPath,
		GlossaryPath:      s.Project.GlossaryPath,
		GlossaryTerms:     s.Glossary,
		Mode:              string(s.Mode),
		Parameters: report.Parameters{
			TargetCPM:        s.Config.TargetCPM,
			PanicCPM:         s.Config.PanicCPM,
			MaxShiftMS:       s.Config.MaxShiftMS,
			GapThresholdMS:   s.Config.GapThresholdMS,
			MaxChars:         s.Config.MaxChars,
			MaxDurationMS:    s.Config.MaxDurationMS,
			OnsetToleranceMS: s.Config.OnsetToleranceMS,
			NoFallback:       s.Config.NoFallback,
		},
		CuesTotal:       cuesTotal,
		CuesSynthesized: synthesized,
		CuesCached:      cached,
		Warnings:        s.Warnings,
		Preflight:       s.Preflight,
		SyncAudit:       s.SyncAudit,
		LengthParityMS:  s.LengthParityMS,
		OutputVideoPath: s.FinalVideoPath,
		ReportPath:      s.Project.ReportPath,
		AuditCSVPath:    s.Project.AuditCSVPath,
	}
	return r
}
