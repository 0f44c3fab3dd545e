package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"redub/internal/assemble"
	"redub/internal/config"
	"redub/internal/cue"
	"redub/internal/language"
	"redub/internal/logging"
	"redub/internal/modeselect"
	"redub/internal/mux"
	"redub/internal/rerr"
	"redub/internal/runstore"
	"redub/internal/stage"
	"redub/internal/videostretch"
)

const stageAssembleEngine = "assemble"

// AssembleHandler builds the final audio (and, for Mode B, video) track
// from each cue's fitted clip, resolves the dual-SRT subtitle policy, and
// muxes the result into the project's output container.
type AssembleHandler struct {
	State  *State
	logger *slog.Logger
}

// NewAssembleHandler builds an AssembleHandler over the shared run State.
func NewAssembleHandler(s *State) *AssembleHandler {
	return &AssembleHandler{State: s, logger: logging.NewNop()}
}

// SetLogger implements stage.LoggerAware.
func (h *AssembleHandler) SetLogger(l *slog.Logger) { h.logger = l }

// Prepare verifies fitting has produced audio clips to assemble.
func (h *AssembleHandler) Prepare(ctx context.Context, run *runstore.Run) error {
	if len(h.State.FittedAudioPaths) == 0 {
		return rerr.Wrap(rerr.ErrInvariant, stageAssembleEngine, "prepare", "no fitted audio to assemble", nil)
	}
	return nil
}

// Execute assembles the timeline and muxes the final output.
func (h *AssembleHandler) Execute(ctx context.Context, run *runstore.Run) error {
	s := h.State

	if s.Mode == modeselect.ModeA {
		if err := h.assembleModeA(ctx); err != nil {
			return err
		}
	} else {
		if err := h.assembleModeB(ctx); err != nil {
			return err
		}
	}

	s.DisplaySubtitle, s.AudioSubtitle = h.resolveSubtitles()

	subtitlePath := filepath.Join(s.Project.OutputDir, filepath.Base(s.Project.Name)+".display.srt")
	if err := cue.Save(subtitlePath, s.DisplaySubtitle); err != nil {
		return err
	}
	audioSRTPath := filepath.Join(s.Project.OutputDir, filepath.Base(s.Project.Name)+".audio.srt")
	if err := cue.Save(audioSRTPath, s.AudioSubtitle); err != nil {
		return err
	}

	dst := filepath.Join(s.Project.OutputDir, filepath.Base(s.Project.Name)+".mkv")
	videoSource := s.Project.VideoPath
	if s.OutputVideoPath != "" {
		videoSource = s.OutputVideoPath
	}
	subtitleLanguage := ""
	if s.Config.SubtitleLanguage != "" {
		subtitleLanguage = language.ToISO3(s.Config.SubtitleLanguage)
	}
	if err := mux.Mux(ctx, s.FFmpeg, s.ProbeBinary, mux.Options{
		VideoPath:        videoSource,
		AudioPath:        s.OutputAudioPath,
		SubtitlePath:     subtitlePath,
		SubtitleLanguage: subtitleLanguage,
		DstPath:          dst,
	}); err != nil {
		return err
	}
	s.FinalVideoPath = dst
	return nil
}

func (h *AssembleHandler) assembleModeA(ctx context.Context) error {
	s := h.State
	dst := filepath.Join(s.Project.OutputDir, "dubbed_audio.wav")
	if err := assemble.AssembleModeA(ctx, s.FFmpeg, s.Project.OutputDir, assemble.ModeAInput{
		Cues:             s.RebalancedCues,
		FittedAudioPaths: s.FittedAudioPaths,
		VideoDurationMS:  s.VideoDurationMS,
		SampleRateHz:     s.Config.SampleRateHz,
	}, dst); err != nil {
		return err
	}
	s.OutputAudioPath = dst
	return nil
}

func (h *AssembleHandler) assembleModeB(ctx context.Context) error {
	s := h.State
	stretcher := videostretch.New(s.FFmpeg)

	segments := make([]assemble.ModeBSegment, 0, len(s.CleanedCues)+len(s.Gaps))
	ttsDurationsMS := make([]int, len(s.CleanedCues))

	gapAfter := make(map[int]cue.Gap, len(s.Gaps))
	for _, g := range s.Gaps {
		gapAfter[g.PrevIdx] = g
	}

	for i, c := range s.CleanedCues {
		audioPath := s.FittedAudioPaths[i]
		audioDuration, err := wavDurationMS(audioPath)
		if err != nil {
			return err
		}
		ttsDurationsMS[i] = audioDuration

		ratio := float64(audioDuration) / float64(c.Duration())
		videoDst := filepath.Join(s.Project.OutputDir, fmt.Sprintf("cue_%04d_video.mp4", i))
		seg, err := stretcher.Stretch(ctx, s.Project.VideoPath, c.StartMS, c.EndMS, ratio, videoDst)
		if err != nil {
			return err
		}
		if seg.Warning != "" {
			s.Warn(seg.Warning)
		}
		segments = append(segments, assemble.ModeBSegment{
			CueIdx:    i,
			Role:      assemble.RoleSpeech,
			VideoPath: seg.Path,
			AudioPath: audioPath,
			TTSMs:     audioDuration,
		})

		if gap, ok := gapAfter[i]; ok {
			gapVideoDst := filepath.Join(s.Project.OutputDir, fmt.Sprintf("gap_%04d_video.mp4", i))
			gapSeg, err := stretcher.StretchGap(ctx, s.Project.VideoPath, gap.StartMS, gap.EndMS, gapVideoDst)
			if err != nil {
				return err
			}
			gapAudioDst := filepath.Join(s.Project.OutputDir, fmt.Sprintf("gap_%04d_audio.wav", i))
			if err := s.FFmpeg.GenerateSilence(ctx, gap.DurationMS, s.Config.SampleRateHz, gapAudioDst); err != nil {
				return rerr.Wrap(rerr.ErrToolFailure, stageAssembleEngine, "generate_gap_silence", gapAudioDst, err)
			}
			segments = append(segments, assemble.ModeBSegment{
				CueIdx:    -1,
				Role:      assemble.RoleGap,
				VideoPath: gapSeg.Path,
				AudioPath: gapAudioDst,
				TTSMs:     gap.DurationMS,
			})
		}
	}
	s.ModeBSegments = segments

	videoDst := filepath.Join(s.Project.OutputDir, "dubbed_video.mp4")
	audioDst := filepath.Join(s.Project.OutputDir, "dubbed_audio.wav")
	if err := assemble.AssembleModeB(ctx, s.FFmpeg, segments, videoDst, audioDst); err != nil {
		return err
	}
	s.OutputVideoPath = videoDst
	s.OutputAudioPath = audioDst

	timeline, err := assemble.BuildModeBTimeline(s.CleanedCues, ttsDurationsMS, s.Gaps, false)
	if err != nil {
		return err
	}
	s.ModeBTimeline = timeline
	return nil
}

// resolveSubtitles applies the dual-SRT subtitle policy: the viewer-facing
// display track follows config.DualSRTSubtitlePolicy, while the
// audio-aligned track always reflects the timing audio was actually fit
// to.
func (h *AssembleHandler) resolveSubtitles() (display, audio cue.CueList) {
	s := h.State
	if s.Mode == modeselect.ModeB {
		return s.SourceCues, s.ModeBTimeline
	}

	audio = s.RebalancedCues
	switch s.Config.DualSRTSubtitlePolicy {
	case config.DualSRTPreferRebalance:
		display = s.RebalancedCues
	default:
		display = s.SourceCues
	}
	return display, audio
}

// HealthCheck reports whether the stage has what it needs to run.
func (h *AssembleHandler) HealthCheck(ctx context.Context) stage.Health {
	if h.State.FFmpeg == nil {
		return stage.Unhealthy(stageAssembleEngine, "no ffmpeg client configured")
	}
	return stage.Healthy(stageAssembleEngine)
}
