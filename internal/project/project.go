package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"redub/internal/rerr"
	"redub/internal/speaker"
	"redub/internal/textutil"
)

const stageProject = "project_discovery"

const (
	opDiscover     = "discover_project"
	opLoadVoiceMap = "load_voice_map"
	opLoadGlossary = "load_glossary"
	opLockRun      = "lock_run"
)

// videoExtensions are the source video formats a project directory may
// contain exactly one of.
var videoExtensions = map[string]struct{}{
	".mkv": {},
	".mp4": {},
	".avi": {},
}

const subtitleExtension = ".srt"

const (
	voiceMapFileName = "voice_map.json"
	glossaryFileName = "glossary.yaml"
	runLockFileName  = ".redub-run.lock"
)

// Project describes the files a single project directory resolves to and
// the sibling output tree a run writes into.
type Project struct {
	Dir          string
	Name         string
	VideoPath    string
	SubtitlePath string
	VoiceMapPath string // empty when voice_map.json is absent
	GlossaryPath string // empty when glossary.yaml is absent
	OutputDir    string
	ReportPath   string
	AuditCSVPath string
	DebugLogDir  string
	TTSCacheDir  string
}

// Discover locates the project's video and subtitle files, resolves the
// optional voice map and glossary, and computes the output tree rooted at
// a sibling output/<project-name>/ directory. It rejects any directory
// that does not contain exactly one video file and exactly one subtitle
// file.
func Discover(dir string) (*Project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageProject, opDiscover,
			fmt.Sprintf("resolve project directory %q", dir), err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageProject, opDiscover,
			fmt.Sprintf("read project directory %q", absDir), err)
	}

	var videoPaths, subtitlePaths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		path := filepath.Join(absDir, name)
		if _, ok := videoExtensions[ext]; ok {
			videoPaths = append(videoPaths, path)
		}
		if ext == subtitleExtension && !strings.Contains(strings.ToLower(name), ".mode_b.") &&
			!strings.Contains(strings.ToLower(name), ".rebalance.") &&
			!strings.Contains(strings.ToLower(name), ".display.") &&
			!strings.Contains(strings.ToLower(name), ".audio.") {
			subtitlePaths = append(subtitlePaths, path)
		}
	}
	sort.Strings(videoPaths)
	sort.Strings(subtitlePaths)

	if len(videoPaths) != 1 {
		return nil, rerr.WrapHint(rerr.ErrInputInvalid, stageProject, opDiscover,
			fmt.Sprintf("expected exactly one video file, found %d", len(videoPaths)),
			"project_ambiguous_video",
			"keep exactly one .mkv/.mp4/.avi file in the project directory", nil)
	}
	if len(subtitlePaths) != 1 {
		return nil, rerr.WrapHint(rerr.ErrInputInvalid, stageProject, opDiscover,
			fmt.Sprintf("expected exactly one subtitle file, found %d", len(subtitlePaths)),
			"project_ambiguous_subtitle",
			"keep exactly one source .srt file in the project directory; generated *.rebalance/.display/.audio/.mode_b.srt variants are ignored", nil)
	}

	// The project name seeds every output file name (report, audit CSV,
	// muxed container, subtitle variants); sanitize it once here so a
	// directory name copied from a filesystem with different naming rules
	// (e.g. a colon- or slash-bearing title) never produces an invalid path.
	name := textutil.SanitizeFileName(filepath.Base(absDir))
	if name == "" {
		name = filepath.Base(absDir)
	}
	outputDir := filepath.Join(absDir, "output", name)

	p := &Project{
		Dir:          absDir,
		Name:         name,
		VideoPath:    videoPaths[0],
		SubtitlePath: subtitlePaths[0],
		OutputDir:    outputDir,
		ReportPath:   filepath.Join(outputDir, "report.json"),
		AuditCSVPath: filepath.Join(outputDir, "cpm_audit.csv"),
		DebugLogDir:  filepath.Join(outputDir, "debug"),
		TTSCacheDir:  filepath.Join(absDir, "tts_cache"),
	}

	if voiceMapPath := filepath.Join(absDir, voiceMapFileName); fileExists(voiceMapPath) {
		p.VoiceMapPath = voiceMapPath
	}
	if glossaryPath := filepath.Join(absDir, glossaryFileName); fileExists(glossaryPath) {
		p.GlossaryPath = glossaryPath
	}

	return p, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureOutputTree creates the output directory (and debug log directory,
// when debug logging is enabled) in preparation for a run.
func (p *Project) EnsureOutputTree(withDebugLogs bool) error {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return rerr.Wrap(rerr.ErrInputInvalid, stageProject, opDiscover,
			fmt.Sprintf("create output directory %q", p.OutputDir), err)
	}
	if withDebugLogs {
		if err := os.MkdirAll(p.DebugLogDir, 0o755); err != nil {
			return rerr.Wrap(rerr.ErrInputInvalid, stageProject, opDiscover,
				fmt.Sprintf("create debug log directory %q", p.DebugLogDir), err)
		}
	}
	return nil
}

// LoadVoiceMap parses voice_map.json into a speaker.VoiceMap. When the
// project has no voice map file, it returns a single-entry map mapping
// DEFAULT to the fallback voice ID so every speaker resolves to the same
// voice rather than failing the run over an absent optional file.
func (p *Project) LoadVoiceMap(fallbackVoiceID string) (*speaker.VoiceMap, error) {
	if p.VoiceMapPath == "" {
		return speaker.NewVoiceMap(map[string]string{speaker.DefaultSpeaker: fallbackVoiceID})
	}

	raw, err := os.ReadFile(p.VoiceMapPath)
	if err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageProject, opLoadVoiceMap,
			fmt.Sprintf("read voice map %q", p.VoiceMapPath), err)
	}

	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageProject, opLoadVoiceMap,
			fmt.Sprintf("parse voice map %q", p.VoiceMapPath), err)
	}

	voiceMap, err := speaker.NewVoiceMap(entries)
	if err != nil {
		return nil, err
	}
	return voiceMap, nil
}

// LoadGlossary parses glossary.yaml into a term-to-translation map. The
// glossary is loaded and validated but never applied to cue text: the
// text-immutability invariant means a glossary can only be surfaced on the
// run report, never used to rewrite a cue.
func (p *Project) LoadGlossary() (map[string]string, error) {
	if p.GlossaryPath == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(p.GlossaryPath)
	if err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageProject, opLoadGlossary,
			fmt.Sprintf("read glossary %q", p.GlossaryPath), err)
	}

	var entries map[string]string
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageProject, opLoadGlossary,
			fmt.Sprintf("parse glossary %q", p.GlossaryPath), err)
	}
	return entries, nil
}

// Lock acquires an advisory run lock scoped to this project's output
// directory, so two runs against the same project directory don't race
// writing the same report/audit/output files. The caller must Unlock it
// (typically via a deferred call) once the run finishes.
func (p *Project) Lock() (*flock.Flock, error) {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageProject, opLockRun,
			fmt.Sprintf("create output directory %q", p.OutputDir), err)
	}

	lock := flock.New(filepath.Join(p.OutputDir, runLockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, rerr.Wrap(rerr.ErrResourceExhausted, stageProject, opLockRun,
			"acquire project run lock", err)
	}
	if !locked {
		return nil, rerr.WrapHint(rerr.ErrResourceExhausted, stageProject, opLockRun,
			"project already has a run in progress", "project_run_locked",
			"wait for the in-progress run to finish, or remove the stale lock file if it crashed", nil)
	}
	return lock, nil
}

// LockWithTimeout retries acquiring the run lock until timeout elapses,
// for callers that would rather wait briefly than fail immediately on a
// lock held by a run that is about to finish.
func (p *Project) LockWithTimeout(timeout time.Duration) (*flock.Flock, error) {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageProject, opLockRun,
			fmt.Sprintf("create output directory %q", p.OutputDir), err)
	}

	lock := flock.New(filepath.Join(p.OutputDir, runLockFileName))
	deadline := time.Now().Add(timeout)
	for {
		locked, err := lock.TryLock()
		if err != nil {
			return nil, rerr.Wrap(rerr.ErrResourceExhausted, stageProject, opLockRun,
				"acquire project run lock", err)
		}
		if locked {
			return lock, nil
		}
		if time.Now().After(deadline) {
			return nil, rerr.WrapHint(rerr.ErrResourceExhausted, stageProject, opLockRun,
				"timed out waiting for project run lock", "project_run_lock_timeout",
				"another run is still holding the lock", nil)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
