package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config encapsulates every knob the redub engine and CLI need.
type Config struct {
	TargetCPM                     float64 `toml:"target_cpm"`
	MaxShiftMS                    int     `toml:"max_shift_ms"`
	PanicCPM                      float64 `toml:"panic_cpm"`
	GapThresholdMS                int     `toml:"gap_threshold_ms"`
	Concurrency                   int     `toml:"concurrency"`
	RetryAttempts                 int     `toml:"retry_attempts"`
	RequestTimeoutSeconds         int     `toml:"request_timeout_seconds"`
	MaxChars                      int     `toml:"max_chars"`
	MaxCharsModeB                 int     `toml:"max_chars_mode_b"`
	MaxDurationMS                 int     `toml:"max_duration_ms"`
	MaxDurationMSModeB            int     `toml:"max_duration_ms_mode_b"`
	OnsetToleranceMS              int     `toml:"onset_tolerance_ms"`
	OnsetSearchMS                 int     `toml:"onset_search_ms"`
	SampleRateHz                  int     `toml:"sample_rate_hz"`
	FFmpegBinary                  string  `toml:"ffmpeg_binary"`
	FFprobeBinary                 string  `toml:"ffprobe_binary"`
	TTSCacheDir                   string  `toml:"tts_cache_dir"`
	NoFallback                    bool    `toml:"no_fallback"`
	DualSRTSubtitlePolicy         string  `toml:"dual_srt_subtitle_policy"`
	SubtitleLanguage              string  `toml:"subtitle_language"`
	LengthLimitedBackendThreshold int     `toml:"length_limited_backend_threshold"`
	LogDir                        string  `toml:"log_dir"`
	LogFormat                     string  `toml:"log_format"`
	LogLevel                      string  `toml:"log_level"`
}

const (
	// DualSRTPreferDisplay keeps the original, unrebalanced cue timings in
	// the viewer-facing subtitle track.
	DualSRTPreferDisplay = "prefer_display"
	// DualSRTPreferRebalance writes the rebalanced timings to the
	// viewer-facing subtitle track instead of the original cue timings.
	DualSRTPreferRebalance = "prefer_rebalance"
)

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/redub/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. The
// returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/redub/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("redub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if pathValue[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := `# redub configuration
# ====================

# ----------------------------------------------------------------------------
# PACING
# ----------------------------------------------------------------------------

target_cpm = 180.0           # Target characters-per-minute for a comfortable speaking rate
panic_cpm = 300.0            # CPM above which the rebalancer applies doubled shift caps
max_shift_ms = 1000          # Maximum per-sweep time a cue boundary may move
gap_threshold_ms = 100       # Minimum silence between cues treated as a first-class gap

# ----------------------------------------------------------------------------
# TTS ORCHESTRATION
# ----------------------------------------------------------------------------

concurrency = 4                     # Max concurrent TTS requests in flight
retry_attempts = 3                  # Attempts per TTS request; only transport failures are retried
request_timeout_seconds = 180       # Per-request TTS timeout
no_fallback = false                 # If true, TTS runs one request at a time and the first failure aborts at once
tts_cache_dir = "~/.cache/redub/tts" # Content-addressed TTS audio cache
length_limited_backend_threshold = 75 # Char count above which length-limited backends reject the request

# ----------------------------------------------------------------------------
# LIMITS
# ----------------------------------------------------------------------------

max_chars = 250                 # Per-cue character ceiling, Mode A
max_chars_mode_b = 100           # Per-cue character ceiling, Mode B
max_duration_ms = 15000          # Per-cue duration ceiling, Mode A
max_duration_ms_mode_b = 6000    # Per-cue duration ceiling, Mode B

# ----------------------------------------------------------------------------
# QA
# ----------------------------------------------------------------------------

onset_tolerance_ms = 180   # Post-flight onset-delta pass threshold
onset_search_ms = 500      # Onset detection search window, +/-

# ----------------------------------------------------------------------------
# MEDIA TOOLING
# ----------------------------------------------------------------------------

ffmpeg_binary = "ffmpeg"
ffprobe_binary = "ffprobe"
sample_rate_hz = 24000

# ----------------------------------------------------------------------------
# SUBTITLES
# ----------------------------------------------------------------------------

dual_srt_subtitle_policy = "prefer_display" # "prefer_display" or "prefer_rebalance"
subtitle_language = ""       # Embedded subtitle track language; any ISO 639-1/639-2 code
                              # or English name (e.g. "fr", "fre", "french"). Empty keeps
                              # the muxer's own default.

# ----------------------------------------------------------------------------
# LOGGING
# ----------------------------------------------------------------------------

log_dir = "~/.local/share/redub/logs"
log_format = "console" # "console" or "json"
log_level = "info"
`

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
