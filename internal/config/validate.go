package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is internally consistent and usable.
func (c *Config) Validate() error {
	if c.TargetCPM <= 0 {
		return errors.New("target_cpm must be positive")
	}
	if c.PanicCPM <= c.TargetCPM {
		return errors.New("panic_cpm must be greater than target_cpm")
	}
	if c.MaxShiftMS <= 0 {
		return errors.New("max_shift_ms must be positive")
	}
	if c.GapThresholdMS < 0 {
		return errors.New("gap_threshold_ms must be >= 0")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be >= 1")
	}
	if err := ensurePositiveMap(map[string]int{
		"retry_attempts":           c.RetryAttempts,
		"request_timeout_seconds":  c.RequestTimeoutSeconds,
		"max_chars":                c.MaxChars,
		"max_chars_mode_b":         c.MaxCharsModeB,
		"max_duration_ms":          c.MaxDurationMS,
		"max_duration_ms_mode_b":   c.MaxDurationMSModeB,
		"onset_search_ms":          c.OnsetSearchMS,
		"sample_rate_hz":           c.SampleRateHz,
		"length_limited_backend_threshold": c.LengthLimitedBackendThreshold,
	}); err != nil {
		return err
	}
	if c.OnsetToleranceMS < 0 {
		return errors.New("onset_tolerance_ms must be >= 0")
	}
	if c.OnsetToleranceMS > c.OnsetSearchMS {
		return errors.New("onset_tolerance_ms must not exceed onset_search_ms")
	}
	switch c.DualSRTSubtitlePolicy {
	case DualSRTPreferDisplay, DualSRTPreferRebalance:
	default:
		return fmt.Errorf("dual_srt_subtitle_policy: unsupported value %q", c.DualSRTSubtitlePolicy)
	}
	if c.FFmpegBinary == "" {
		return errors.New("ffmpeg_binary must be set")
	}
	if c.FFprobeBinary == "" {
		return errors.New("ffprobe_binary must be set")
	}
	if c.TTSCacheDir == "" {
		return errors.New("tts_cache_dir must be set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
