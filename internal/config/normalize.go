package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.TTSCacheDir) == "" {
		c.TTSCacheDir = defaultTTSCacheDir
	}
	if c.TTSCacheDir, err = expandPath(c.TTSCacheDir); err != nil {
		return fmt.Errorf("tts_cache_dir: %w", err)
	}
	if strings.TrimSpace(c.LogDir) == "" {
		c.LogDir = defaultLogDir
	}
	if c.LogDir, err = expandPath(c.LogDir); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}

	c.FFmpegBinary = strings.TrimSpace(c.FFmpegBinary)
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = defaultFFmpegBinary
	}
	c.FFprobeBinary = strings.TrimSpace(c.FFprobeBinary)
	if c.FFprobeBinary == "" {
		c.FFprobeBinary = defaultFFprobeBinary
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "":
		c.LogFormat = defaultLogFormat
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unsupported value %q", c.LogFormat)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	c.DualSRTSubtitlePolicy = strings.ToLower(strings.TrimSpace(c.DualSRTSubtitlePolicy))
	if c.DualSRTSubtitlePolicy == "" {
		c.DualSRTSubtitlePolicy = defaultDualSRTSubtitlePolicy
	}

	c.SubtitleLanguage = strings.TrimSpace(c.SubtitleLanguage)

	if c.SampleRateHz <= 0 {
		c.SampleRateHz = defaultSampleRateHz
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = defaultRetryAttempts
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.LengthLimitedBackendThreshold <= 0 {
		c.LengthLimitedBackendThreshold = defaultLengthLimitedBackendThreshold
	}

	return nil
}
