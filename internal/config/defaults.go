package config

const (
	defaultTargetCPM                     = 180.0
	defaultPanicCPM                      = 300.0
	defaultMaxShiftMS                    = 1000
	defaultGapThresholdMS                = 100
	defaultConcurrency                   = 4
	defaultRetryAttempts                 = 3
	defaultRequestTimeoutSeconds         = 180
	defaultMaxChars                      = 250
	defaultMaxCharsModeB                 = 100
	defaultMaxDurationMS                 = 15000
	defaultMaxDurationMSModeB            = 6000
	defaultOnsetToleranceMS              = 180
	defaultOnsetSearchMS                 = 500
	defaultSampleRateHz                  = 24000
	defaultFFmpegBinary                  = "ffmpeg"
	defaultFFprobeBinary                 = "ffprobe"
	defaultTTSCacheDir                   = "~/.cache/redub/tts"
	defaultDualSRTSubtitlePolicy         = DualSRTPreferDisplay
	defaultLengthLimitedBackendThreshold = 75
	defaultLogDir                        = "~/.local/share/redub/logs"
	defaultLogFormat                     = "console"
	defaultLogLevel                      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		TargetCPM:                     defaultTargetCPM,
		MaxShiftMS:                    defaultMaxShiftMS,
		PanicCPM:                      defaultPanicCPM,
		GapThresholdMS:                defaultGapThresholdMS,
		Concurrency:                   defaultConcurrency,
		RetryAttempts:                 defaultRetryAttempts,
		RequestTimeoutSeconds:         defaultRequestTimeoutSeconds,
		MaxChars:                      defaultMaxChars,
		MaxCharsModeB:                 defaultMaxCharsModeB,
		MaxDurationMS:                 defaultMaxDurationMS,
		MaxDurationMSModeB:            defaultMaxDurationMSModeB,
		OnsetToleranceMS:              defaultOnsetToleranceMS,
		OnsetSearchMS:                 defaultOnsetSearchMS,
		SampleRateHz:                  defaultSampleRateHz,
		FFmpegBinary:                  defaultFFmpegBinary,
		FFprobeBinary:                 defaultFFprobeBinary,
		TTSCacheDir:                   defaultTTSCacheDir,
		DualSRTSubtitlePolicy:         defaultDualSRTSubtitlePolicy,
		LengthLimitedBackendThreshold: defaultLengthLimitedBackendThreshold,
		LogDir:                        defaultLogDir,
		LogFormat:                     defaultLogFormat,
		LogLevel:                      defaultLogLevel,
	}
}
