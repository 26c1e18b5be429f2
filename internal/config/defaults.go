package config

const (
	defaultStagingDir     = "~/.local/share/bookforge/staging"
	defaultLogDir         = "~/.local/share/bookforge/logs"
	defaultBitrateCapKbps = 192
	defaultSampleRate     = 44100
	defaultChannels       = 2
	defaultTargetPartMB   = 500
	defaultFFmpeg         = "ffmpeg"
	defaultFFprobe        = "ffprobe"
	defaultToolTimeout    = 3600
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Encoding: Encoding{
			BitrateCapKbps: defaultBitrateCapKbps,
			SampleRate:     defaultSampleRate,
			Channels:       defaultChannels,
			TargetPartMB:   defaultTargetPartMB,
		},
		Tools: Tools{
			FFmpeg:         defaultFFmpeg,
			FFprobe:        defaultFFprobe,
			TimeoutSeconds: defaultToolTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
