package config

const (
	defaultWorkDir        = "~/.local/share/mixdown/work"
	defaultLogDir         = "~/.local/share/mixdown/logs"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultTimeoutSeconds = 600
	defaultConcurrency    = 4
	defaultLedgerEnabled  = true
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Engine: Engine{
			FFmpeg:         defaultFFmpegBinary,
			FFprobe:        defaultFFprobeBinary,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Compositor: Compositor{
			Concurrency: defaultConcurrency,
		},
		Ledger: Ledger{
			Enabled: defaultLedgerEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
