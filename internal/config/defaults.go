package config

const (
	defaultConfigPath     = "~/.config/intake/config.toml"
	defaultUnprocessedDir = "~/.local/share/intake/unprocessed"
	defaultProcessedDir   = "~/.local/share/intake/processed"
	defaultErrorDir       = "~/.local/share/intake/error"
	defaultLogDir         = "~/.local/share/intake/logs"
	defaultFormat         = "auto"
	defaultCSVDelimiter   = ","
	defaultCSVEncoding    = "utf-8"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultRetentionDays  = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UnprocessedDir: defaultUnprocessedDir,
			ProcessedDir:   defaultProcessedDir,
			ErrorDir:       defaultErrorDir,
			LogDir:         defaultLogDir,
		},
		Processing: Processing{
			DefaultFormat: defaultFormat,
			CSVDelimiter:  defaultCSVDelimiter,
			CSVEncoding:   defaultCSVEncoding,
			CSVHasHeader:  true,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}
