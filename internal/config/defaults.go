package config

const (
	defaultLogDir         = "~/.local/share/chronicle/logs"
	defaultSpoolDir       = "~/.local/share/chronicle/spool"
	defaultStateDir       = "~/.local/share/chronicle/state"
	defaultBaseName       = "chronicle"
	defaultLogLevel       = "information"
	defaultMaxLogSizeMB   = 10
	defaultMaxLogFiles    = 5
	defaultSiemType       = "generic"
	defaultSiemTimeout    = 10
	defaultEventSource    = "chronicle"
	defaultDiagFormat     = "console"
	defaultDiagLevel      = "info"
	defaultMaxDiagRecords = 2000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			SpoolDir: defaultSpoolDir,
			StateDir: defaultStateDir,
		},
		Pipeline: Pipeline{
			LogLevel:     defaultLogLevel,
			BaseName:     defaultBaseName,
			MaxLogSizeMB: defaultMaxLogSizeMB,
			MaxLogFiles:  defaultMaxLogFiles,
			FileSink:     true,
			EventSink:    false,
			SiemSink:     false,
		},
		Siem: Siem{
			Type:           defaultSiemType,
			RequestTimeout: defaultSiemTimeout,
		},
		Event: Event{
			Source: defaultEventSource,
		},
		Logging: Logging{
			Format: defaultDiagFormat,
			Level:  defaultDiagLevel,
		},
		Diagnostics: Diagnostics{
			MaxRecords: defaultMaxDiagRecords,
		},
	}
}
