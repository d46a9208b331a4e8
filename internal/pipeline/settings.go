package pipeline

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"chronicle/internal/config"
	"chronicle/internal/entry"
	"chronicle/internal/siem"
)

// Settings is the pipeline's runtime configuration. A value copy is taken
// once per Emit call so a concurrent Configure can never leave a sink seeing
// half-applied settings.
type Settings struct {
	LogDir       string
	BaseName     string
	LogLevel     entry.Level
	MaxLogSizeMB int
	MaxLogFiles  int

	EnableFileSink  bool
	EnableEventSink bool
	EnableSiem      bool

	SiemEndpoint string
	SiemToken    string
	SiemType     siem.EnvelopeType
	SiemTimeout  time.Duration

	EventSource  string
	SpoolDir     string
	FallbackPath string
}

// Options is a partial update for Configure. Nil fields are left unchanged.
type Options struct {
	LogPath         *string
	LogLevel        *entry.Level
	MaxLogSizeMB    *int
	MaxLogFiles     *int
	EnableFileSink  *bool
	EnableEventSink *bool
	EnableSiem      *bool
	SiemEndpoint    *string
	SiemToken       *string
	SiemType        *string
}

// ConfigError reports an invalid Configure option. It is the only error class
// that crosses the pipeline's public boundary.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// settingsFromConfig seeds runtime settings from the loaded config file.
// The config package has already validated these values.
func settingsFromConfig(cfg *config.Config) Settings {
	level, err := entry.ParseLevel(cfg.Pipeline.LogLevel)
	if err != nil {
		level = entry.LevelInformation
	}
	envelope, err := siem.ParseEnvelopeType(cfg.Siem.Type)
	if err != nil {
		envelope = siem.EnvelopeGeneric
	}
	return Settings{
		LogDir:          cfg.Paths.LogDir,
		BaseName:        cfg.Pipeline.BaseName,
		LogLevel:        level,
		MaxLogSizeMB:    cfg.Pipeline.MaxLogSizeMB,
		MaxLogFiles:     cfg.Pipeline.MaxLogFiles,
		EnableFileSink:  cfg.Pipeline.FileSink,
		EnableEventSink: cfg.Pipeline.EventSink,
		EnableSiem:      cfg.Pipeline.SiemSink,
		SiemEndpoint:    cfg.Siem.Endpoint,
		SiemToken:       cfg.Siem.Token,
		SiemType:        envelope,
		SiemTimeout:     time.Duration(cfg.Siem.RequestTimeout) * time.Second,
		EventSource:     cfg.Event.Source,
		SpoolDir:        cfg.Paths.SpoolDir,
		FallbackPath:    cfg.FallbackPath(),
	}
}

// apply overlays the present option fields onto a copy of s and validates
// the result. The receiver is never mutated.
func (s Settings) apply(opts Options) (Settings, error) {
	next := s
	if opts.LogPath != nil {
		next.LogDir = strings.TrimSpace(*opts.LogPath)
	}
	if opts.LogLevel != nil {
		next.LogLevel = *opts.LogLevel
	}
	if opts.MaxLogSizeMB != nil {
		next.MaxLogSizeMB = *opts.MaxLogSizeMB
	}
	if opts.MaxLogFiles != nil {
		next.MaxLogFiles = *opts.MaxLogFiles
	}
	if opts.EnableFileSink != nil {
		next.EnableFileSink = *opts.EnableFileSink
	}
	if opts.EnableEventSink != nil {
		next.EnableEventSink = *opts.EnableEventSink
	}
	if opts.EnableSiem != nil {
		next.EnableSiem = *opts.EnableSiem
	}
	if opts.SiemEndpoint != nil {
		next.SiemEndpoint = strings.TrimSpace(*opts.SiemEndpoint)
	}
	if opts.SiemToken != nil {
		next.SiemToken = *opts.SiemToken
	}
	if opts.SiemType != nil {
		envelope, err := siem.ParseEnvelopeType(*opts.SiemType)
		if err != nil {
			return s, &ConfigError{Field: "SiemType", Reason: err.Error()}
		}
		next.SiemType = envelope
	}
	if err := next.validate(); err != nil {
		return s, err
	}
	return next, nil
}

func (s Settings) validate() error {
	if strings.TrimSpace(s.LogDir) == "" {
		return &ConfigError{Field: "LogPath", Reason: "must not be empty"}
	}
	if !s.LogLevel.Valid() {
		return &ConfigError{Field: "LogLevel", Reason: fmt.Sprintf("%d is not a defined level", int(s.LogLevel))}
	}
	if s.MaxLogSizeMB <= 0 {
		return &ConfigError{Field: "MaxLogSizeMB", Reason: "must be positive"}
	}
	if s.MaxLogFiles <= 0 {
		return &ConfigError{Field: "MaxLogFiles", Reason: "must be positive"}
	}
	if s.EnableSiem {
		if s.SiemEndpoint == "" {
			return &ConfigError{Field: "SiemEndpoint", Reason: "required when the SIEM sink is enabled"}
		}
		parsed, err := url.Parse(s.SiemEndpoint)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return &ConfigError{Field: "SiemEndpoint", Reason: "not a valid URL"}
		}
		if parsed.Scheme != "https" && parsed.Scheme != "http" {
			return &ConfigError{Field: "SiemEndpoint", Reason: fmt.Sprintf("scheme %q is not supported", parsed.Scheme)}
		}
	}
	return nil
}

// maxBytes converts the configured megabyte threshold for the rotation check.
func (s Settings) maxBytes() int64 {
	return int64(s.MaxLogSizeMB) * 1024 * 1024
}
