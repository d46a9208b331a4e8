// Package testsupport provides shared helpers for package tests: configs
// seeded with per-test temp directories and small filesystem utilities.
package testsupport

import (
	"path/filepath"
	"testing"

	"chronicle/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SpoolDir = filepath.Join(base, "spool")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Pipeline.MaxLogSizeMB = 1
	cfg.Pipeline.MaxLogFiles = 3

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithLogLevel sets the pipeline threshold on the test config.
func WithLogLevel(level string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.LogLevel = level
	}
}

// WithSiem enables the SIEM sink pointed at endpoint.
func WithSiem(endpoint, envelopeType string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.SiemSink = true
		cfg.Siem.Endpoint = endpoint
		cfg.Siem.Type = envelopeType
	}
}
