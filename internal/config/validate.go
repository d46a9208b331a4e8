package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"chronicle/internal/entry"
	"chronicle/internal/siem"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateSiem(); err != nil {
		return err
	}
	if c.Diagnostics.MaxRecords < 0 {
		return errors.New("diagnostics.max_records must not be negative")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.SpoolDir) == "" {
		return errors.New("paths.spool_dir must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if _, err := entry.ParseLevel(c.Pipeline.LogLevel); err != nil {
		return fmt.Errorf("pipeline.log_level: %w", err)
	}
	if c.Pipeline.MaxLogSizeMB <= 0 {
		return errors.New("pipeline.max_log_size_mb must be positive")
	}
	if c.Pipeline.MaxLogFiles <= 0 {
		return errors.New("pipeline.max_log_files must be positive")
	}
	return nil
}

func (c *Config) validateSiem() error {
	if _, err := siem.ParseEnvelopeType(c.Siem.Type); err != nil {
		return fmt.Errorf("siem.type: %w", err)
	}
	if c.Siem.RequestTimeout <= 0 {
		return errors.New("siem.request_timeout must be positive (seconds)")
	}
	if !c.Pipeline.SiemSink {
		return nil
	}
	if c.Siem.Endpoint == "" {
		return errors.New("siem.endpoint must be set when pipeline.siem_sink is true")
	}
	parsed, err := url.Parse(c.Siem.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("siem.endpoint %q is not a valid URL", c.Siem.Endpoint)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("siem.endpoint scheme %q is not supported", parsed.Scheme)
	}
	return nil
}
