package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeSiem()
	c.normalizeEvent()
	c.normalizeLogging()
	if c.Diagnostics.MaxRecords == 0 {
		c.Diagnostics.MaxRecords = defaultMaxDiagRecords
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SpoolDir) == "" {
		c.Paths.SpoolDir = defaultSpoolDir
	}
	if c.Paths.SpoolDir, err = expandPath(c.Paths.SpoolDir); err != nil {
		return fmt.Errorf("paths.spool_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	c.Pipeline.LogLevel = strings.TrimSpace(c.Pipeline.LogLevel)
	if c.Pipeline.LogLevel == "" {
		c.Pipeline.LogLevel = defaultLogLevel
	}
	c.Pipeline.BaseName = strings.TrimSpace(c.Pipeline.BaseName)
	if c.Pipeline.BaseName == "" {
		c.Pipeline.BaseName = defaultBaseName
	}
	if c.Pipeline.MaxLogSizeMB == 0 {
		c.Pipeline.MaxLogSizeMB = defaultMaxLogSizeMB
	}
	if c.Pipeline.MaxLogFiles == 0 {
		c.Pipeline.MaxLogFiles = defaultMaxLogFiles
	}
}

func (c *Config) normalizeSiem() {
	c.Siem.Endpoint = strings.TrimSpace(c.Siem.Endpoint)
	if c.Siem.Token == "" {
		if value, ok := os.LookupEnv("CHRONICLE_SIEM_TOKEN"); ok {
			c.Siem.Token = value
		}
	}
	c.Siem.Type = strings.ToLower(strings.TrimSpace(c.Siem.Type))
	if c.Siem.Type == "" {
		c.Siem.Type = defaultSiemType
	}
	if c.Siem.RequestTimeout == 0 {
		c.Siem.RequestTimeout = defaultSiemTimeout
	}
}

func (c *Config) normalizeEvent() {
	c.Event.Source = strings.TrimSpace(c.Event.Source)
	if c.Event.Source == "" {
		c.Event.Source = defaultEventSource
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultDiagFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultDiagLevel
	}
}
