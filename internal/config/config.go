package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	SpoolDir string `toml:"spool_dir"`
	StateDir string `toml:"state_dir"`
}

// Pipeline contains the initial runtime settings for the emission pipeline.
// These seed the pipeline's configuration store; the Configure operation can
// change them at runtime without touching this file.
type Pipeline struct {
	LogLevel     string `toml:"log_level"`
	BaseName     string `toml:"base_name"`
	MaxLogSizeMB int    `toml:"max_log_size_mb"`
	MaxLogFiles  int    `toml:"max_log_files"`
	FileSink     bool   `toml:"file_sink"`
	EventSink    bool   `toml:"event_sink"`
	SiemSink     bool   `toml:"siem_sink"`
}

// Siem contains the remote collector connection settings.
type Siem struct {
	Endpoint       string `toml:"endpoint"`
	Token          string `toml:"token"`
	Type           string `toml:"type"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Event contains settings for the OS event sink.
type Event struct {
	Source string `toml:"source"`
}

// Logging contains settings for chronicle's own diagnostic output, not the
// entries flowing through the pipeline.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Diagnostics contains settings for the degraded-path journal.
type Diagnostics struct {
	MaxRecords int `toml:"max_records"`
}

// Config is the root configuration document.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Pipeline    Pipeline    `toml:"pipeline"`
	Siem        Siem        `toml:"siem"`
	Event       Event       `toml:"event"`
	Logging     Logging     `toml:"logging"`
	Diagnostics Diagnostics `toml:"diagnostics"`
}

// DefaultConfigPath returns the expanded default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chronicle/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists the
// defaults are returned; the boolean reports whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chronicle.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log, spool, and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.SpoolDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SessionStatePath returns the location of the persisted active-session
// descriptor shared by consecutive CLI invocations.
func (c *Config) SessionStatePath() string {
	return filepath.Join(c.Paths.StateDir, "session.json")
}

// DiagnosticsDBPath returns the location of the degraded-path journal.
func (c *Config) DiagnosticsDBPath() string {
	return filepath.Join(c.Paths.StateDir, "diagnostics.db")
}

// FallbackPath returns the fixed last-resort diagnostics file, deliberately
// outside the rotation scheme.
func (c *Config) FallbackPath() string {
	return filepath.Join(c.Paths.LogDir, "fallback.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
