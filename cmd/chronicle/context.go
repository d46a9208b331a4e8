package main

import (
	"log/slog"
	"strings"
	"sync"

	"chronicle/internal/config"
	"chronicle/internal/diag"
	"chronicle/internal/logging"
	"chronicle/internal/pipeline"
)

// commandContext lazily loads the config and wires the pipeline for
// subcommands. Construction happens at most once per invocation.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	pipeOnce  sync.Once
	pipe      *pipeline.Pipeline
	diagStore *diag.Store
	pipeErr   error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensurePipeline builds the pipeline with the diagnostics journal attached
// and adopts any session persisted by a previous invocation.
func (c *commandContext) ensurePipeline() (*pipeline.Pipeline, error) {
	c.pipeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.pipeErr = err
			return
		}

		logger, err := c.buildLogger(cfg)
		if err != nil {
			c.pipeErr = err
			return
		}

		// A broken journal must not block emission; fall back to counters only.
		store, storeErr := diag.OpenStore(cfg.DiagnosticsDBPath(), cfg.Diagnostics.MaxRecords)
		if storeErr != nil {
			logger.Warn("diagnostics journal unavailable",
				logging.Args(logging.Error(storeErr))...)
			store = nil
		}
		c.diagStore = store

		pipe, err := pipeline.New(cfg, logger,
			pipeline.WithDiagnostics(diag.NewRecorder(logger, store)),
		)
		if err != nil {
			c.pipeErr = err
			return
		}

		if session, ok, err := loadSessionState(cfg.SessionStatePath()); err == nil && ok {
			pipe.AdoptSession(session)
		}
		c.pipe = pipe
	})
	return c.pipe, c.pipeErr
}

func (c *commandContext) buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}
