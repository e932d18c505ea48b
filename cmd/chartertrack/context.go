package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"chartertrack/internal/config"
	"chartertrack/internal/logging"
	"chartertrack/internal/services/azure"
	"chartertrack/internal/services/localdir"
	"chartertrack/internal/store"
	"chartertrack/internal/tracker"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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

// withStore opens the tracking database for the duration of one command.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

// newLogger builds the command logger; verbose forces debug level.
func (c *commandContext) newLogger(verbose bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if verbose {
		adjusted := *cfg
		adjusted.Logging.Level = "debug"
		return logging.NewFromConfig(&adjusted)
	}
	return logging.NewFromConfig(cfg)
}

// backupSource builds the configured backup source. A non-empty override
// replaces the configured backups.source for this command invocation.
func backupSource(cfg *config.Config, logger *slog.Logger, override string) (tracker.BackupSource, error) {
	source := cfg.Backups.Source
	if override != "" {
		source = override
	}
	switch source {
	case config.SourceAzure:
		return azure.NewClient(cfg, logger)
	case config.SourceLocal:
		return localdir.New(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown backup source %q (expected %q or %q)", source, config.SourceAzure, config.SourceLocal)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
