package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackups(); err != nil {
		return err
	}
	if err := c.validateAzure(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBackups() error {
	switch c.Backups.Source {
	case SourceAzure, SourceLocal:
	default:
		return fmt.Errorf("backups.source must be %q or %q, got %q", SourceAzure, SourceLocal, c.Backups.Source)
	}
	if c.Backups.Source == SourceLocal && c.Backups.LocalDir == "" {
		return errors.New("backups.local_dir must be set when backups.source is local")
	}
	if c.Backups.CharterBasePath == "" {
		return errors.New("backups.charter_base_path must be set")
	}
	return nil
}

func (c *Config) validateAzure() error {
	if c.Backups.Source != SourceAzure {
		return nil
	}
	if c.Azure.ContainerSASURL != "" {
		return nil
	}
	if c.Azure.ConnectionString != "" && c.Azure.ContainerName != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/chartertrack/config.toml"
	}
	return fmt.Errorf("azure credentials are required: set azure.container_sas_url (or azure.connection_string plus azure.container_name), the AZURE_CONTAINER_SAS_URL / AZURE_STORAGE_CONNECTION_STRING env vars, or edit %s (create with 'chartertrack config init')", defaultPath)
}

func (c *Config) validateStore() error {
	if c.Store.BatchSize <= 0 {
		return errors.New("store.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
