package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAzure()
	if err := c.normalizeBackups(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeReports(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeAzure() {
	c.Azure.ContainerSASURL = strings.TrimSpace(c.Azure.ContainerSASURL)
	c.Azure.ConnectionString = strings.TrimSpace(c.Azure.ConnectionString)
	c.Azure.ContainerName = strings.TrimSpace(c.Azure.ContainerName)

	if c.Azure.ContainerSASURL == "" {
		if env, ok := os.LookupEnv("AZURE_CONTAINER_SAS_URL"); ok {
			c.Azure.ContainerSASURL = strings.TrimSpace(env)
		}
	}
	if c.Azure.ConnectionString == "" {
		if env, ok := os.LookupEnv("AZURE_STORAGE_CONNECTION_STRING"); ok {
			c.Azure.ConnectionString = strings.TrimSpace(env)
		}
	}
	if c.Azure.ContainerName == "" {
		if env, ok := os.LookupEnv("AZURE_CONTAINER_NAME"); ok {
			c.Azure.ContainerName = strings.TrimSpace(env)
		}
	}
}

func (c *Config) normalizeBackups() error {
	c.Backups.Source = strings.ToLower(strings.TrimSpace(c.Backups.Source))
	if c.Backups.Source == "" {
		c.Backups.Source = defaultSource
	}

	var err error
	if strings.TrimSpace(c.Backups.LocalDir) != "" {
		if c.Backups.LocalDir, err = expandPath(c.Backups.LocalDir); err != nil {
			return fmt.Errorf("backups.local_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Backups.CacheDir) == "" {
		c.Backups.CacheDir = defaultCacheDir()
	}
	if c.Backups.CacheDir, err = expandPath(c.Backups.CacheDir); err != nil {
		return fmt.Errorf("backups.cache_dir: %w", err)
	}

	if c.Backups.Frequency <= 0 {
		c.Backups.Frequency = defaultFrequency
	}
	if c.Backups.DownloadRetries <= 0 {
		c.Backups.DownloadRetries = defaultDownloadRetries
	}

	c.Backups.CharterBasePath = strings.Trim(strings.TrimSpace(c.Backups.CharterBasePath), "/")
	if c.Backups.CharterBasePath == "" {
		c.Backups.CharterBasePath = defaultCharterBasePath
	}
	return nil
}

func (c *Config) normalizeStore() error {
	if strings.TrimSpace(c.Store.DBPath) == "" {
		c.Store.DBPath = defaultDBPath
	}
	var err error
	if c.Store.DBPath, err = expandPath(c.Store.DBPath); err != nil {
		return fmt.Errorf("store.db_path: %w", err)
	}
	if c.Store.BatchSize <= 0 {
		c.Store.BatchSize = defaultBatchSize
	}
	return nil
}

func (c *Config) normalizeReports() error {
	if strings.TrimSpace(c.Reports.Dir) == "" {
		c.Reports.Dir = defaultReportsDir
	}
	var err error
	if c.Reports.Dir, err = expandPath(c.Reports.Dir); err != nil {
		return fmt.Errorf("reports.dir: %w", err)
	}

	cleaned := make([]string, 0, len(c.Reports.IgnoredParentPaths))
	for _, p := range c.Reports.IgnoredParentPaths {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		cleaned = append(cleaned, p)
	}
	c.Reports.IgnoredParentPaths = cleaned
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		var err error
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
