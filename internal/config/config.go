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

// Azure contains credentials for the Azure Blob Storage backup container.
// Either a container SAS URL or a connection string plus container name
// must be supplied when the azure source is selected.
type Azure struct {
	ContainerSASURL  string `toml:"container_sas_url"`
	ConnectionString string `toml:"connection_string"`
	ContainerName    string `toml:"container_name"`
}

// Backups contains configuration for locating and selecting full backups.
type Backups struct {
	Source          string `toml:"source"`
	LocalDir        string `toml:"local_dir"`
	CacheDir        string `toml:"cache_dir"`
	Frequency       int    `toml:"frequency"`
	CharterBasePath string `toml:"charter_base_path"`
	DownloadRetries int    `toml:"download_retries"`
}

// Store contains configuration for the tracking database.
type Store struct {
	DBPath    string `toml:"db_path"`
	BatchSize int    `toml:"batch_size"`
}

// Reports contains configuration for report output.
type Reports struct {
	Dir                string   `toml:"dir"`
	IgnoredParentPaths []string `toml:"ignored_parent_paths"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for chartertrack.
//
// Configuration sections by subsystem:
//   - Azure: Blob Storage credentials for the backup container
//   - Backups: backup source selection, download cache, sampling frequency,
//     and the tracked charter collection path
//   - Store: SQLite database location and batch sizing
//   - Reports: report directory and parent paths excluded from reports
//   - Logging: log format, level, and optional log directory
type Config struct {
	Azure   Azure   `toml:"azure"`
	Backups Backups `toml:"backups"`
	Store   Store   `toml:"store"`
	Reports Reports `toml:"reports"`
	Logging Logging `toml:"logging"`
}

// Source names accepted by backups.source.
const (
	SourceAzure = "azure"
	SourceLocal = "local"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chartertrack/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
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

	projectPath, err := filepath.Abs("chartertrack.toml")
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

// EnsureDirectories creates the directories chartertrack writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Backups.CacheDir,
		c.Reports.Dir,
		filepath.Dir(c.Store.DBPath),
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// UseAzureSource reports whether backups are fetched from Azure Blob Storage.
func (c *Config) UseAzureSource() bool {
	return c.Backups.Source == SourceAzure
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
