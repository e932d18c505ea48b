package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultSource          = SourceAzure
	defaultFrequency       = 7
	defaultCharterBasePath = "db/mom-data/metadata.charter.public"
	defaultDownloadRetries = 3
	defaultDBPath          = "~/.local/share/chartertrack/chartertrack.db"
	defaultBatchSize       = 900
	defaultReportsDir      = "~/.local/share/chartertrack/reports"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Backups: Backups{
			Source:          defaultSource,
			CacheDir:        defaultCacheDir(),
			Frequency:       defaultFrequency,
			CharterBasePath: defaultCharterBasePath,
			DownloadRetries: defaultDownloadRetries,
		},
		Store: Store{
			DBPath:    defaultDBPath,
			BatchSize: defaultBatchSize,
		},
		Reports: Reports{
			Dir: defaultReportsDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "chartertrack", "backups")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/chartertrack/backups"
	}
	return filepath.Join(home, ".cache", "chartertrack", "backups")
}
