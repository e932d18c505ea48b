package testsupport

import (
	"path/filepath"
	"testing"

	"chartertrack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to a local backup source rooted in the temp tree and applies
// any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Backups.Source = config.SourceLocal
	cfgVal.Backups.LocalDir = filepath.Join(base, "backups")
	cfgVal.Backups.CacheDir = filepath.Join(base, "cache")
	cfgVal.Backups.Frequency = 1
	cfgVal.Store.DBPath = filepath.Join(base, "chartertrack.db")
	cfgVal.Reports.Dir = filepath.Join(base, "reports")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCharterBasePath overrides the tracked collection path.
func WithCharterBasePath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backups.CharterBasePath = path
	}
}

// WithBatchSize overrides the store batch size, letting tests exercise
// chunked statements with small row counts.
func WithBatchSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.BatchSize = size
	}
}

// WithFrequency overrides the backup sampling frequency.
func WithFrequency(frequency int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backups.Frequency = frequency
	}
}

// WithIgnoredParents sets the parent paths excluded from reports.
func WithIgnoredParents(parents ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reports.IgnoredParentPaths = parents
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Store.DBPath)
}
