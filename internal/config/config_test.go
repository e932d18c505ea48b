package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chartertrack/internal/config"
)

func TestLoadDefaultsWithEnvCredentials(t *testing.T) {
	t.Setenv("AZURE_CONTAINER_SAS_URL", "https://acct.blob.core.windows.net/backups?sig=test")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Backups.Source != config.SourceAzure {
		t.Fatalf("unexpected default source: %q", cfg.Backups.Source)
	}
	if cfg.Azure.ContainerSASURL == "" {
		t.Fatal("expected SAS URL from env")
	}
	if cfg.Backups.Frequency != 7 {
		t.Fatalf("unexpected default frequency: %d", cfg.Backups.Frequency)
	}
	if cfg.Backups.CharterBasePath != "db/mom-data/metadata.charter.public" {
		t.Fatalf("unexpected base path: %q", cfg.Backups.CharterBasePath)
	}
	if cfg.Store.BatchSize != 900 {
		t.Fatalf("unexpected batch size: %d", cfg.Store.BatchSize)
	}
	wantDB := filepath.Join(tempHome, ".local", "share", "chartertrack", "chartertrack.db")
	if cfg.Store.DBPath != wantDB {
		t.Fatalf("unexpected db path: got %q want %q", cfg.Store.DBPath, wantDB)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Backups.CacheDir, cfg.Reports.Dir, filepath.Dir(cfg.Store.DBPath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chartertrack.toml")

	content := strings.Join([]string{
		"[backups]",
		`source = "local"`,
		`local_dir = "` + tempDir + `"`,
		"frequency = 3",
		"",
		"[store]",
		"batch_size = 250",
		"",
		"[reports]",
		`ignored_parent_paths = ["/Test-Collection/", "  ", "Another"]`,
	}, "\n")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Backups.Source != config.SourceLocal {
		t.Fatalf("unexpected source: %q", cfg.Backups.Source)
	}
	if cfg.Backups.LocalDir != tempDir {
		t.Fatalf("unexpected local dir: %q", cfg.Backups.LocalDir)
	}
	if cfg.Backups.Frequency != 3 {
		t.Fatalf("unexpected frequency: %d", cfg.Backups.Frequency)
	}
	if cfg.Store.BatchSize != 250 {
		t.Fatalf("unexpected batch size: %d", cfg.Store.BatchSize)
	}

	want := []string{"Test-Collection", "Another"}
	if len(cfg.Reports.IgnoredParentPaths) != len(want) {
		t.Fatalf("unexpected ignored parents: %v", cfg.Reports.IgnoredParentPaths)
	}
	for i, p := range want {
		if cfg.Reports.IgnoredParentPaths[i] != p {
			t.Fatalf("ignored parent[%d] = %q, want %q", i, cfg.Reports.IgnoredParentPaths[i], p)
		}
	}
}

func TestLoadRejectsMissingAzureCredentials(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("AZURE_CONTAINER_SAS_URL", "")
	t.Setenv("AZURE_STORAGE_CONNECTION_STRING", "")
	t.Setenv("AZURE_CONTAINER_NAME", "")

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected validation error for missing azure credentials")
	}
	if !strings.Contains(err.Error(), "azure") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsLocalSourceWithoutDir(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chartertrack.toml")
	if err := os.WriteFile(configPath, []byte("[backups]\nsource = \"local\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected validation error for missing local_dir")
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chartertrack.toml")
	content := "[backups]\nsource = \"local\"\nlocal_dir = \"" + tempDir + "\"\n\n[logging]\nformat = \"xml\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected validation error for unknown log format")
	}
}

func TestCreateSample(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, fragment := range []string{"[azure]", "[backups]", "charter_base_path", "[logging]"} {
		if !strings.Contains(string(content), fragment) {
			t.Fatalf("sample config missing %q", fragment)
		}
	}
}
