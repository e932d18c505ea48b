package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"chartertrack/internal/config"
	"chartertrack/internal/testsupport"
)

const basePath = "db/mom-data/metadata.charter.public"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	backupsDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithCharterBasePath(basePath))
	cfg.Logging.Level = "error"

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	if err := os.MkdirAll(cfg.Backups.LocalDir, 0o755); err != nil {
		t.Fatalf("create backups dir: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		backupsDir: cfg.Backups.LocalDir,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeBackup(t *testing.T, dir, filename string, charters ...string) {
	t.Helper()
	files := []testsupport.ArchiveFile{
		{Name: basePath + "/AT-One/__contents__.xml", Body: testsupport.ManifestXML("/"+basePath+"/AT-One", charters...)},
	}
	for _, name := range charters {
		files = append(files, testsupport.ArchiveFile{
			Name: basePath + "/AT-One/" + name,
			Body: testsupport.CharterXML(name),
		})
	}
	testsupport.WriteBackupArchive(t, filepath.Join(dir, filename), files)
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLISyncStatsAndReports(t *testing.T) {
	env := setupCLITestEnv(t)

	writeBackup(t, env.backupsDir, "full20240101-0230.zip", "a.xml", "b.xml")
	writeBackup(t, env.backupsDir, "full20240108-0230.zip", "a.xml")

	stdout, _, err := runCLI(t, env.configPath, "sync")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !strings.Contains(stdout, "Processed 2 of 2") {
		t.Fatalf("unexpected sync output:\n%s", stdout)
	}

	// Second run is idle: both backups are already processed.
	stdout, _, err = runCLI(t, env.configPath, "sync")
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if !strings.Contains(stdout, "Nothing to do") {
		t.Fatalf("expected idle second run, got:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, env.configPath, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(stdout, "Currently missing") {
		t.Fatalf("unexpected stats output:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, env.configPath, "report")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.Contains(stdout, "b.xml") || !strings.Contains(stdout, "full20240101-0230.zip") {
		t.Fatalf("report should list b.xml with its last-seen backup:\n%s", stdout)
	}

	csvPath := filepath.Join(testsupport.BaseDir(env.cfg), "missing.csv")
	if _, _, err := runCLI(t, env.configPath, "report", "--output", csvPath); err != nil {
		t.Fatalf("report --output failed: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read report CSV: %v", err)
	}
	if !strings.Contains(string(data), "b.xml") {
		t.Fatalf("CSV report missing b.xml:\n%s", data)
	}

	stdout, _, err = runCLI(t, env.configPath, "parent-report")
	if err != nil {
		t.Fatalf("parent-report failed: %v", err)
	}
	if !strings.Contains(stdout, "AT-One") {
		t.Fatalf("parent-report should aggregate under AT-One:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, env.configPath, "backups")
	if err != nil {
		t.Fatalf("backups failed: %v", err)
	}
	if !strings.Contains(stdout, "full20240108-0230.zip") {
		t.Fatalf("backups should list both archives:\n%s", stdout)
	}
}

func TestCLIExtractMissing(t *testing.T) {
	env := setupCLITestEnv(t)

	writeBackup(t, env.backupsDir, "full20240101-0230.zip", "a.xml", "b.xml")
	writeBackup(t, env.backupsDir, "full20240108-0230.zip", "a.xml")

	if _, _, err := runCLI(t, env.configPath, "sync"); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	outputPath := filepath.Join(testsupport.BaseDir(env.cfg), "recovery.zip")
	stdout, _, err := runCLI(t, env.configPath, "extract-missing", "--output", outputPath)
	if err != nil {
		t.Fatalf("extract-missing failed: %v", err)
	}
	if !strings.Contains(stdout, "Extracted 1 of 1") {
		t.Fatalf("unexpected extract output:\n%s", stdout)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("open recovery archive: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != 1 || reader.File[0].Name != basePath+"/AT-One/b.xml" {
		t.Fatalf("unexpected recovery contents: %v", reader.File)
	}
}

func TestCLIReset(t *testing.T) {
	env := setupCLITestEnv(t)

	writeBackup(t, env.backupsDir, "full20240101-0230.zip", "a.xml")
	if _, _, err := runCLI(t, env.configPath, "sync"); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if _, _, err := runCLI(t, env.configPath, "reset", "--force"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	stdout, _, err := runCLI(t, env.configPath, "backups")
	if err != nil {
		t.Fatalf("backups failed: %v", err)
	}
	if !strings.Contains(stdout, "No backups recorded") {
		t.Fatalf("expected empty state after reset:\n%s", stdout)
	}
}

func TestCLICacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.configPath, "cache", "list")
	if err != nil {
		t.Fatalf("cache list failed: %v", err)
	}
	if !strings.Contains(stdout, "Cache is empty") {
		t.Fatalf("expected empty cache:\n%s", stdout)
	}

	if err := os.MkdirAll(env.cfg.Backups.CacheDir, 0o755); err != nil {
		t.Fatalf("create cache dir: %v", err)
	}
	cached := filepath.Join(env.cfg.Backups.CacheDir, "full20240101-0230.zip")
	if err := os.WriteFile(cached, []byte("not really a zip"), 0o644); err != nil {
		t.Fatalf("write cache entry: %v", err)
	}

	stdout, _, err = runCLI(t, env.configPath, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}
	if !strings.Contains(stdout, "Removed 1 archive(s)") {
		t.Fatalf("unexpected clear output:\n%s", stdout)
	}
	if _, err := os.Stat(cached); !os.IsNotExist(err) {
		t.Fatalf("cache entry should be gone, stat err: %v", err)
	}
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("init should report the target path:\n%s", stdout)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("re-init without --overwrite should fail")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("re-init with --overwrite failed: %v", err)
	}
}
