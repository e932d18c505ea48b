package azure

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// CacheEntry describes one archive in the download cache.
type CacheEntry struct {
	Name string
	Size int64
}

// ValidateArchive checks that path holds a readable ZIP by opening its
// central directory.
func ValidateArchive(path string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("validate archive %s: %w", path, err)
	}
	return reader.Close()
}

// ListCache returns the cached backup archives sorted by name.
func ListCache(cacheDir string) ([]CacheEntry, error) {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list cache %s: %w", cacheDir, err)
	}

	var cached []CacheEntry
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".zip" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat cache entry %s: %w", entry.Name(), err)
		}
		cached = append(cached, CacheEntry{Name: entry.Name(), Size: info.Size()})
	}
	sort.Slice(cached, func(i, j int) bool { return cached[i].Name < cached[j].Name })
	return cached, nil
}

// ClearCache deletes every cached archive and reports how many entries and
// bytes were removed.
func ClearCache(cacheDir string) (int, int64, error) {
	cached, err := ListCache(cacheDir)
	if err != nil {
		return 0, 0, err
	}

	var freed int64
	removed := 0
	for _, entry := range cached {
		if err := os.Remove(filepath.Join(cacheDir, entry.Name)); err != nil {
			return removed, freed, fmt.Errorf("remove cache entry %s: %w", entry.Name, err)
		}
		removed++
		freed += entry.Size
	}
	return removed, freed, nil
}

// progressWriter renders a byte progress bar on a terminal and stays silent
// everywhere else, so piped sync output remains machine-readable.
func progressWriter(size int64, description string) io.Writer {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return io.Discard
	}
	return progressbar.DefaultBytes(size, description)
}
