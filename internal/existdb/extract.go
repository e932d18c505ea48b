package existdb

import (
	"archive/zip"
	"context"
	"fmt"
	"path"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"chartertrack/internal/pathnorm"
)

// PathPair couples a charter's normalized identity with the raw spelling the
// archive used for it.
type PathPair struct {
	Normalized string
	Raw        string
}

// Discrepancy records a normalized path that only one of the two backup
// listings contained.
type Discrepancy struct {
	Path          string
	InContentsXML bool
	InZipEntries  bool
}

// Extraction is the reconciled view of one backup archive's charter records.
type Extraction struct {
	// ManifestPaths holds the raw charter paths declared by collection
	// descriptors.
	ManifestPaths map[string]struct{}
	// EntryPaths holds the raw charter paths present as archive entries.
	EntryPaths map[string]struct{}
	// Mapping lists every unique charter by normalized identity with one
	// representative raw path. Iteration order is deterministic: raw paths
	// are visited sorted, first occurrence of a normalized path wins.
	Mapping []PathPair
	// SkippedManifests counts descriptors that failed to parse and were
	// ignored.
	SkippedManifests int
}

// Extract opens a backup archive and reconciles its two charter listings.
// Descriptor parsing fans out across a bounded worker pool; manifest
// corruption is non-fatal and only counted.
func Extract(ctx context.Context, archivePath, basePath string) (*Extraction, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open backup archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	extraction := &Extraction{
		ManifestPaths: make(map[string]struct{}),
		EntryPaths:    make(map[string]struct{}),
	}

	var manifestFiles []*zip.File
	for _, file := range reader.File {
		if strings.HasSuffix(file.Name, manifestSuffix) {
			manifestFiles = append(manifestFiles, file)
			continue
		}
		if pathnorm.IsCharterPath(file.Name, basePath) {
			extraction.EntryPaths[file.Name] = struct{}{}
		}
	}
	sort.Slice(manifestFiles, func(i, j int) bool {
		return manifestFiles[i].Name < manifestFiles[j].Name
	})

	manifestPaths, skipped, err := collectManifestPaths(ctx, manifestFiles, basePath)
	if err != nil {
		return nil, err
	}
	extraction.ManifestPaths = manifestPaths
	extraction.SkippedManifests = skipped

	extraction.Mapping = buildMapping(extraction.ManifestPaths, extraction.EntryPaths)
	return extraction, nil
}

// collectManifestPaths parses every descriptor concurrently and merges the
// declared charter paths into one raw-path set. The result is a set, so merge
// order cannot affect the outcome.
func collectManifestPaths(ctx context.Context, files []*zip.File, basePath string) (map[string]struct{}, int, error) {
	results := make([][]string, len(files))
	skips := make([]bool, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			paths, err := manifestCharterPaths(file, basePath)
			if err != nil {
				skips[i] = true
				return nil
			}
			results[i] = paths
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, 0, err
	}

	merged := make(map[string]struct{})
	skipped := 0
	for i, paths := range results {
		if skips[i] {
			skipped++
			continue
		}
		for _, p := range paths {
			merged[p] = struct{}{}
		}
	}
	return merged, skipped, nil
}

// manifestCharterPaths resolves one descriptor into the raw charter paths it
// declares. When the descriptor omits the collection name attribute, its own
// location inside the archive stands in for the collection path.
func manifestCharterPaths(file *zip.File, basePath string) ([]string, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	m, err := parseManifest(rc)
	if err != nil {
		return nil, err
	}

	collectionPath := m.CollectionPath
	if collectionPath == "" {
		collectionPath = path.Dir(file.Name)
		if collectionPath == "." {
			collectionPath = ""
		}
	}
	collectionPath = strings.TrimSuffix(collectionPath, "/")

	var paths []string
	for _, resource := range m.Resources {
		if !strings.HasSuffix(resource, ".xml") {
			continue
		}
		full := collectionPath + "/" + resource
		if pathnorm.IsCharterPath(full, basePath) {
			paths = append(paths, full)
		}
	}
	return paths, nil
}

// buildMapping unions both raw-path sets and de-duplicates them by normalized
// identity. Raw paths are visited in sorted order so the first-seen-wins
// tie-break is a fixed contract rather than map iteration luck.
func buildMapping(manifestPaths, entryPaths map[string]struct{}) []PathPair {
	union := make([]string, 0, len(manifestPaths)+len(entryPaths))
	for p := range manifestPaths {
		union = append(union, p)
	}
	for p := range entryPaths {
		if _, ok := manifestPaths[p]; !ok {
			union = append(union, p)
		}
	}
	sort.Strings(union)

	mapping := make([]PathPair, 0, len(union))
	seen := make(map[string]struct{}, len(union))
	for _, raw := range union {
		normalized := pathnorm.Normalize(raw)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		mapping = append(mapping, PathPair{Normalized: normalized, Raw: raw})
	}
	return mapping
}

// Discrepancies reports every normalized path present in exactly one of the
// two listings. Paths found in both never count, even when their raw
// spellings differ. Results are sorted by path.
func (e *Extraction) Discrepancies() []Discrepancy {
	manifestNorm := groupByNormalized(e.ManifestPaths)
	entryNorm := groupByNormalized(e.EntryPaths)

	var discrepancies []Discrepancy
	for norm := range manifestNorm {
		if _, ok := entryNorm[norm]; !ok {
			discrepancies = append(discrepancies, Discrepancy{Path: norm, InContentsXML: true})
		}
	}
	for norm := range entryNorm {
		if _, ok := manifestNorm[norm]; !ok {
			discrepancies = append(discrepancies, Discrepancy{Path: norm, InZipEntries: true})
		}
	}
	sort.Slice(discrepancies, func(i, j int) bool {
		return discrepancies[i].Path < discrepancies[j].Path
	})
	return discrepancies
}

func groupByNormalized(rawPaths map[string]struct{}) map[string]struct{} {
	grouped := make(map[string]struct{}, len(rawPaths))
	for raw := range rawPaths {
		grouped[pathnorm.Normalize(raw)] = struct{}{}
	}
	return grouped
}
