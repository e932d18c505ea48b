package testsupport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ArchiveFile describes one entry to place in a fixture backup archive.
type ArchiveFile struct {
	Name string
	Body string
}

// WriteBackupArchive writes a ZIP archive containing the provided entries
// and returns its path.
func WriteBackupArchive(t testing.TB, path string, files []ArchiveFile) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, file := range files {
		entry, err := w.Create(file.Name)
		if err != nil {
			t.Fatalf("create entry %s: %v", file.Name, err)
		}
		if _, err := entry.Write([]byte(file.Body)); err != nil {
			t.Fatalf("write entry %s: %v", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive %s: %v", path, err)
	}
	return path
}

// ManifestXML renders an eXist collection descriptor listing the given
// resource names. An empty collectionName omits the name attribute so tests
// can exercise the descriptor-location fallback.
func ManifestXML(collectionName string, resources ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("\n")
	b.WriteString(`<collection xmlns="http://exist.sourceforge.net/NS/exist"`)
	if collectionName != "" {
		b.WriteString(` name="` + collectionName + `"`)
	}
	b.WriteString(` version="1" owner="admin" group="dba" mode="755">`)
	b.WriteString("\n")
	for _, name := range resources {
		b.WriteString(`  <resource type="XMLResource" name="` + name + `" owner="admin" group="dba" mode="644"/>`)
		b.WriteString("\n")
	}
	b.WriteString(`</collection>`)
	b.WriteString("\n")
	return b.String()
}

// CharterXML returns a minimal charter document body.
func CharterXML(id string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<cei:text xmlns:cei="http://www.monasterium.net/NS/cei" id="` + id + `"/>` + "\n"
}
