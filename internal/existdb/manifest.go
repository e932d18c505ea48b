package existdb

import (
	"encoding/xml"
	"io"
	"strings"
)

// manifestSuffix marks the per-directory collection descriptor entries.
const manifestSuffix = "__contents__.xml"

// manifest is the parsed form of one __contents__.xml descriptor.
type manifest struct {
	// CollectionPath is the declared absolute collection path with the
	// leading slash stripped, or empty when the descriptor carries no name
	// attribute.
	CollectionPath string
	// Resources lists the child resource names declared by the descriptor.
	Resources []string
}

// parseManifest reads one collection descriptor. Matching is
// namespace-agnostic: descriptors written by different eXist versions bind
// the exist namespace differently, so only local element names are compared.
func parseManifest(r io.Reader) (manifest, error) {
	decoder := xml.NewDecoder(r)

	var (
		m        manifest
		rootSeen bool
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return manifest{}, err
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		if !rootSeen {
			rootSeen = true
			if name := attrValue(start, "name"); name != "" {
				m.CollectionPath = strings.TrimSuffix(strings.TrimPrefix(name, "/"), "/")
			}
			continue
		}

		if start.Name.Local == "resource" {
			if name := attrValue(start, "name"); name != "" {
				m.Resources = append(m.Resources, strings.TrimPrefix(name, "/"))
			}
		}
	}

	if !rootSeen {
		return manifest{}, io.ErrUnexpectedEOF
	}
	return m, nil
}

func attrValue(start xml.StartElement, local string) string {
	for _, attr := range start.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
