package pathnorm

import "strings"

// IsCharterPath reports whether path identifies a charter record: after
// normalization it must lie under the normalized base collection path and
// carry the tracked .xml extension.
func IsCharterPath(path, basePath string) bool {
	normalized := Normalize(path)
	base := Normalize(basePath)
	return strings.HasPrefix(normalized, base) && strings.HasSuffix(normalized, ".xml")
}

// ParentPath returns the collection path of a charter relative to the base
// collection path, or the empty string when the charter sits directly at the
// base root. Paths outside the base are treated as already relative.
func ParentPath(path, basePath string) string {
	normalized := Normalize(path)
	base := Normalize(basePath)

	relative := normalized
	if strings.HasPrefix(normalized, base) {
		relative = strings.TrimLeft(normalized[len(base):], "/")
	}
	if idx := strings.LastIndex(relative, "/"); idx >= 0 {
		return relative[:idx]
	}
	return ""
}
