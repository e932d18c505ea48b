package pathnorm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// existEscaper re-applies the storage engine's hex escape to the characters
// it is known to escape on export.
var existEscaper = strings.NewReplacer("|", "&7C;")

const upperHex = "0123456789ABCDEF"

// Variants produces the historically-plausible spellings of a charter path,
// in decreasing likelihood order: the original raw form, the normalized form,
// the hex-escaped form, the percent-encoded form, and double-encoding
// corruptions (UTF-8 bytes misread as CP437 or Latin-1, applied to both the
// normalized and the hex-escaped form). Duplicates are suppressed while
// preserving first-occurrence order.
//
// The list exists only for reverse lookup of a byte-exact archive entry name;
// it is never used for identity comparison.
func Variants(normalized, raw string) []string {
	variants := make([]string, 0, 8)
	seen := make(map[string]struct{}, 8)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	add(raw)
	add(normalized)

	hexEscaped := EncodeHexEscapes(normalized)
	add(hexEscaped)
	add(percentEncode(normalized))

	for _, source := range []string{normalized, hexEscaped} {
		if corrupted := corruptAs(charmap.CodePage437, source); corrupted != source {
			add(corrupted)
		}
	}
	for _, source := range []string{normalized, hexEscaped} {
		if corrupted := corruptAs(charmap.ISO8859_1, source); corrupted != source {
			add(corrupted)
		}
	}
	return variants
}

// EncodeHexEscapes converts a normalized path back to the storage engine's
// escaped spelling.
func EncodeHexEscapes(path string) string {
	return existEscaper.Replace(path)
}

// percentEncode URL-escapes every byte outside the unreserved set, keeping
// path separators literal.
func percentEncode(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		if isPathSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isPathSafe(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~' || c == '/':
		return true
	}
	return false
}

// corruptAs simulates the path's UTF-8 bytes being misread one byte at a time
// in the given legacy encoding. Bytes without a mapping leave the path
// unchanged, mirroring a decode failure.
func corruptAs(cm *charmap.Charmap, path string) string {
	var b strings.Builder
	b.Grow(len(path) * 2)
	for i := 0; i < len(path); i++ {
		r := cm.DecodeByte(path[i])
		if r == utf8.RuneError {
			return path
		}
		b.WriteRune(r)
	}
	return b.String()
}
