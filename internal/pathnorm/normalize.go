package pathnorm

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// hexEscapePattern matches the storage engine's two-hex-digit escape scheme (&XX;).
var hexEscapePattern = regexp.MustCompile(`&([0-9A-Fa-f]{2});`)

// Normalize canonicalizes a raw archive path into its comparable form.
// It is total and deterministic: any input yields a result, and decode
// failures fall back to the most recent successfully decoded form.
func Normalize(raw string) string {
	path := strings.TrimSpace(raw)

	path = decodeHexEscapes(path)
	path = html.UnescapeString(path)
	path = decodePercentEscapes(path)

	// Form-encoding convention: '+' stands for a space.
	path = strings.ReplaceAll(path, "+", " ")

	path = norm.NFC.String(path)

	path = strings.ReplaceAll(path, "\\", "/")
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	for strings.Contains(path, "  ") {
		path = strings.ReplaceAll(path, "  ", " ")
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

// decodeHexEscapes replaces each &XX; escape with the character for the
// two-digit hex code point.
func decodeHexEscapes(path string) string {
	if !strings.Contains(path, "&") {
		return path
	}
	return hexEscapePattern.ReplaceAllStringFunc(path, func(match string) string {
		code, err := strconv.ParseUint(match[1:3], 16, 16)
		if err != nil {
			return match
		}
		return string(rune(code))
	})
}

// decodePercentEscapes applies URL percent decoding repeatedly until the
// value stabilizes, guarding against double-encoded input. A decode step
// that fails, or that produces invalid UTF-8, stops the loop and keeps the
// last good form.
func decodePercentEscapes(path string) string {
	for strings.Contains(path, "%") {
		decoded, err := url.PathUnescape(path)
		if err != nil || !utf8.ValidString(decoded) {
			break
		}
		if decoded == path {
			break
		}
		path = decoded
	}
	return path
}
