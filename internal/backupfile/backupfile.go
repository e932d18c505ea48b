// Package backupfile parses full-backup archive filenames and selects which
// backups of a chronological sequence to process.
package backupfile

import (
	"fmt"
	"regexp"
	"time"
)

// filenamePattern matches full backup archives: fullYYYYMMDD-HHMM.zip.
var filenamePattern = regexp.MustCompile(`full(\d{8})-(\d{4})\.zip`)

// ParseTimestamp extracts the snapshot timestamp encoded in a full backup
// filename. Filenames that do not match the expected shape, or that encode
// an impossible date, are rejected.
func ParseTimestamp(filename string) (time.Time, error) {
	match := filenamePattern.FindStringSubmatch(filename)
	if match == nil {
		return time.Time{}, fmt.Errorf("filename %q does not match the full backup pattern", filename)
	}
	ts, err := time.Parse("200601021504", match[1]+match[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("filename %q encodes an invalid timestamp: %w", filename, err)
	}
	return ts, nil
}

// IsBackupFilename reports whether filename looks like a full backup archive.
func IsBackupFilename(filename string) bool {
	return filenamePattern.MatchString(filename)
}

// Sample selects every nth filename from a chronologically sorted backup
// list, always keeping the newest backup so the tracked state ends at the
// present day. A frequency of one or less selects everything.
func Sample(filenames []string, frequency int) []string {
	if frequency <= 1 || len(filenames) == 0 {
		return filenames
	}
	sampled := make([]string, 0, len(filenames)/frequency+2)
	for i, name := range filenames {
		if i%frequency == 0 {
			sampled = append(sampled, name)
		}
	}
	newest := filenames[len(filenames)-1]
	if sampled[len(sampled)-1] != newest {
		sampled = append(sampled, newest)
	}
	return sampled
}
