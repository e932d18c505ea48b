package backupfile

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     time.Time
		wantErr  bool
	}{
		{"standard name", "full20240115-0230.zip", time.Date(2024, 1, 15, 2, 30, 0, 0, time.UTC), false},
		{"midnight", "full20231231-0000.zip", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"prefixed blob path", "exports/full20240601-1845.zip", time.Date(2024, 6, 1, 18, 45, 0, 0, time.UTC), false},
		{"missing prefix", "incr20240115-0230.zip", time.Time{}, true},
		{"short date", "full2024011-0230.zip", time.Time{}, true},
		{"wrong extension", "full20240115-0230.tar", time.Time{}, true},
		{"impossible month", "full20241315-0230.zip", time.Time{}, true},
		{"impossible hour", "full20240115-2530.zip", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimestamp(%q) = %v, want error", tt.filename, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) returned error: %v", tt.filename, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestIsBackupFilename(t *testing.T) {
	if !IsBackupFilename("full20240115-0230.zip") {
		t.Error("IsBackupFilename rejected a valid backup name")
	}
	if IsBackupFilename("notes.txt") {
		t.Error("IsBackupFilename accepted an unrelated name")
	}
}

func TestSample(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	tests := []struct {
		name      string
		frequency int
		want      []string
	}{
		{"frequency one keeps all", 1, names},
		{"frequency zero keeps all", 0, names},
		{"every third plus newest", 3, []string{"a", "d", "g", "h"}},
		{"larger than list", 20, []string{"a", "h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(names, tt.frequency)
			if len(got) != len(tt.want) {
				t.Fatalf("Sample(freq=%d) = %v, want %v", tt.frequency, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Sample(freq=%d)[%d] = %q, want %q", tt.frequency, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSampleNewestNotDuplicated(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}

	got := Sample(names, 2)
	want := []string{"a", "c", "e"}
	if len(got) != len(want) {
		t.Fatalf("Sample() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Sample()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSampleEmpty(t *testing.T) {
	if got := Sample(nil, 7); len(got) != 0 {
		t.Errorf("Sample(nil) = %v, want empty", got)
	}
}
