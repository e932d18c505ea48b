package store

import "time"

// CharterStatus represents the lifecycle state of a tracked charter.
type CharterStatus string

const (
	StatusPresent CharterStatus = "present"
	StatusMissing CharterStatus = "missing"
)

// EventKind classifies a charter lifecycle event.
type EventKind string

const (
	EventAppeared    EventKind = "appeared"
	EventDisappeared EventKind = "disappeared"
)

// Charter is a tracked record identified by its normalized path.
type Charter struct {
	ID                int64
	Path              string
	RawPath           string
	ParentPath        string
	FirstSeenBackupID int64
	LastSeenBackupID  int64
	Status            CharterStatus
}

// Backup is one chronological snapshot archive.
type Backup struct {
	ID             int64
	Filename       string
	BackupDate     time.Time
	ProcessedAt    *time.Time
	CharterCount   int64
	ProcessingTime float64
}

// Processed reports whether the backup completed a full tracking transaction.
func (b Backup) Processed() bool {
	return b.ProcessedAt != nil
}

// Event is an immutable charter lifecycle fact.
type Event struct {
	ID        int64
	CharterID int64
	BackupID  int64
	Kind      EventKind
	Date      time.Time
}

// Discrepancy records a path present in exactly one backup listing.
type Discrepancy struct {
	ID            int64
	BackupID      int64
	Path          string
	InContentsXML bool
	InZipEntries  bool
}

// CharterRef is the id+status pair returned by path lookups.
type CharterRef struct {
	ID     int64
	Status CharterStatus
}

// NewCharter describes a charter row to insert on first observation.
type NewCharter struct {
	Path       string
	RawPath    string
	ParentPath string
	BackupID   int64
}

// NewEvent describes a lifecycle event row to insert.
type NewEvent struct {
	CharterID int64
	BackupID  int64
	Kind      EventKind
	Date      time.Time
}

// NewDiscrepancy describes a single-source path found within one backup.
type NewDiscrepancy struct {
	BackupID      int64
	Path          string
	InContentsXML bool
	InZipEntries  bool
}

// Stats aggregates overall tracking numbers.
type Stats struct {
	ProcessedBackups    int
	TotalCharters       int
	MissingCharters     int
	DisappearanceEvents int
	Discrepancies       int
}

// MissingCharter is a report row for a charter currently marked missing.
type MissingCharter struct {
	ID            int64
	Path          string
	RawPath       string
	ParentPath    string
	FirstSeenFile string
	LastSeenFile  string
	LastSeenDate  time.Time
}

// ParentMissing aggregates missing charters per parent collection path.
type ParentMissing struct {
	ParentPath   string
	MissingCount int
	TotalCount   int
}

// ExtractionItem carries what the recovery extractor needs to locate a
// missing charter inside its last-seen backup archive.
type ExtractionItem struct {
	Path         string
	RawPath      string
	LastSeenFile string
}
