package store

import (
	"path/filepath"
	"strings"
	"time"

	"shelfarr/internal/media"
)

// QueueStatus represents the lifecycle of an organize queue item.
type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueProcessing QueueStatus = "processing"
	QueueCompleted  QueueStatus = "completed"
	QueueSkipped    QueueStatus = "skipped"
	QueueFailed     QueueStatus = "failed"
)

var allQueueStatuses = []QueueStatus{
	QueuePending,
	QueueProcessing,
	QueueCompleted,
	QueueSkipped,
	QueueFailed,
}

var queueStatusSet = func() map[QueueStatus]struct{} {
	set := make(map[QueueStatus]struct{}, len(allQueueStatuses))
	for _, status := range allQueueStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// liveQueueStatuses are the non-terminal states; a folder path has at most
// one item in any of them.
var liveQueueStatuses = []QueueStatus{QueuePending, QueueProcessing, QueueFailed}

// AllQueueStatuses returns the ordered list of known statuses.
func AllQueueStatuses() []QueueStatus {
	cp := make([]QueueStatus, len(allQueueStatuses))
	copy(cp, allQueueStatuses)
	return cp
}

// ParseQueueStatus converts a string into a known QueueStatus.
func ParseQueueStatus(value string) (QueueStatus, bool) {
	normalized := QueueStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := queueStatusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status ends the item's lifecycle.
func (s QueueStatus) IsTerminal() bool {
	return s == QueueCompleted || s == QueueSkipped
}

// RequestStatus represents the lifecycle of a tracking record.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestOngoing   RequestStatus = "ongoing"
	RequestCompleted RequestStatus = "completed"
)

// Settings is the singleton organization settings row, created lazily with
// defaults on first access.
type Settings struct {
	LibraryDir      string
	MoviesDir       string
	TVDir           string
	GamesDir        string
	AutoOrganize    bool
	ReplaceExisting bool
	ExtractArchives bool
	DeleteArchives  bool
	ReverseIndexing bool
	ScanInterval    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DirFor resolves the library directory for a content type, honoring the
// per-type override when present.
func (s *Settings) DirFor(contentType media.ContentType) string {
	override := ""
	switch contentType {
	case media.Movie:
		override = s.MoviesDir
	case media.TVShow:
		override = s.TVDir
	case media.Game:
		override = s.GamesDir
	}
	if strings.TrimSpace(override) != "" {
		return override
	}
	if strings.TrimSpace(s.LibraryDir) == "" {
		return ""
	}
	return filepath.Join(s.LibraryDir, contentType.Subfolder())
}

// Rule is a persisted naming rule for one content type.
type Rule struct {
	ID                   int64
	ContentType          media.ContentType
	Platform             string
	FolderTemplate       string
	FileTemplate         string
	SeasonFolderTemplate string
	BasePath             string
	IsDefault            bool
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// OrganizedFile records one physically placed file.
type OrganizedFile struct {
	ID             int64
	OriginalPath   string
	OrganizedPath  string
	FileName       string
	SizeBytes      int64
	Title          string
	Year           int
	Season         int
	Episode        int
	Platform       string
	Quality        string
	Format         string
	Edition        string
	RequestID      *int64
	ReverseIndexed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// QueueItem is one candidate folder awaiting human review.
type QueueItem struct {
	ID           int64
	FolderPath   string
	ContentType  media.ContentType
	Detected     media.Descriptor
	Status       QueueStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Request is the tracking record the scanner matches against or creates.
type Request struct {
	ID          int64
	ContentType media.ContentType
	Title       string
	Year        int
	Season      int
	Episode     int
	Platform    string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
