package collector

import (
	"time"

	"ChatDigest/internal/domain"
)

const (
	// MaxStreams caps how many streams a historical query inspects.
	MaxStreams = 100
	// MaxMessagesPerStream caps the fetch per flat stream or per topic.
	MaxMessagesPerStream = 100
	// MaxTopicsPerForum caps how many topics of a forum are enumerated.
	MaxTopicsPerForum = 100
	// ArchivedFolderID marks streams the user filed away; they are
	// never collected.
	ArchivedFolderID = 1
	// TestModeStreamLimit caps traversal in test mode.
	TestModeStreamLimit = 10

	shortRangeWindow = 24 * time.Hour
	staleCutoff      = 25 * time.Hour
)

// Eligible reports whether a stream should be collected at all.
func Eligible(stream domain.Stream) bool {
	return stream.FolderID != ArchivedFolderID
}

// ShouldStop reports whether traversal can halt at this stream. It
// fires only for short-range queries, when the stream's last activity
// predates the window start by more than the stale cutoff and the
// stream is not pinned. Streams arrive in recency order, so everything
// after a sufficiently stale unpinned stream is assumed stale too.
// This trades completeness for not walking the full stream list; it is
// never applied to historical queries.
func ShouldStop(stream domain.Stream, lastActivity, rangeStart time.Time, shortRange bool) bool {
	if !shortRange {
		return false
	}
	if stream.Pinned {
		return false
	}
	return lastActivity.UTC().Before(rangeStart.UTC().Add(-staleCutoff))
}

// ShortRange reports whether the [start, end] window qualifies as a
// recency query, which enables the early-stop heuristic and lifts the
// stream cap.
func ShortRange(start, end time.Time) bool {
	return end.Sub(start) <= shortRangeWindow
}
