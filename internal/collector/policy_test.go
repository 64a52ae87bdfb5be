package collector

import (
	"testing"
	"time"

	"ChatDigest/internal/domain"
)

func TestEligible(t *testing.T) {
	t.Parallel()

	if Eligible(domain.Stream{Name: "archived", FolderID: ArchivedFolderID}) {
		t.Fatalf("archived stream must not be eligible")
	}
	if !Eligible(domain.Stream{Name: "inbox", FolderID: 0}) {
		t.Fatalf("unfiled stream must be eligible")
	}
}

func TestShouldStop(t *testing.T) {
	t.Parallel()

	rangeStart := time.Date(2024, time.December, 2, 12, 0, 0, 0, time.UTC)
	stale := rangeStart.Add(-26 * time.Hour)
	fresh := rangeStart.Add(-2 * time.Hour)

	cases := []struct {
		name         string
		stream       domain.Stream
		lastActivity time.Time
		shortRange   bool
		want         bool
	}{
		{"stale unpinned short range", domain.Stream{Name: "a"}, stale, true, true},
		{"stale pinned short range", domain.Stream{Name: "b", Pinned: true}, stale, true, false},
		{"fresh unpinned short range", domain.Stream{Name: "c"}, fresh, true, false},
		{"stale unpinned historical", domain.Stream{Name: "d"}, stale, false, false},
		{"exactly at cutoff", domain.Stream{Name: "e"}, rangeStart.Add(-25 * time.Hour), true, false},
	}

	for _, tc := range cases {
		got := ShouldStop(tc.stream, tc.lastActivity, rangeStart, tc.shortRange)
		if got != tc.want {
			t.Fatalf("%s: ShouldStop = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestShortRange(t *testing.T) {
	t.Parallel()

	end := time.Date(2024, time.December, 2, 12, 0, 0, 0, time.UTC)

	if !ShortRange(end.Add(-24*time.Hour), end) {
		t.Fatalf("24h window must qualify as short range")
	}
	if ShortRange(end.Add(-25*time.Hour), end) {
		t.Fatalf("25h window must not qualify as short range")
	}
}
