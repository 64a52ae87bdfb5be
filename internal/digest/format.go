// Package digest renders classified entries into the notices delivered
// to the user.
package digest

import (
	"fmt"
	"strings"
	"time"

	"ChatDigest/internal/domain"
)

// Format renders entries into markdown notices, one per entry. Only
// events and requests are surfaced; offers and announcements the model
// produced anyway are dropped here. Formatting is pure: the same input
// always yields the same notices.
func Format(entries []domain.ClassifiedEntry) []string {
	var notices []string
	for _, entry := range entries {
		if !surfaced(entry.Kind) {
			continue
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "**%s**\n", entry.SourceGroup)
		fmt.Fprintf(&sb, "*%s*: %s", title(string(entry.Kind)), entry.Summary)
		if entry.Details != "" {
			fmt.Fprintf(&sb, "\n_%s_", entry.Details)
		}
		notices = append(notices, sb.String())
	}
	return notices
}

// Header renders the leading notice stating how many items follow.
func Header(count int, at time.Time) string {
	return fmt.Sprintf("🔍 Event Updates (%s)\nFound %d relevant items:\n%s",
		at.UTC().Format("2006-01-02 15:04"), count, strings.Repeat("=", 30))
}

func surfaced(kind domain.EntryKind) bool {
	return kind == domain.EntryEvent || kind == domain.EntryRequest
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
