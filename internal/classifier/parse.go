package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawEntry is the shape the model is instructed to reply with.
type rawEntry struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
	Details string `json:"details,omitempty"`
}

// parseReply decodes a model reply into zero or more entries. It
// tolerates bare JSON, JSON fenced in a markdown code block (with or
// without a language tag), and a single object where an array was
// expected. An empty reply is a valid "nothing relevant" outcome.
// Entries missing a type or a summary are dropped.
func parseReply(reply string) ([]rawEntry, error) {
	cleaned := stripFences(strings.TrimSpace(reply))
	if cleaned == "" {
		return nil, nil
	}

	var entries []rawEntry
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		var single rawEntry
		if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
			return nil, fmt.Errorf("decode model reply: %w", err)
		}
		entries = []rawEntry{single}
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Type == "" || e.Summary == "" {
			continue
		}
		e.Type = strings.ToLower(strings.TrimSpace(e.Type))
		kept = append(kept, e)
	}
	return kept, nil
}

// stripFences removes a surrounding markdown code fence, including an
// optional language tag on the opening line.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line (e.g. "json") when present.
		if firstLine := strings.TrimSpace(s[:idx]); firstLine == "" || isLanguageTag(firstLine) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
