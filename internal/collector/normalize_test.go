package collector

import (
	"testing"
	"time"

	"ChatDigest/internal/domain"
)

func TestNormalizeDropsEmptyBody(t *testing.T) {
	t.Parallel()

	msg := domain.RawMessage{
		Sender: &domain.Sender{Username: "alice"},
		Text:   "   ",
		SentAt: time.Now(),
	}
	if _, ok := Normalize(msg, "me"); ok {
		t.Fatalf("message with blank body must be dropped")
	}
}

func TestNormalizeDropsSelfMessages(t *testing.T) {
	t.Parallel()

	msg := domain.RawMessage{
		Sender: &domain.Sender{Username: "me"},
		Text:   "note to self",
		SentAt: time.Now(),
	}
	if _, ok := Normalize(msg, "me"); ok {
		t.Fatalf("own message must be dropped")
	}
}

func TestNormalizeDropsZeroTimestamp(t *testing.T) {
	t.Parallel()

	msg := domain.RawMessage{
		Sender: &domain.Sender{Username: "alice"},
		Text:   "hello",
	}
	if _, ok := Normalize(msg, "me"); ok {
		t.Fatalf("message without timestamp must be dropped")
	}
}

func TestNormalizeSenderResolution(t *testing.T) {
	t.Parallel()

	sentAt := time.Date(2024, time.December, 2, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		sender *domain.Sender
		want   string
	}{
		{"username wins", &domain.Sender{Username: "alice", FirstName: "Alice"}, "alice"},
		{"first name", &domain.Sender{FirstName: "Alice"}, "Alice"},
		{"first and last name", &domain.Sender{FirstName: "Alice", LastName: "Smith"}, "Alice Smith"},
		{"sender without names", &domain.Sender{}, "Anonymous"},
		{"no sender", nil, "Unknown"},
	}

	for _, tc := range cases {
		msg, ok := Normalize(domain.RawMessage{Sender: tc.sender, Text: "hi", SentAt: sentAt}, "me")
		if !ok {
			t.Fatalf("%s: message unexpectedly dropped", tc.name)
		}
		if msg.Name != tc.want {
			t.Fatalf("%s: name = %q, want %q", tc.name, msg.Name, tc.want)
		}
	}
}

func TestNormalizeTimestampUTCMinuteResolution(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	msg, ok := Normalize(domain.RawMessage{
		Sender: &domain.Sender{Username: "alice"},
		Text:   "hi",
		SentAt: time.Date(2024, time.December, 2, 11, 30, 45, 0, berlin),
	}, "me")
	if !ok {
		t.Fatalf("message unexpectedly dropped")
	}

	if msg.Timestamp != "2024-12-02 10:30" {
		t.Fatalf("timestamp = %q, want UTC minute resolution %q", msg.Timestamp, "2024-12-02 10:30")
	}
}
