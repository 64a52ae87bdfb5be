package collector

import (
	"strings"

	"ChatDigest/internal/domain"
)

// timestampLayout is the minute-resolution storage format for message
// timestamps. It sorts lexicographically in chronological order.
const timestampLayout = "2006-01-02 15:04"

const (
	senderUnknown   = "Unknown"
	senderAnonymous = "Anonymous"
)

// Normalize converts one raw platform message into a storage-ready
// record. It returns false for messages that must be dropped: empty
// bodies, messages sent by the collecting account itself, and messages
// with no usable timestamp.
func Normalize(msg domain.RawMessage, self string) (domain.Message, bool) {
	if strings.TrimSpace(msg.Text) == "" {
		return domain.Message{}, false
	}
	if msg.SentAt.IsZero() {
		return domain.Message{}, false
	}

	name := resolveSender(msg.Sender)
	if name == self {
		return domain.Message{}, false
	}

	return domain.Message{
		Name:      name,
		Content:   msg.Text,
		Timestamp: msg.SentAt.UTC().Format(timestampLayout),
	}, true
}

// resolveSender picks a display name: username, else first name (plus
// last name when present). "Unknown" stands in when the platform
// reported no sender, "Anonymous" when a sender exists but carries no
// name at all.
func resolveSender(sender *domain.Sender) string {
	if sender == nil {
		return senderUnknown
	}
	if sender.Username != "" {
		return sender.Username
	}
	if sender.FirstName != "" {
		if sender.LastName != "" {
			return sender.FirstName + " " + sender.LastName
		}
		return sender.FirstName
	}
	return senderAnonymous
}
