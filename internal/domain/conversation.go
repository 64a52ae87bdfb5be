package domain

import "time"

// ChatKind is the closed set of stream shapes the pipeline understands.
// The stream source resolves the platform entity into one of these tags;
// the core never inspects raw entity shapes.
type ChatKind string

const (
	KindChat    ChatKind = "chat"
	KindGroup   ChatKind = "group"
	KindChannel ChatKind = "channel"
	KindForum   ChatKind = "forum"
)

// Stream is a handle to a single conversation thread, carrying just
// enough metadata for the traversal policy.
type Stream struct {
	Name         string
	Kind         ChatKind
	LastActivity time.Time
	Pinned       bool
	FolderID     int
}

// Topic is a sub-thread of a forum-style stream.
type Topic struct {
	ID    int64
	Title string
}

// Sender carries the raw sender metadata of a platform message. A nil
// *Sender means the platform reported no sender at all.
type Sender struct {
	Username  string
	FirstName string
	LastName  string
}

// RawMessage is a platform message before normalization.
type RawMessage struct {
	Sender *Sender
	Text   string
	SentAt time.Time
}

// Message is the normalized, storage-ready message record.
type Message struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Conversation groups the qualifying messages of one stream (or one
// forum topic). A forum yields one Conversation per topic.
type Conversation struct {
	ChatName string    `json:"chat_name"`
	Kind     ChatKind  `json:"type"`
	Topic    string    `json:"topic,omitempty"`
	Messages []Message `json:"messages"`
}

// DateRange bounds a collection run.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Metadata summarizes a snapshot. Counters are recomputed from the
// assembled conversations, never carried from intermediate state.
type Metadata struct {
	DateRange      DateRange `json:"date_range"`
	TotalChats     int       `json:"total_chats_processed"`
	TotalMessages  int       `json:"total_messages"`
	CollectionTime string    `json:"collection_time"`
	TestMode       bool      `json:"test_mode,omitempty"`
}

// Snapshot is the immutable output of one collection run.
type Snapshot struct {
	Metadata      Metadata       `json:"metadata"`
	Conversations []Conversation `json:"conversations"`
}

// EntryKind labels a classified entry. Only events and requests are
// surfaced to the user; the other kinds are produced by the model and
// dropped at the digest stage.
type EntryKind string

const (
	EntryEvent        EntryKind = "event"
	EntryRequest      EntryKind = "request"
	EntryOffer        EntryKind = "offer"
	EntryAnnouncement EntryKind = "announcement"
)

// ClassifiedEntry is one item the model surfaced from a conversation.
type ClassifiedEntry struct {
	Kind        EntryKind `json:"type"`
	Summary     string    `json:"summary"`
	Details     string    `json:"details,omitempty"`
	SourceGroup string    `json:"source_group"`
}
