package ports

import (
	"context"
	"time"

	"ChatDigest/internal/domain"
)

// StreamSource exposes the messaging platform behind a narrow boundary.
// Authentication, sessions, and rate limiting live entirely on the other
// side of this interface. Streams must be yielded in recency order
// (most recently active first); the collector's early-stop heuristic
// depends on it.
type StreamSource interface {
	// Streams enumerates conversation streams. limit <= 0 means all.
	Streams(ctx context.Context, limit int) ([]domain.Stream, error)
	// Messages fetches up to limit raw messages from a flat stream,
	// newest first.
	Messages(ctx context.Context, stream domain.Stream, limit int) ([]domain.RawMessage, error)
	// Topics enumerates up to limit sub-topics of a forum stream.
	Topics(ctx context.Context, stream domain.Stream, limit int) ([]domain.Topic, error)
	// TopicMessages fetches up to limit raw messages from one forum topic.
	TopicMessages(ctx context.Context, stream domain.Stream, topic domain.Topic, limit int) ([]domain.RawMessage, error)
	// SelfIdentity resolves the collecting account's display name, used
	// for self-message suppression.
	SelfIdentity(ctx context.Context) (string, error)
}

// ChatModel invokes the generative classifier with one system
// instruction and one user turn, returning the raw reply text.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ArtifactRepository persists the immutable per-run artifacts: the
// collected snapshot and the rendered digest, both keyed by a shared
// run timestamp.
type ArtifactRepository interface {
	SaveSnapshot(runKey string, snap domain.Snapshot) (string, error)
	LatestSnapshot() (domain.Snapshot, string, error)
	SaveDigest(runKey string, notices []string) (string, error)
}

// RunRecord summarizes one finished pipeline run.
type RunRecord struct {
	ID          string    `json:"id"`
	Account     string    `json:"account"`
	RunKey      string    `json:"run_key"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	FinishedAt  time.Time `json:"finished_at"`
	Chats       int       `json:"chats"`
	Messages    int       `json:"messages"`
	ModelCalls  int       `json:"model_calls"`
	Notices     int       `json:"notices"`
	TestMode    bool      `json:"test_mode,omitempty"`
}

// RunRepository keeps the per-account run history.
type RunRepository interface {
	Save(rec RunRecord) error
	Last(account string) (RunRecord, bool, error)
}

// Notifier delivers one rendered notice to the target account.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
