package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ChatDigest/internal/domain"
	"ChatDigest/internal/ports"
)

// Collector walks conversation streams and assembles a snapshot of the
// messages that fall inside the requested window.
type Collector struct {
	source ports.StreamSource
	logger *slog.Logger
}

// New wires a stream source into a collector.
func New(source ports.StreamSource, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{source: source, logger: logger}
}

// Collect traverses the available streams in recency order and returns
// a snapshot of all qualifying messages in [start, end]. Per-stream
// fetch failures degrade to zero messages from that stream; only
// failures that leave nothing to work with (stream enumeration,
// identity resolution) are returned as errors.
func (c *Collector) Collect(ctx context.Context, start, end time.Time, testMode bool) (domain.Snapshot, error) {
	start = start.UTC()
	end = end.UTC()

	self, err := c.source.SelfIdentity(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("resolve self identity: %w", err)
	}

	shortRange := ShortRange(start, end)
	c.logger.Info("collecting messages",
		"start", start.Format(timestampLayout),
		"end", end.Format(timestampLayout),
		"mode", queryMode(shortRange),
		"test_mode", testMode)

	limit := streamLimit(shortRange, testMode)
	streams, err := c.source.Streams(ctx, limit)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("enumerate streams: %w", err)
	}

	var conversations []domain.Conversation
	chats := map[string]struct{}{}
	checked := 0

	for _, stream := range streams {
		checked++

		if !Eligible(stream) {
			c.logger.Debug("skipping archived stream", "stream", stream.Name)
			continue
		}

		if ShouldStop(stream, stream.LastActivity, start, shortRange) {
			c.logger.Info("stale stream reached, stopping traversal",
				"stream", stream.Name, "checked", checked)
			break
		}

		records := c.collectStream(ctx, stream, start, end, self)
		if len(records) == 0 {
			continue
		}
		conversations = append(conversations, records...)
		chats[stream.Name] = struct{}{}
	}

	c.logger.Info("collection finished", "checked", checked, "chats", len(chats))

	return assemble(conversations, chats, start, end, testMode), nil
}

// collectStream fetches and normalizes one stream's messages, branching
// on the stream kind. Forums yield one conversation per topic.
func (c *Collector) collectStream(ctx context.Context, stream domain.Stream, start, end time.Time, self string) []domain.Conversation {
	if stream.Kind == domain.KindForum {
		return c.collectForum(ctx, stream, start, end, self)
	}

	raw, err := c.source.Messages(ctx, stream, MaxMessagesPerStream)
	if err != nil {
		c.logger.Warn("fetch failed, skipping stream", "stream", stream.Name, "error", err)
		return nil
	}

	messages := normalizeAll(raw, start, end, self)
	if len(messages) == 0 {
		return nil
	}

	return []domain.Conversation{{
		ChatName: stream.Name,
		Kind:     stream.Kind,
		Messages: messages,
	}}
}

func (c *Collector) collectForum(ctx context.Context, stream domain.Stream, start, end time.Time, self string) []domain.Conversation {
	topics, err := c.source.Topics(ctx, stream, MaxTopicsPerForum)
	if err != nil {
		c.logger.Warn("topic enumeration failed, skipping forum", "stream", stream.Name, "error", err)
		return nil
	}

	var records []domain.Conversation
	for _, topic := range topics {
		if topic.Title == "" {
			continue
		}

		raw, err := c.source.TopicMessages(ctx, stream, topic, MaxMessagesPerStream)
		if err != nil {
			c.logger.Warn("fetch failed, skipping topic",
				"stream", stream.Name, "topic", topic.Title, "error", err)
			continue
		}

		messages := normalizeAll(raw, start, end, self)
		if len(messages) == 0 {
			continue
		}

		records = append(records, domain.Conversation{
			ChatName: stream.Name,
			Kind:     domain.KindGroup,
			Topic:    topic.Title,
			Messages: messages,
		})
	}
	return records
}

// normalizeAll filters raw messages to the inclusive window and sorts
// the survivors ascending by timestamp.
func normalizeAll(raw []domain.RawMessage, start, end time.Time, self string) []domain.Message {
	var messages []domain.Message
	for _, r := range raw {
		sentAt := r.SentAt.UTC()
		if sentAt.Before(start) || sentAt.After(end) {
			continue
		}
		msg, ok := Normalize(r, self)
		if !ok {
			continue
		}
		messages = append(messages, msg)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
	return messages
}

// assemble builds the final snapshot, recomputing the summary counters
// from the assembled conversations rather than intermediate state.
func assemble(conversations []domain.Conversation, chats map[string]struct{}, start, end time.Time, testMode bool) domain.Snapshot {
	total := 0
	for _, conv := range conversations {
		total += len(conv.Messages)
	}

	return domain.Snapshot{
		Metadata: domain.Metadata{
			DateRange: domain.DateRange{
				Start: start.Format(time.RFC3339),
				End:   end.Format(time.RFC3339),
			},
			TotalChats:     len(chats),
			TotalMessages:  total,
			CollectionTime: time.Now().UTC().Format(time.RFC3339),
			TestMode:       testMode,
		},
		Conversations: conversations,
	}
}

func streamLimit(shortRange, testMode bool) int {
	if testMode {
		return TestModeStreamLimit
	}
	if shortRange {
		return 0
	}
	return MaxStreams
}

func queryMode(shortRange bool) string {
	if shortRange {
		return "recent"
	}
	return "historical"
}
