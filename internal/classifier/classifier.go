package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ChatDigest/internal/domain"
	"ChatDigest/internal/ports"
)

// TestModeConversationLimit caps how many conversations a test-mode
// classification inspects.
const TestModeConversationLimit = 3

// Result carries the classified entries together with per-run stats.
// Stats are returned rather than accumulated on the classifier so the
// same instance can serve concurrent runs.
type Result struct {
	Entries    []domain.ClassifiedEntry
	Processed  int
	ModelCalls int
}

// Classifier turns a snapshot into classified entries, one model call
// per conversation.
type Classifier struct {
	model  ports.ChatModel
	logger *slog.Logger
}

// New wires a chat model into a classifier.
func New(model ports.ChatModel, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{model: model, logger: logger}
}

// Classify renders each conversation as a transcript, asks the model
// for relevant items, and collects the parsed entries. Per-conversation
// failures (model or parse) are logged and contribute zero entries;
// they never abort the batch.
func (c *Classifier) Classify(ctx context.Context, snap domain.Snapshot, testMode bool) Result {
	conversations := snap.Conversations
	if testMode && len(conversations) > TestModeConversationLimit {
		c.logger.Info("test mode: limiting conversations", "limit", TestModeConversationLimit)
		conversations = conversations[:TestModeConversationLimit]
	}

	var res Result
	for _, conv := range conversations {
		if len(conv.Messages) == 0 {
			continue
		}

		group := groupName(conv)
		transcript := renderTranscript(conv)

		res.ModelCalls++
		reply, err := c.model.Complete(ctx, systemPrompt, transcript)
		if err != nil {
			c.logger.Error("model call failed, skipping conversation", "group", group, "error", err)
			continue
		}
		res.Processed++

		entries, err := parseReply(reply)
		if err != nil {
			c.logger.Error("unparseable model reply, skipping conversation",
				"group", group, "reply", reply, "error", err)
			continue
		}

		for _, e := range entries {
			res.Entries = append(res.Entries, domain.ClassifiedEntry{
				Kind:        domain.EntryKind(e.Type),
				Summary:     e.Summary,
				Details:     e.Details,
				SourceGroup: group,
			})
		}
	}

	c.logger.Info("classification finished",
		"processed", res.Processed, "model_calls", res.ModelCalls, "entries", len(res.Entries))
	return res
}

// groupName labels a conversation for the digest: the chat name, plus
// the topic for forum conversations.
func groupName(conv domain.Conversation) string {
	if conv.Topic != "" {
		return fmt.Sprintf("%s - Topic: %s", conv.ChatName, conv.Topic)
	}
	return conv.ChatName
}

// renderTranscript serializes a conversation for the model's user turn.
func renderTranscript(conv domain.Conversation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Channel: %s\n", conv.ChatName)
	if conv.Topic != "" {
		fmt.Fprintf(&sb, "Topic: %s\n", conv.Topic)
	}
	sb.WriteString("\nMessages:\n")

	for _, msg := range conv.Messages {
		if ts, err := time.Parse("2006-01-02 15:04", msg.Timestamp); err == nil {
			fmt.Fprintf(&sb, "[%s %s] %s: %s\n", ts.Weekday(), msg.Timestamp, msg.Name, msg.Content)
		} else {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Name, msg.Content)
		}
	}
	return sb.String()
}
