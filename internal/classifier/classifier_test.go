package classifier

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ChatDigest/internal/domain"
)

type fakeModel struct {
	replies map[string]string // keyed by "Channel: <name>" first line match
	err     error
	calls   int
	prompts []string
}

func (f *fakeModel) Complete(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, user)
	if f.err != nil {
		return "", f.err
	}
	for key, reply := range f.replies {
		if strings.Contains(user, key) {
			return reply, nil
		}
	}
	return "", nil
}

func conv(name, topic string, messages ...domain.Message) domain.Conversation {
	kind := domain.KindChat
	if topic != "" {
		kind = domain.KindGroup
	}
	return domain.Conversation{ChatName: name, Kind: kind, Topic: topic, Messages: messages}
}

func msg(name, content, timestamp string) domain.Message {
	return domain.Message{Name: name, Content: content, Timestamp: timestamp}
}

func TestClassifyOneCallPerConversation(t *testing.T) {
	t.Parallel()

	snap := domain.Snapshot{
		Conversations: []domain.Conversation{
			conv("berlin", "", msg("alice", "board games friday", "2024-12-02 10:00")),
			conv("burners", "General", msg("bob", "anyone has a ladder?", "2024-12-02 11:00")),
			conv("burners", "Events", msg("carol", "temple on saturday", "2024-12-02 12:00")),
		},
	}

	model := &fakeModel{replies: map[string]string{
		"Channel: berlin": `{"type":"event","summary":"Board games on Friday"}`,
	}}

	res := New(model, nil).Classify(context.Background(), snap, false)

	if model.calls != 3 {
		t.Fatalf("model calls = %d, want one per conversation (3)", model.calls)
	}
	if res.ModelCalls != 3 {
		t.Fatalf("result model calls = %d, want 3", res.ModelCalls)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}
	if res.Entries[0].SourceGroup != "berlin" {
		t.Fatalf("source group = %q", res.Entries[0].SourceGroup)
	}
}

func TestClassifyTopicSourceGroup(t *testing.T) {
	t.Parallel()

	snap := domain.Snapshot{
		Conversations: []domain.Conversation{
			conv("burners", "Events", msg("carol", "temple on saturday", "2024-12-02 12:00")),
		},
	}

	model := &fakeModel{replies: map[string]string{
		"Channel: burners": `{"type":"event","summary":"Temple on Saturday"}`,
	}}

	res := New(model, nil).Classify(context.Background(), snap, false)
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}
	if res.Entries[0].SourceGroup != "burners - Topic: Events" {
		t.Fatalf("source group = %q, want topic suffix", res.Entries[0].SourceGroup)
	}
}

func TestClassifyTestModeCap(t *testing.T) {
	t.Parallel()

	var conversations []domain.Conversation
	for i := 0; i < 5; i++ {
		conversations = append(conversations,
			conv(fmt.Sprintf("chat-%d", i), "", msg("alice", "hello", "2024-12-02 10:00")))
	}

	model := &fakeModel{}
	New(model, nil).Classify(context.Background(), domain.Snapshot{Conversations: conversations}, true)

	if model.calls != TestModeConversationLimit {
		t.Fatalf("test mode calls = %d, want %d", model.calls, TestModeConversationLimit)
	}
}

func TestClassifyModelFailureContained(t *testing.T) {
	t.Parallel()

	snap := domain.Snapshot{
		Conversations: []domain.Conversation{
			conv("berlin", "", msg("alice", "hello", "2024-12-02 10:00")),
			conv("munich", "", msg("bob", "hello", "2024-12-02 10:00")),
		},
	}

	model := &fakeModel{err: fmt.Errorf("rate limited")}
	res := New(model, nil).Classify(context.Background(), snap, false)

	if model.calls != 2 {
		t.Fatalf("failure must not abort the batch: calls = %d", model.calls)
	}
	if len(res.Entries) != 0 {
		t.Fatalf("expected zero entries, got %d", len(res.Entries))
	}
}

func TestClassifyUnparseableReplyContained(t *testing.T) {
	t.Parallel()

	snap := domain.Snapshot{
		Conversations: []domain.Conversation{
			conv("berlin", "", msg("alice", "hello", "2024-12-02 10:00")),
		},
	}

	model := &fakeModel{replies: map[string]string{
		"Channel: berlin": "Nothing relevant here, just chatter.",
	}}

	res := New(model, nil).Classify(context.Background(), snap, false)
	if len(res.Entries) != 0 {
		t.Fatalf("prose reply must yield zero entries, got %d", len(res.Entries))
	}
	if res.Processed != 1 {
		t.Fatalf("conversation must still count as processed")
	}
}

func TestRenderTranscript(t *testing.T) {
	t.Parallel()

	// 2024-12-02 is a Monday.
	transcript := renderTranscript(conv("burners", "Events",
		msg("alice", "temple on saturday", "2024-12-02 10:00")))

	if !strings.HasPrefix(transcript, "Channel: burners\nTopic: Events\n\nMessages:\n") {
		t.Fatalf("unexpected transcript header:\n%s", transcript)
	}
	if !strings.Contains(transcript, "[Monday 2024-12-02 10:00] alice: temple on saturday") {
		t.Fatalf("message line missing weekday prefix:\n%s", transcript)
	}
}
