// Package export implements a stream source backed by a directory of
// chat export JSON files, one file per conversation. It lets the
// pipeline run against exported history without a live platform
// session; forums are not represented in exports, so every stream is
// flat.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ChatDigest/internal/domain"
	"ChatDigest/internal/ports"
)

const exportDateLayout = "2006-01-02T15:04:05"

// Source reads conversation streams from exported JSON files.
type Source struct {
	dir      string
	selfName string

	chats map[string]exportedChat
}

var _ ports.StreamSource = (*Source)(nil)

// NewSource scans dir for *.json export files. selfName is reported as
// the collecting account's identity.
func NewSource(dir, selfName string) *Source {
	return &Source{dir: dir, selfName: selfName}
}

// exportedChat is the root structure of one export file.
type exportedChat struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Messages []exportedMessage `json:"messages"`
}

type exportedMessage struct {
	Type string          `json:"type"`
	Date string          `json:"date"`
	From string          `json:"from"`
	Text json.RawMessage `json:"text"`
}

// Streams loads every export file and yields one stream per chat,
// most recently active first. The explicit sort guarantees the recency
// ordering the collector's early-stop heuristic relies on.
func (s *Source) Streams(_ context.Context, limit int) ([]domain.Stream, error) {
	if err := s.load(); err != nil {
		return nil, err
	}

	streams := make([]domain.Stream, 0, len(s.chats))
	for name, chat := range s.chats {
		streams = append(streams, domain.Stream{
			Name:         name,
			Kind:         kindFromExportType(chat.Type),
			LastActivity: lastActivity(chat),
		})
	}

	sort.Slice(streams, func(i, j int) bool {
		return streams[i].LastActivity.After(streams[j].LastActivity)
	})

	if limit > 0 && len(streams) > limit {
		streams = streams[:limit]
	}
	return streams, nil
}

// Messages converts up to limit of the chat's newest messages, newest
// first, matching the live-platform fetch order.
func (s *Source) Messages(_ context.Context, stream domain.Stream, limit int) ([]domain.RawMessage, error) {
	chat, ok := s.chats[stream.Name]
	if !ok {
		return nil, fmt.Errorf("unknown stream %q", stream.Name)
	}

	var raw []domain.RawMessage
	for i := len(chat.Messages) - 1; i >= 0 && len(raw) < limit; i-- {
		msg := chat.Messages[i]
		if msg.Type != "" && msg.Type != "message" {
			continue
		}

		sentAt, err := time.Parse(exportDateLayout, msg.Date)
		if err != nil {
			continue
		}

		var sender *domain.Sender
		if msg.From != "" {
			sender = &domain.Sender{FirstName: msg.From}
		}

		raw = append(raw, domain.RawMessage{
			Sender: sender,
			Text:   flattenText(msg.Text),
			SentAt: sentAt.UTC(),
		})
	}
	return raw, nil
}

// Topics always yields nothing: export files carry no forum structure.
func (s *Source) Topics(context.Context, domain.Stream, int) ([]domain.Topic, error) {
	return nil, nil
}

// TopicMessages is unreachable for export-backed streams.
func (s *Source) TopicMessages(context.Context, domain.Stream, domain.Topic, int) ([]domain.RawMessage, error) {
	return nil, nil
}

// SelfIdentity returns the configured account display name.
func (s *Source) SelfIdentity(context.Context) (string, error) {
	if s.selfName == "" {
		return "", fmt.Errorf("export source: self name is not configured")
	}
	return s.selfName, nil
}

func (s *Source) load() error {
	if s.chats != nil {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("scan export dir: %w", err)
	}

	chats := make(map[string]exportedChat, len(matches))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read export %s: %w", path, err)
		}

		var chat exportedChat
		if err := json.Unmarshal(raw, &chat); err != nil {
			return fmt.Errorf("decode export %s: %w", path, err)
		}
		if chat.Name == "" {
			chat.Name = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		chats[chat.Name] = chat
	}

	s.chats = chats
	return nil
}

func kindFromExportType(exportType string) domain.ChatKind {
	switch {
	case strings.Contains(exportType, "channel"):
		return domain.KindChannel
	case strings.Contains(exportType, "group"):
		return domain.KindGroup
	default:
		return domain.KindChat
	}
}

func lastActivity(chat exportedChat) time.Time {
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		if ts, err := time.Parse(exportDateLayout, chat.Messages[i].Date); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// flattenText handles the export text field, which is either a plain
// string or an array mixing strings and entity objects.
func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range parts {
		var str string
		if err := json.Unmarshal(part, &str); err == nil {
			sb.WriteString(str)
			continue
		}
		var entity struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(part, &entity); err == nil {
			sb.WriteString(entity.Text)
		}
	}
	return sb.String()
}
