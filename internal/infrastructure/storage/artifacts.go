// Package storage persists per-run artifacts and the run history.
//
// Artifacts are flat JSON files under a per-account namespace:
//
//	<root>/<account>/messages/messages_<runkey>.json
//	<root>/<account>/analysis/filtered_<runkey>.json
//
// where <runkey> is the YYYY-MM-DD_HH-MM run timestamp shared by both
// stages of a run.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ChatDigest/internal/domain"
	"ChatDigest/internal/ports"
)

// ErrNoSnapshot is returned when no prior collection run has been
// persisted for the account. Unlike per-stream or per-conversation
// failures this is a hard error: there is nothing to process.
var ErrNoSnapshot = errors.New("no snapshot found")

const (
	messagesDir  = "messages"
	analysisDir  = "analysis"
	snapshotStem = "messages_"
	digestStem   = "filtered_"
)

// ArtifactStore implements ports.ArtifactRepository on the local
// filesystem.
type ArtifactStore struct {
	root    string
	account string
}

var _ ports.ArtifactRepository = (*ArtifactStore)(nil)

// NewArtifactStore scopes a store to one account's namespace.
func NewArtifactStore(root, account string) *ArtifactStore {
	return &ArtifactStore{root: root, account: account}
}

// SaveSnapshot writes the snapshot for a run and returns the file path.
func (s *ArtifactStore) SaveSnapshot(runKey string, snap domain.Snapshot) (string, error) {
	dir := filepath.Join(s.root, s.account, messagesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create messages dir: %w", err)
	}

	path := filepath.Join(dir, snapshotStem+runKey+".json")
	if err := writeJSON(path, snap); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LatestSnapshot loads the most recent persisted snapshot and its run
// key. Run keys sort lexicographically in chronological order, so the
// newest file is the one with the greatest name.
func (s *ArtifactStore) LatestSnapshot() (domain.Snapshot, string, error) {
	dir := filepath.Join(s.root, s.account, messagesDir)
	matches, err := filepath.Glob(filepath.Join(dir, snapshotStem+"*.json"))
	if err != nil {
		return domain.Snapshot{}, "", fmt.Errorf("list snapshots: %w", err)
	}
	if len(matches) == 0 {
		return domain.Snapshot{}, "", fmt.Errorf("account %s: %w", s.account, ErrNoSnapshot)
	}

	sort.Strings(matches)
	path := matches[len(matches)-1]

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Snapshot{}, "", fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, "", fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".json")
	runKey := strings.TrimPrefix(stem, snapshotStem)
	return snap, runKey, nil
}

// SaveDigest writes the rendered notices for a run, keyed by the same
// run timestamp as the snapshot they were derived from.
func (s *ArtifactStore) SaveDigest(runKey string, notices []string) (string, error) {
	dir := filepath.Join(s.root, s.account, analysisDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create analysis dir: %w", err)
	}

	if notices == nil {
		notices = []string{}
	}
	path := filepath.Join(dir, digestStem+runKey+".json")
	if err := writeJSON(path, notices); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return path, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
