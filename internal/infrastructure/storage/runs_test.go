package storage

import (
	"path/filepath"
	"testing"
	"time"

	"ChatDigest/internal/ports"
)

func runRecord(account, runKey string, end time.Time) ports.RunRecord {
	return ports.RunRecord{
		ID:          "test-" + runKey,
		Account:     account,
		RunKey:      runKey,
		WindowStart: end.Add(-24 * time.Hour),
		WindowEnd:   end,
		FinishedAt:  end,
		Chats:       2,
		Messages:    10,
	}
}

func TestRunStoreSaveAndLast(t *testing.T) {
	t.Parallel()

	store, err := NewRunStore(filepath.Join(t.TempDir(), "runs.bolt"))
	if err != nil {
		t.Fatalf("NewRunStore error: %v", err)
	}

	end := time.Date(2024, time.December, 2, 12, 0, 0, 0, time.UTC)
	if err := store.Save(runRecord("26193299", "2024-12-01_12-00", end.Add(-24*time.Hour))); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := store.Save(runRecord("26193299", "2024-12-02_12-00", end)); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	rec, ok, err := store.Last("26193299")
	if err != nil {
		t.Fatalf("Last error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a run record")
	}
	if rec.RunKey != "2024-12-02_12-00" {
		t.Fatalf("Last returned %q, want the newest run", rec.RunKey)
	}
	if !rec.WindowEnd.Equal(end) {
		t.Fatalf("window end = %v, want %v", rec.WindowEnd, end)
	}
}

func TestRunStoreLastEmpty(t *testing.T) {
	t.Parallel()

	store, err := NewRunStore(filepath.Join(t.TempDir(), "runs.bolt"))
	if err != nil {
		t.Fatalf("NewRunStore error: %v", err)
	}

	if _, ok, err := store.Last("26193299"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestRunStoreAccountIsolation(t *testing.T) {
	t.Parallel()

	store, err := NewRunStore(filepath.Join(t.TempDir(), "runs.bolt"))
	if err != nil {
		t.Fatalf("NewRunStore error: %v", err)
	}

	end := time.Date(2024, time.December, 2, 12, 0, 0, 0, time.UTC)
	if err := store.Save(runRecord("alpha", "2024-12-02_12-00", end)); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if _, ok, err := store.Last("beta"); err != nil || ok {
		t.Fatalf("beta must have no history: ok=%v err=%v", ok, err)
	}

	rec, ok, err := store.Last("alpha")
	if err != nil || !ok {
		t.Fatalf("alpha history missing: ok=%v err=%v", ok, err)
	}
	if rec.Account != "alpha" {
		t.Fatalf("account = %q, want alpha", rec.Account)
	}
}
