package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"ChatDigest/internal/ports"
)

const runsBucket = "runs"

// RunStore implements ports.RunRepository on a local bolt file. Records
// are keyed "<account>/<runkey>", so a cursor seek over the account
// prefix finds the newest run without scanning the whole history.
type RunStore struct {
	path string
}

var _ ports.RunRepository = (*RunStore)(nil)

// NewRunStore creates the parent directory and returns a store for the
// given bolt file path. The file itself is created lazily on first use.
func NewRunStore(path string) (*RunStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create run store dir: %w", err)
	}
	return &RunStore{path: path}, nil
}

// Save appends one run record to the history.
func (s *RunStore) Save(rec ports.RunRecord) error {
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer func() { _ = db.Close() }()

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		if err != nil {
			return err
		}
		enc, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.Account+"/"+rec.RunKey), enc)
	})
}

// Last returns the most recent run record for an account, if any.
func (s *RunStore) Last(account string) (ports.RunRecord, bool, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ports.RunRecord{}, false, nil
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return ports.RunRecord{}, false, fmt.Errorf("open run store: %w", err)
	}
	defer func() { _ = db.Close() }()

	var (
		rec   ports.RunRecord
		found bool
	)
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if b == nil {
			return nil
		}

		prefix := []byte(account + "/")
		c := b.Cursor()
		var last []byte
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			last = v
		}
		if last == nil {
			return nil
		}
		if err := json.Unmarshal(last, &rec); err != nil {
			// Skip a malformed record instead of failing the lookup.
			return nil
		}
		found = true
		return nil
	})
	if err != nil {
		return ports.RunRecord{}, false, err
	}
	return rec, found, nil
}
