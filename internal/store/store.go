// Package store persists the engine's learned state as named JSON documents.
// Each document is a whole file under the data directory, written atomically
// (temp file + rename) under a per-document advisory flock so that two
// processes cannot interleave partial writes.
//
// Corrupt or missing documents are never fatal: Load reports them as absent
// and the caller proceeds with a fresh default, so a damaged file costs at
// most the state it held.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store is a directory of named JSON documents.
type Store struct {
	dir    string
	logger *slog.Logger
	lock   LockOptions
}

// Options configures a Store.
type Options struct {
	Logger *slog.Logger
	Lock   LockOptions
}

// Open creates the data directory if needed and returns a Store over it.
func Open(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lock := opts.Lock
	if lock.Timeout == 0 && lock.RetryInterval == 0 {
		lock = DefaultLockOptions()
	}

	return &Store{dir: dir, logger: logger, lock: lock}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the named document into v. It returns true when the document
// existed and parsed; false when it was missing or corrupt, in which case
// v is left untouched and the caller should fall back to a default.
func (s *Store) Load(name string, v any) bool {
	path := filepath.Join(s.dir, name)

	lf, err := acquireLock(s.lockPath(name), s.lock)
	if err != nil {
		s.logger.Warn("document lock unavailable, reading unlocked", "document", name, "error", err)
	} else {
		defer lf.release() //nolint:errcheck
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("document unreadable, using defaults", "document", name, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("document corrupt, using defaults", "document", name, "error", err)
		return false
	}

	return true
}

// Save writes v as the named document, atomically replacing any previous
// content.
func (s *Store) Save(name string, v any) error {
	lf, err := acquireLock(s.lockPath(name), s.lock)
	if err != nil {
		return fmt.Errorf("lock document %s: %w", name, err)
	}
	defer lf.release() //nolint:errcheck

	return s.writeLocked(name, v)
}

// writeLocked marshals and atomically replaces the document. The caller
// holds the document lock.
func (s *Store) writeLocked(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write document %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close document %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace document %s: %w", name, err)
	}

	return nil
}

func (s *Store) lockPath(name string) string {
	return filepath.Join(s.dir, name+".lock")
}
