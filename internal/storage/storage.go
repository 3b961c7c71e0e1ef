// Package storage implements the local blob store that backs all persisted
// state. The whole data set lives in one JSON file laid out as named blobs
// (matrixUsers, matrixTransactions, matrixSession, matrixBackup), mirroring a
// browser key-value store: single writer, last-write-wins, read-after-write
// consistent, whole-file rewrite on every commit.
package storage

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/matrix-system/matrix-pay/internal/domain"
)

// ErrNotFound indicates a missing record.
var ErrNotFound = errors.New("not found")

// Snapshot is the decoded content of the store file.
type Snapshot struct {
	Users        []domain.User        `json:"matrixUsers"`
	Transactions []domain.Transaction `json:"matrixTransactions"`
	Session      *domain.Session      `json:"matrixSession"`
	Backup       *domain.Backup       `json:"matrixBackup,omitempty"`
}

// Store is a file backed snapshot store.
type Store struct {
	mu   sync.RWMutex
	file *os.File
	snap *Snapshot
	path string
}

// Open opens or creates the store file at path. A store with no users is
// seeded with the default data set.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}

	s := &Store{file: f, path: path}
	if err := s.load(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying file.
func (s *Store) Close() error { return s.file.Close() }

func (s *Store) load() error {
	info, err := s.file.Stat()
	if err != nil {
		return err
	}

	if info.Size() == 0 {
		s.snap = &Snapshot{}
	} else {
		dec := json.NewDecoder(s.file)

		var snap Snapshot
		if err := dec.Decode(&snap); err != nil {
			return err
		}

		s.snap = &snap
	}

	if len(s.snap.Users) == 0 {
		s.snap.Users = SeedUsers()
		return s.flushLocked()
	}

	return nil
}

func (s *Store) flushLocked() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	enc := json.NewEncoder(s.file)
	enc.SetIndent("", "  ")

	if err := enc.Encode(s.snap); err != nil {
		return err
	}

	// Truncate in case the new content is shorter.
	pos, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	if err := s.file.Truncate(pos); err != nil {
		return err
	}

	return s.file.Sync()
}

// View runs fn against the snapshot under a read lock. fn must not retain or
// mutate anything it reads.
func (s *Store) View(fn func(*Snapshot) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(s.snap)
}

// Update runs fn against the snapshot under the write lock and flushes once
// on success. Every mutation fn makes is committed atomically: either the
// whole new snapshot is on disk or none of it is applied.
func (s *Store) Update(fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.snap); err != nil {
		return err
	}

	return s.flushLocked()
}
