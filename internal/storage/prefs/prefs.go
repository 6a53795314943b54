// Package prefs is the file-backed preference store: one file per key
// under a data directory, written atomically via rename.
package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/despertad/wakefolder/internal/alarm"
	"github.com/despertad/wakefolder/internal/storage"
)

type Store struct {
	mu  sync.Mutex
	dir string
}

var _ storage.Store = (*Store)(nil)

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prefs - New - os.MkdirAll: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadAlarms(_ context.Context) ([]alarm.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.get(storage.KeyAlarms)
	if err != nil {
		return nil, fmt.Errorf("prefs - LoadAlarms - get: %w", err)
	}
	return storage.DecodeAlarms(b), nil
}

func (s *Store) SaveAlarms(_ context.Context, alarms []alarm.Alarm) error {
	b, err := storage.EncodeAlarms(alarms)
	if err != nil {
		return fmt.Errorf("prefs - SaveAlarms - storage.EncodeAlarms: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.put(storage.KeyAlarms, b); err != nil {
		return fmt.Errorf("prefs - SaveAlarms - put: %w", err)
	}
	return nil
}

func (s *Store) LoadLastFolder(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.get(storage.KeyLastFolder)
	if err != nil {
		return "", fmt.Errorf("prefs - LoadLastFolder - get: %w", err)
	}
	return string(b), nil
}

func (s *Store) SaveLastFolder(_ context.Context, folderURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.put(storage.KeyLastFolder, []byte(folderURI)); err != nil {
		return fmt.Errorf("prefs - SaveLastFolder - put: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) get(key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// put writes to a sibling temp file and renames it over the slot, so a
// crash mid-write never leaves a truncated payload behind.
func (s *Store) put(key string, b []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
