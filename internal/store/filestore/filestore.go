// Package filestore keeps one JSON document per application identifier.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"updatenotifier/internal/store"
)

// Store writes <dir>/<appID>.json.
type Store struct {
	dir string
}

// DefaultDir returns <user config dir>/configstore.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "configstore"), nil
}

// New returns a store rooted at dir. An empty dir selects DefaultDir.
// The directory is created lazily on the first Set.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = d
	}
	return &Store{dir: dir}, nil
}

// Path returns the file backing appID.
func (s *Store) Path(appID string) string {
	return filepath.Join(s.dir, appID+".json")
}

func (s *Store) Get(_ context.Context, appID string) (store.CheckState, error) {
	var st store.CheckState
	data, err := os.ReadFile(s.Path(appID))
	if errors.Is(err, fs.ErrNotExist) {
		return st, store.ErrNotFound
	}
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parse %s: %w", s.Path(appID), err)
	}
	if st.LastChecked.IsZero() {
		return st, fmt.Errorf("parse %s: missing last_checked", s.Path(appID))
	}
	return st, nil
}

// Set replaces the document atomically via a temp file and rename.
func (s *Store) Set(_ context.Context, appID string, state store.CheckState) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(s.dir, appID+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.Path(appID)); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func (s *Store) Close() error { return nil }
