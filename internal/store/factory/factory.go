// Package factory opens the configured state backend.
package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"updatenotifier/internal/store"
	"updatenotifier/internal/store/filestore"
	"updatenotifier/internal/store/sqlite"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config selects a backend. Path is a directory for "file" and a database
// file for "sqlite"; empty means the per-user default.
type Config struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// New opens the store described by cfg.
func New(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		fs, err := filestore.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			dir, err := filestore.DefaultDir()
			if err != nil {
				return nil, fmt.Errorf("resolve config dir: %w", err)
			}
			path = filepath.Join(dir, "update-notifier.db")
		}
		if err := ensureParent(path); err != nil {
			return nil, err
		}
		db, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q (want %q or %q)", cfg.Backend, BackendFile, BackendSQLite)
	}
}

func ensureParent(path string) error {
	if path == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0755)
}
