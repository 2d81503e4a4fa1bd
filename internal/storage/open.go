//go:build !tinygo

// Package storage opens the task store a config names.
package storage

import (
	"fmt"
	"path/filepath"

	"kiosk/internal/config"
	"kiosk/kiosk/store"
	"kiosk/kiosk/store/sqlite"
)

// Open returns the configured store and a func that releases it.
func Open(cfg config.StoreConfig) (store.Store, func() error, error) {
	nop := func() error { return nil }
	switch cfg.Backend {
	case config.StoreMemory:
		return store.NewMemory(), nop, nil
	case config.StoreJSON:
		s, err := store.OpenJSON(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nop, nil
	case config.StoreSQLite:
		r, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

// WatchDir is the directory whose changes mean the store was written by
// someone else. It is empty for the memory backend.
func WatchDir(cfg config.StoreConfig) string {
	switch cfg.Backend {
	case config.StoreJSON:
		return cfg.Path
	case config.StoreSQLite:
		return filepath.Dir(cfg.Path)
	default:
		return ""
	}
}
