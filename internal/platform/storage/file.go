package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/rs/zerolog"
)

const defaultLockTTL = 5 * time.Minute

// File is comp storage kept in a single JSON file mapping cache keys to comps.
// The file is read fully on every Get and rewritten fully on every Put.
// Writers from other processes are excluded with a lock file.
type File struct {
	path    string
	lockTTL time.Duration
	logger  *zerolog.Logger
	mu      sync.Mutex
}

// NewFile returns new File storage at path.
func NewFile(path string, logger *zerolog.Logger) *File {
	return &File{
		path:    path,
		lockTTL: defaultLockTTL,
		logger:  logger,
	}
}

// Get returns comp stored under key or nil if there is none.
// Missing or malformed file is treated as empty, malformed entry as missing.
func (f *File) Get(_ context.Context, key string) (*models.ResaleComp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := f.load()

	raw, ok := entries[key]
	if !ok {
		return nil, nil
	}

	var entry compEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		f.logger.Warn().
			Err(err).
			Str("query", key).
			Msg("skipping malformed cache entry")
		return nil, nil
	}

	comp, err := fromEntry(entry)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("query", key).
			Msg("skipping malformed cache entry")
		return nil, nil
	}

	return comp, nil
}

// Put stores comp under key and rewrites the file atomically.
// It returns ErrLocked when another writer holds the lock.
func (f *File) Put(ctx context.Context, key string, comp models.ResaleComp) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	lockPath := f.path + ".lock"
	if err := acquireLock(lockPath, f.lockTTL); err != nil {
		return fmt.Errorf("can't lock cache file: %w", err)
	}
	defer releaseLock(lockPath)

	entries := f.load()

	raw, err := json.Marshal(toEntry(comp))
	if err != nil {
		return fmt.Errorf("can't encode comp: %w", err)
	}
	entries[key] = raw

	if err := f.write(entries); err != nil {
		return fmt.Errorf("can't write cache file: %w", err)
	}

	return nil
}

func (f *File) load() map[string]json.RawMessage {
	entries := map[string]json.RawMessage{}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries
	}
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("path", f.path).
			Msg("can't read cache file, starting cold")
		return entries
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		f.logger.Warn().
			Err(err).
			Str("path", f.path).
			Msg("can't parse cache file, starting cold")
		return map[string]json.RawMessage{}
	}

	return entries
}

func (f *File) write(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
