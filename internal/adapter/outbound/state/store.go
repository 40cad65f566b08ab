package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/fitness-app/fitclient/internal/domain/session"
)

// FileStore implements session.Store on top of a JSON file.
//
// Reads are cached by the xxhash digest of the file contents, so an
// unchanged file is not parsed again and a change made by another process is
// picked up on the next read.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger

	cached *StoreFile
	digest uint64
}

// NewFileStore creates a store for the given path. The file and its parent
// directory are created on the first write.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Get returns the value under key or session.ErrKeyNotFound.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := file.Entries[key]
	if !ok {
		return "", session.ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *FileStore) Set(key, value string) error {
	return s.update(func(entries map[string]string) bool {
		if old, ok := entries[key]; ok && old == value {
			return false
		}
		entries[key] = value
		return true
	})
}

// Delete removes keys. Missing keys are not an error, and nothing is written
// when none of them exist.
func (s *FileStore) Delete(keys ...string) error {
	return s.update(func(entries map[string]string) bool {
		changed := false
		for _, k := range keys {
			if _, ok := entries[k]; ok {
				delete(entries, k)
				changed = true
			}
		}
		return changed
	})
}

// Load reads the whole document. A missing file yields an empty document.
func (s *FileStore) Load() (*StoreFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	return file.clone(), nil
}

// Changed reports whether the file on disk differs from what this store last
// read or wrote.
func (s *FileStore) Changed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.cached != nil && s.digest != 0, nil
	}
	if err != nil {
		return false, fmt.Errorf("read session file: %w", err)
	}
	return s.cached == nil || xxhash.Sum64(data) != s.digest, nil
}

// Exists returns true if the session file exists on disk.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the configured file path.
func (s *FileStore) Path() string {
	return s.path
}

// load returns the current document, parsing the file only when its digest
// changed. Callers hold s.mu.
func (s *FileStore) load() (*StoreFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.cached = emptyFile()
			s.digest = 0
			return s.cached, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	sum := xxhash.Sum64(data)
	if s.cached != nil && sum == s.digest {
		return s.cached, nil
	}

	s.warnPermissions()

	var file StoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if file.Entries == nil {
		file.Entries = make(map[string]string)
	}
	if s.cached != nil {
		s.logger.Debug("session file changed on disk", "path", s.path)
	}
	s.cached = &file
	s.digest = sum
	return s.cached, nil
}

func (s *FileStore) warnPermissions() {
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		s.logger.Warn("session file has too-open permissions, should be 0600",
			"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
	}
}

// update applies fn to a fresh copy of the entries and saves the result when
// fn reports a change. The cross-process lock is held across read and write.
func (s *FileStore) update(fn func(entries map[string]string) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	lockFile, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	current, err := s.load()
	if err != nil {
		return err
	}
	next := current.clone()
	if !fn(next.Entries) {
		return nil
	}
	return s.save(next)
}

// save writes file atomically. Callers hold s.mu and the file lock.
func (s *FileStore) save(file *StoreFile) error {
	file.Version = CurrentVersion
	file.UpdatedAt = time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = file.UpdatedAt
	}

	if currentData, readErr := os.ReadFile(s.path); readErr == nil {
		if writeErr := os.WriteFile(s.path+".bak", currentData, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "error", writeErr)
		}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session file: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on session file", "error", err)
	}

	s.cached = file
	s.digest = xxhash.Sum64(data)
	s.logger.Debug("session file saved", "path", s.path, "keys", len(file.Entries))
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it over the
// target path. On any error the temp file is removed.
func (s *FileStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to session file: %w", err)
	}
	return nil
}

func emptyFile() *StoreFile {
	return &StoreFile{
		Version: CurrentVersion,
		Entries: make(map[string]string),
	}
}

var _ session.Store = (*FileStore)(nil)
