// Package jsonfile provides a JSON file-based review progress store.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"syscall"

	"github.com/samber/lo"

	"github.com/hay-kot/parley/internal/core/words"
)

// ProgressFile is the root JSON structure stored on disk.
type ProgressFile struct {
	// Known maps a user id to the ids of words marked known.
	Known map[string][]words.ID `json:"known"`
}

// Store implements words.ProgressStore using a JSON file for persistence.
type Store struct {
	path string
	mu   sync.RWMutex
}

var _ words.ProgressStore = (*Store)(nil)

// New creates a new JSON file store at the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Known returns the set of known word ids for userID.
func (s *Store) Known(ctx context.Context, userID string) (map[words.ID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var file ProgressFile
	err := s.withFileLock(syscall.LOCK_SH, func() error {
		var err error
		file, err = s.load()
		return err
	})
	if err != nil {
		return nil, err
	}

	return lo.SliceToMap(file.Known[userID], func(id words.ID) (words.ID, bool) {
		return id, true
	}), nil
}

// SetKnown marks or unmarks a word for userID.
func (s *Store) SetKnown(ctx context.Context, userID string, id words.ID, known bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(syscall.LOCK_EX, func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		if file.Known == nil {
			file.Known = map[string][]words.ID{}
		}

		ids := slices.DeleteFunc(file.Known[userID], func(existing words.ID) bool {
			return existing == id
		})
		if known {
			ids = append(ids, id)
		}

		if len(ids) == 0 {
			delete(file.Known, userID)
		} else {
			file.Known[userID] = ids
		}

		return s.save(file)
	})
}

// withFileLock holds a flock on a sibling lock file while fn runs so two
// parley processes do not interleave read-modify-write cycles.
func (s *Store) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// load reads the progress file from disk.
// Returns an empty ProgressFile if the file doesn't exist.
func (s *Store) load() (ProgressFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ProgressFile{}, nil
		}
		return ProgressFile{}, fmt.Errorf("read progress file: %w", err)
	}

	if len(data) == 0 {
		return ProgressFile{}, nil
	}

	var file ProgressFile
	if err := json.Unmarshal(data, &file); err != nil {
		return ProgressFile{}, fmt.Errorf("parse progress file: %w", err)
	}

	return file, nil
}

// save writes the progress file to disk atomically.
func (s *Store) save(file ProgressFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
