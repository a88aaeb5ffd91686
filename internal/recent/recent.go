// Package recent persists the recently opened files and workspaces
// shown in the file menu. The list lives in one JSON file, newest
// first, deduplicated, and capped so the menu stays short.
package recent

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultLimit caps each list.
const DefaultLimit = 10

type entries struct {
	Files      []string `json:"files"`
	Workspaces []string `json:"workspaces"`
}

// Store reads and writes the recent-entries file.
type Store struct {
	fsys   afero.Fs
	path   string
	limit  int
	logger *zap.Logger

	mu sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithLimit overrides the per-list cap.
func WithLimit(n int) StoreOption {
	return func(s *Store) { s.limit = n }
}

// NewStore creates a store backed by the JSON file at path.
func NewStore(fsys afero.Fs, path string, opts ...StoreOption) *Store {
	s := &Store{
		fsys:   fsys,
		path:   path,
		limit:  DefaultLimit,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TouchFile moves path to the front of the recent-files list.
func (s *Store) TouchFile(path string) error {
	return s.update(func(e *entries) {
		e.Files = promote(e.Files, path, s.limit)
	})
}

// TouchWorkspace moves path to the front of the recent-workspaces list.
func (s *Store) TouchWorkspace(path string) error {
	return s.update(func(e *entries) {
		e.Workspaces = promote(e.Workspaces, path, s.limit)
	})
}

// RemoveFile drops a stale entry, typically after the user confirmed
// that a missing file should be forgotten.
func (s *Store) RemoveFile(path string) error {
	return s.update(func(e *entries) {
		e.Files = remove(e.Files, path)
	})
}

// RemoveWorkspace drops a stale workspace entry.
func (s *Store) RemoveWorkspace(path string) error {
	return s.update(func(e *entries) {
		e.Workspaces = remove(e.Workspaces, path)
	})
}

// Clear empties both lists.
func (s *Store) Clear() error {
	return s.update(func(e *entries) {
		e.Files = nil
		e.Workspaces = nil
	})
}

// Files returns the recent files, newest first.
func (s *Store) Files() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.load()
	if err != nil {
		return nil, err
	}
	return e.Files, nil
}

// Workspaces returns the recent workspaces, newest first.
func (s *Store) Workspaces() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.load()
	if err != nil {
		return nil, err
	}
	return e.Workspaces, nil
}

func (s *Store) update(mutate func(*entries)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.load()
	if err != nil {
		return err
	}
	mutate(&e)
	return s.save(e)
}

func (s *Store) load() (entries, error) {
	data, err := afero.ReadFile(s.fsys, s.path)
	if err != nil {
		if _, statErr := s.fsys.Stat(s.path); statErr != nil {
			// Nothing stored yet.
			return entries{}, nil
		}
		return entries{}, errors.Wrapf(err, "failed to read recent entries %q", s.path)
	}

	var e entries
	if err := json.Unmarshal(data, &e); err != nil {
		// A corrupt file should not wedge the menu forever; start over.
		s.logger.Warn("recent entries file is corrupt, resetting",
			zap.String("path", s.path), zap.Error(err))
		return entries{}, nil
	}
	return e, nil
}

func (s *Store) save(e entries) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode recent entries")
	}
	if err := s.fsys.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create state directory for %q", s.path)
	}
	if err := afero.WriteFile(s.fsys, s.path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write recent entries %q", s.path)
	}
	return nil
}

// promote moves path to the front, dropping duplicates and anything
// past the cap.
func promote(list []string, path string, limit int) []string {
	out := append([]string{path}, remove(list, path)...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func remove(list []string, path string) []string {
	out := list[:0:0]
	for _, p := range list {
		if p != path {
			out = append(out, p)
		}
	}
	return out
}
