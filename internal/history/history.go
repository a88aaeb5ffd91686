// Package history keeps point-in-time copies of saved documents under
// the state directory. Every successful save may deposit one snapshot;
// losing a snapshot is never allowed to fail the save that produced it,
// so all methods report errors for the caller to log and move past.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	oklogulid "github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/ulid"
)

// Trigger records what kind of save produced a snapshot. Retention is
// tracked per trigger, so frequent auto saves cannot evict the manual
// ones.
type Trigger string

// Snapshot triggers.
const (
	TriggerManual Trigger = "manual"
	TriggerAuto   Trigger = "auto"
	TriggerClose  Trigger = "close"
)

const snapshotExt = ".md"

// DefaultRetention is how many snapshots of one trigger are kept per
// document before the oldest are pruned.
const DefaultRetention = 20

// Snapshot describes one stored copy.
type Snapshot struct {
	// ID is the snapshot's ULID, which doubles as its creation order.
	ID      string
	Trigger Trigger
	// TakenAt is recovered from the ULID timestamp.
	TakenAt time.Time

	file string
}

// Store writes and prunes snapshots on a filesystem.
type Store struct {
	fsys   afero.Fs
	dir    string
	keep   map[Trigger]int
	logger *zap.Logger

	mu sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithRetention overrides how many snapshots of a trigger survive per
// document. Zero or negative disables pruning for that trigger.
func WithRetention(trigger Trigger, n int) StoreOption {
	return func(s *Store) { s.keep[trigger] = n }
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(fsys afero.Fs, dir string, opts ...StoreOption) *Store {
	s := &Store{
		fsys: fsys,
		dir:  dir,
		keep: map[Trigger]int{
			TriggerManual: DefaultRetention,
			TriggerAuto:   DefaultRetention,
			TriggerClose:  DefaultRetention,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot stores a copy of content for the document at path and prunes
// older snapshots of the same trigger past the retention limit.
func (s *Store) Snapshot(path, content string, trigger Trigger) (Snapshot, error) {
	if path == "" {
		return Snapshot{}, errors.New("cannot snapshot a document without a path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, pathKey(path))
	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return Snapshot{}, errors.Wrapf(err, "failed to create snapshot directory %q", dir)
	}

	id := ulid.GenerateID()
	file := filepath.Join(dir, id+"."+string(trigger)+snapshotExt)
	if err := afero.WriteFile(s.fsys, file, []byte(content), 0o600); err != nil {
		return Snapshot{}, errors.Wrapf(err, "failed to write snapshot %q", file)
	}

	s.prune(dir, trigger)

	s.logger.Debug("snapshot stored",
		zap.String("path", path),
		zap.String("id", id),
		zap.String("trigger", string(trigger)))

	return Snapshot{ID: id, Trigger: trigger, TakenAt: takenAt(id), file: file}, nil
}

// List returns the document's snapshots, newest first.
func (s *Store) List(path string) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps, err := s.scan(filepath.Join(s.dir, pathKey(path)))
	if err != nil {
		return nil, err
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID > snaps[j].ID })
	return snaps, nil
}

// Content returns a snapshot's stored text.
func (s *Store) Content(snap Snapshot) (string, error) {
	data, err := afero.ReadFile(s.fsys, snap.file)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read snapshot %q", snap.ID)
	}
	return string(data), nil
}

// Clear removes every snapshot of one document.
func (s *Store) Clear(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, pathKey(path))
	if err := s.fsys.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "failed to clear snapshots for %q", path)
	}
	return nil
}

// ClearAll removes the whole snapshot tree.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fsys.RemoveAll(s.dir); err != nil {
		return errors.Wrap(err, "failed to clear snapshot store")
	}
	return nil
}

// prune drops the oldest same-trigger snapshots past the retention
// limit. ULID names sort chronologically, so lexicographic order is
// creation order.
func (s *Store) prune(dir string, trigger Trigger) {
	limit := s.keep[trigger]
	if limit <= 0 {
		return
	}

	snaps, err := s.scan(dir)
	if err != nil {
		s.logger.Warn("snapshot pruning skipped", zap.Error(err))
		return
	}

	var same []Snapshot
	for _, snap := range snaps {
		if snap.Trigger == trigger {
			same = append(same, snap)
		}
	}
	sort.Slice(same, func(i, j int) bool { return same[i].ID < same[j].ID })

	for len(same) > limit {
		if err := s.fsys.Remove(same[0].file); err != nil {
			s.logger.Warn("failed to prune snapshot",
				zap.String("id", same[0].ID), zap.Error(err))
			return
		}
		same = same[1:]
	}
}

func (s *Store) scan(dir string) ([]Snapshot, error) {
	infos, err := afero.ReadDir(s.fsys, dir)
	if err != nil {
		if _, statErr := s.fsys.Stat(dir); statErr != nil {
			// No directory means no snapshots yet.
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read snapshot directory %q", dir)
	}

	var snaps []Snapshot
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		snap, ok := parseName(info.Name())
		if !ok {
			continue
		}
		snap.file = filepath.Join(dir, info.Name())
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// parseName splits "<ulid>.<trigger>.md" into its parts.
func parseName(name string) (Snapshot, bool) {
	name = strings.TrimSuffix(name, snapshotExt)
	id, trigger, ok := strings.Cut(name, ".")
	if !ok || !ulid.ValidID(id) {
		return Snapshot{}, false
	}
	switch Trigger(trigger) {
	case TriggerManual, TriggerAuto, TriggerClose:
	default:
		return Snapshot{}, false
	}
	return Snapshot{ID: id, Trigger: Trigger(trigger), TakenAt: takenAt(id)}, true
}

func takenAt(id string) time.Time {
	parsed, err := oklogulid.ParseStrict(id)
	if err != nil {
		return time.Time{}
	}
	return oklogulid.Time(parsed.Time())
}

// pathKey folds a document path into a stable directory name.
func pathKey(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:8])
}
