package guard

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultDropTimeout bounds how long a window may hold the drop lock.
// OS drop events fire in every open window at once, so the first window
// to stamp the token wins and the others back off. The timeout keeps a
// crashed winner from wedging drops forever.
const DefaultDropTimeout = 500 * time.Millisecond

// TokenStore persists the drop-lock timestamp somewhere every window
// can see: in memory when windows share a process, on disk otherwise.
type TokenStore interface {
	// Load returns the stored stamp. ok is false when no stamp exists.
	Load() (stamp time.Time, ok bool, err error)
	Save(stamp time.Time) error
	Clear() error
}

// DropLock coordinates which window handles a file-drop event.
type DropLock struct {
	store   TokenStore
	timeout time.Duration
	now     func() time.Time
}

// NewDropLock creates a drop lock over the given store. A non-positive
// timeout falls back to DefaultDropTimeout.
func NewDropLock(store TokenStore, timeout time.Duration) *DropLock {
	if timeout <= 0 {
		timeout = DefaultDropTimeout
	}
	return &DropLock{
		store:   store,
		timeout: timeout,
		now:     time.Now,
	}
}

// TryAcquire stamps the token and returns true when no live stamp
// exists, i.e. the store is empty or the previous stamp is older than
// the timeout. Store errors count as "not acquired" so two windows can
// never both proceed.
func (l *DropLock) TryAcquire() bool {
	now := l.now()

	stamp, ok, err := l.store.Load()
	if err != nil {
		return false
	}
	if ok && now.Sub(stamp) < l.timeout {
		return false
	}
	return l.store.Save(now) == nil
}

// Release clears the token unconditionally. A window that finished its
// drop handling calls this; a window that crashed never does, and the
// timeout takes over.
func (l *DropLock) Release() {
	_ = l.store.Clear()
}

// MemoryTokenStore keeps the stamp in process memory. Suitable when all
// windows run in one process.
type MemoryTokenStore struct {
	mu    sync.Mutex
	stamp time.Time
	set   bool
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Load implements TokenStore.
func (s *MemoryTokenStore) Load() (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stamp, s.set, nil
}

// Save implements TokenStore.
func (s *MemoryTokenStore) Save(stamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp = stamp
	s.set = true
	return nil
}

// Clear implements TokenStore.
func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp = time.Time{}
	s.set = false
	return nil
}

// FileTokenStore persists the stamp as unix nanoseconds in a small file,
// shared by windows running in separate processes.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store writing to path. The parent
// directory is created on the first Save.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load implements TokenStore.
func (s *FileTokenStore) Load() (time.Time, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "failed to read drop lock")
	}

	nanos, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		// A mangled stamp is treated as absent; the next Save overwrites it.
		return time.Time{}, false, nil
	}
	return time.Unix(0, nanos), true, nil
}

// Save implements TokenStore.
func (s *FileTokenStore) Save(stamp time.Time) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create drop lock dir")
	}
	data := strconv.FormatInt(stamp.UnixNano(), 10)
	return errors.Wrap(os.WriteFile(s.path, []byte(data), 0o644), "failed to write drop lock")
}

// Clear implements TokenStore.
func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "failed to clear drop lock")
}
