package session

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/recent"
)

// StalePrompter asks whether a recent entry pointing at a missing file
// should be dropped from the list.
type StalePrompter interface {
	ConfirmRemoveStale(path string) (bool, error)
}

// Restorer reopens documents into a window's tab strip: the remembered
// workspace tabs at startup and single entries from the recent-files
// menu.
type Restorer struct {
	fsys     afero.Fs
	store    *document.Store
	sessions *Manager
	recents  *recent.Store
	prompter StalePrompter
	logger   *zap.Logger
}

// RestorerOption configures a Restorer.
type RestorerOption func(*Restorer)

// WithRecents lets OpenRecent maintain the recent-files list.
func WithRecents(recents *recent.Store) RestorerOption {
	return func(r *Restorer) { r.recents = recents }
}

// WithStalePrompter sets the dialog asking about stale recent entries.
func WithStalePrompter(p StalePrompter) RestorerOption {
	return func(r *Restorer) { r.prompter = p }
}

// WithRestorerLogger sets the logger.
func WithRestorerLogger(logger *zap.Logger) RestorerOption {
	return func(r *Restorer) { r.logger = logger }
}

// NewRestorer creates a restorer reading file content through fsys.
func NewRestorer(fsys afero.Fs, store *document.Store, sessions *Manager, opts ...RestorerOption) *Restorer {
	r := &Restorer{
		fsys:     fsys,
		store:    store,
		sessions: sessions,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetStalePrompter attaches the shell dialog asking about stale recent
// entries. Until set, stale entries are only logged.
func (r *Restorer) SetStalePrompter(p StalePrompter) { r.prompter = p }

// RestoreTabs reopens the remembered paths into the window, in order,
// and focuses the leftmost restored tab. Unreadable entries are logged
// and skipped; one bad path never aborts the rest.
func (r *Restorer) RestoreTabs(window string, paths []string) []Tab {
	var tabs []Tab
	for _, path := range paths {
		tab, ok := r.openPath(window, path)
		if !ok {
			continue
		}
		tabs = append(tabs, tab)
	}
	if len(tabs) > 0 {
		r.sessions.ActivateTab(window, tabs[0].ID)
	}
	return tabs
}

// OpenRecent opens one recent-files entry. A vanished file asks whether
// to drop the entry and opens nothing either way. Reopening a path the
// window already shows activates the existing tab instead of
// duplicating it.
func (r *Restorer) OpenRecent(window, path string) (Tab, bool) {
	if id, ok := r.store.ByPath(path); ok {
		if label, tab, found := r.sessions.FindDocument(id); found && label == window {
			r.sessions.ActivateTab(window, tab.ID)
			return tab, true
		}
	}

	if exists, err := afero.Exists(r.fsys, path); err == nil && !exists {
		r.dropStale(path)
		return Tab{}, false
	}

	tab, ok := r.openPath(window, path)
	if !ok {
		return Tab{}, false
	}
	if r.recents != nil {
		if err := r.recents.TouchFile(path); err != nil {
			r.logger.Warn("could not update recent files", zap.Error(err))
		}
	}
	return tab, true
}

func (r *Restorer) openPath(window, path string) (Tab, bool) {
	data, err := afero.ReadFile(r.fsys, path)
	if err != nil {
		r.logger.Warn("skipping unreadable file",
			zap.String("path", path),
			zap.Error(err))
		return Tab{}, false
	}

	doc := r.store.Open(string(data), path)
	tab, ok := r.sessions.AddTab(window, doc.ID, DeriveTitle(path))
	if !ok {
		r.store.Close(doc.ID)
		return Tab{}, false
	}
	return tab, true
}

// dropStale asks about a vanished recent entry and removes it on
// consent.
func (r *Restorer) dropStale(path string) {
	r.logger.Info("recent entry points at a missing file", zap.String("path", path))
	if r.prompter == nil || r.recents == nil {
		return
	}

	remove, err := r.prompter.ConfirmRemoveStale(path)
	if err != nil {
		r.logger.Warn("stale entry prompt failed", zap.Error(err))
		return
	}
	if !remove {
		return
	}
	if err := r.recents.RemoveFile(path); err != nil {
		r.logger.Warn("could not remove stale entry", zap.Error(err))
	}
}
