package command

import (
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/menu"
)

const opOpenRecent = "open-recent"

// Opener loads a file or workspace into the window. Implementations
// handle entries whose path no longer exists, typically by offering to
// drop the stale entry.
type Opener interface {
	OpenFile(path string) error
	OpenWorkspace(path string) error
}

// RecentClearer empties the recent-entries list.
type RecentClearer interface {
	Clear() error
}

// RecentDispatcher routes the recent-files submenu. Opens share one
// guard key per window, so clicking a second entry while the first is
// still loading is dropped.
type RecentDispatcher struct {
	binding
	opener  Opener
	clearer RecentClearer
}

func NewRecentDispatcher(deps Deps, opener Opener, clearer RecentClearer) *RecentDispatcher {
	return &RecentDispatcher{binding: newBinding(deps), opener: opener, clearer: clearer}
}

func (d *RecentDispatcher) Setup() {
	gen := d.beginSetup()
	d.register(gen, menu.CmdOpenRecentFile, d.handleAnyFocus(func(e menu.Event) {
		d.open(e.Path, d.opener.OpenFile)
	}))
	d.register(gen, menu.CmdOpenRecentWorkspace, d.handleAnyFocus(func(e menu.Event) {
		d.open(e.Path, d.opener.OpenWorkspace)
	}))
	d.register(gen, menu.CmdClearRecent, d.handleAnyFocus(func(menu.Event) {
		if err := d.clearer.Clear(); err != nil {
			d.logger().Warn("clearing recent entries failed", zap.Error(err))
		}
	}))
}

func (d *RecentDispatcher) open(path string, run func(string) error) {
	if path == "" {
		return
	}
	done, err := d.deps.Guard.Do(d.deps.Window, opOpenRecent, func() error {
		return run(path)
	})
	if !done {
		return
	}
	if err != nil {
		d.logger().Warn("opening recent entry failed",
			zap.String("path", path),
			zap.Error(err))
	}
}
