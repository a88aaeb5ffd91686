// Package watcher surfaces filesystem changes under the workspace
// root as a stream of normalized events. The underlying notifier only
// watches single directories, so the watcher adds every directory it
// finds and keeps adding ones created later.
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Kind classifies a change. Renames report as removals of the old
// path; the new path arrives as its own create.
type Kind string

const (
	KindCreate Kind = "create"
	KindModify Kind = "modify"
	KindRemove Kind = "remove"
)

// Event is one normalized filesystem change.
type Event struct {
	Path string
	Kind Kind
}

// Watcher converts raw notifications into Events on a buffered
// channel. A consumer that falls behind loses events rather than
// blocking the notifier.
type Watcher struct {
	fw     *fsnotify.Watcher
	events chan Event
	logger *zap.Logger
	wg     sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// New starts an idle watcher. Call Watch to cover a tree and Close to
// stop; the event channel closes after Close.
func New(opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create filesystem watcher")
	}

	w := &Watcher{
		fw:     fw,
		events: make(chan Event, 64),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Events returns the change stream.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Watch covers root and every directory below it.
func (w *Watcher) Watch(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.fw.Add(path)
		}
		return nil
	})
	return errors.Wrapf(err, "watch %s", root)
}

// Close stops the watcher and closes the event channel once the
// remaining notifications are drained.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	w.wg.Wait()
	return errors.Wrap(err, "close filesystem watcher")
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer close(w.events)

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	// Directories born after Watch must be added by hand to stay
	// recursive.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fw.Add(ev.Name); err != nil {
				w.logger.Warn("could not watch new directory",
					zap.String("path", ev.Name), zap.Error(err))
			}
		}
	}

	kind, ok := translate(ev.Op)
	if !ok {
		return
	}
	select {
	case w.events <- Event{Path: ev.Name, Kind: kind}:
	default:
		w.logger.Warn("dropping filesystem event, consumer is behind",
			zap.String("path", ev.Name), zap.String("kind", string(kind)))
	}
}

// translate maps an operation bitmask to an event kind. Permission
// churn carries no content change and is dropped.
func translate(op fsnotify.Op) (Kind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return KindCreate, true
	case op.Has(fsnotify.Write):
		return KindModify, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return KindRemove, true
	default:
		return "", false
	}
}
