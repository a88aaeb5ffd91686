package watcher

import (
	"context"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
)

// Router turns filesystem events into document-store flags: a removed
// backing file marks the document missing, a reappearing one clears
// that, and disk content that no longer matches the buffer marks the
// document changed on disk. Comparing content also keeps the editor's
// own writes from flagging themselves.
type Router struct {
	fsys   afero.Fs
	store  *document.Store
	logger *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger. The default is a nop logger.
func WithRouterLogger(logger *zap.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// NewRouter creates a router reading disk content through fsys.
func NewRouter(fsys afero.Fs, store *document.Store, opts ...RouterOption) *Router {
	r := &Router{fsys: fsys, store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run routes events until the stream closes or ctx is cancelled.
func (r *Router) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.Route(ev)
		}
	}
}

// Route applies one event. Paths no open document is backed by are
// ignored.
func (r *Router) Route(ev Event) {
	id, ok := r.store.ByPath(ev.Path)
	if !ok {
		return
	}

	switch ev.Kind {
	case KindRemove:
		r.store.SetMissing(id, true)
		r.logger.Debug("backing file went missing", zap.String("path", ev.Path))
	case KindCreate, KindModify:
		r.store.SetMissing(id, false)
		if r.differsFromBuffer(id, ev.Path) {
			r.store.SetChangedOnDisk(id, true)
			r.logger.Debug("backing file changed on disk", zap.String("path", ev.Path))
		}
	}
}

// differsFromBuffer reports whether the file's bytes differ from the
// open buffer. Unreadable files report false; the next event retries.
func (r *Router) differsFromBuffer(id, path string) bool {
	doc, ok := r.store.Get(id)
	if !ok {
		return false
	}
	data, err := afero.ReadFile(r.fsys, path)
	if err != nil {
		r.logger.Warn("could not compare disk content",
			zap.String("path", path), zap.Error(err))
		return false
	}
	return string(data) != doc.Content
}
