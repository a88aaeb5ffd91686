package save

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/guard"
	"github.com/vmarkdev/vmark/internal/session"
)

// Auto-save timing defaults.
const (
	DefaultInterval = 2 * time.Second
	DefaultDebounce = 5 * time.Second
)

// AutoSaver periodically saves the active document of a window. Every
// tick re-checks eligibility from scratch, so a failed save simply
// retries on the next tick with no backoff state to manage.
type AutoSaver struct {
	pipeline *Pipeline
	store    *document.Store
	sessions *session.Manager
	guard    *guard.Guard

	interval time.Duration
	debounce time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	last map[string]time.Time
}

// AutoSaverOption configures an AutoSaver.
type AutoSaverOption func(*AutoSaver)

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) AutoSaverOption {
	return func(a *AutoSaver) { a.interval = d }
}

// WithDebounce sets the minimum gap between successful auto-saves of
// one window.
func WithDebounce(d time.Duration) AutoSaverOption {
	return func(a *AutoSaver) { a.debounce = d }
}

// WithAutoSaveLogger sets the logger. The default is a nop logger.
func WithAutoSaveLogger(logger *zap.Logger) AutoSaverOption {
	return func(a *AutoSaver) { a.logger = logger }
}

// NewAutoSaver creates a scheduler writing through pipeline.
func NewAutoSaver(pipeline *Pipeline, store *document.Store, sessions *session.Manager, g *guard.Guard, opts ...AutoSaverOption) *AutoSaver {
	a := &AutoSaver{
		pipeline: pipeline,
		store:    store,
		sessions: sessions,
		guard:    g,
		interval: DefaultInterval,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		last:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run ticks for one window until the context ends.
func (a *AutoSaver) Run(ctx context.Context, window string) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick(window, time.Now())
		}
	}
}

// Tick runs one eligibility pass for a window and reports whether a
// save happened. Skipped ticks are not errors; whatever blocked this
// one is re-examined on the next.
func (a *AutoSaver) Tick(window string, now time.Time) bool {
	if a.guard.InProgress(window, OpManualSave) {
		a.skip(window, "manual save in flight")
		return false
	}

	tab, ok := a.sessions.ActiveTab(window)
	if !ok {
		return false
	}
	doc, ok := a.store.Get(tab.DocumentID)
	if !ok {
		return false
	}

	switch {
	case !doc.Dirty():
		return false
	case doc.Untitled():
		a.skip(window, "document has no path")
		return false
	case doc.Missing:
		a.skip(window, "backing file is missing")
		return false
	}

	a.mu.Lock()
	since := now.Sub(a.last[window])
	a.mu.Unlock()
	if since < a.debounce {
		a.skip(window, "debounced")
		return false
	}

	if !a.pipeline.SaveToPath(tab.ID, doc.FilePath, doc.Content, TriggerAuto) {
		return false
	}

	a.mu.Lock()
	a.last[window] = now
	a.mu.Unlock()
	return true
}

// Forget drops a window's debounce stamp, typically when its session
// closes.
func (a *AutoSaver) Forget(window string) {
	a.mu.Lock()
	delete(a.last, window)
	a.mu.Unlock()
}

func (a *AutoSaver) skip(window, reason string) {
	a.logger.Debug("auto-save skipped",
		zap.String("window", window),
		zap.String("reason", reason))
}
