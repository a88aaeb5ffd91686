// Package guard provides the per-window mutual exclusion primitives that
// keep user-triggered operations from stacking. A guard key is the pair
// (window label, operation name); holding it means an operation of that
// name is in flight for that window. Acquisition never blocks and never
// queues: a second caller is dropped, because re-running a menu action
// that is already running is worse than ignoring the duplicate.
package guard

import (
	"sync"

	"go.uber.org/zap"
)

// Guard tracks in-flight operations keyed by (window, operation).
// Windows are fully independent; so are different operation names
// within one window.
type Guard struct {
	mu     sync.Mutex
	held   map[guardKey]struct{}
	logger *zap.Logger
}

type guardKey struct {
	window string
	op     string
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger used for contention traces.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// New creates an empty guard table.
func New(opts ...Option) *Guard {
	g := &Guard{
		held:   make(map[guardKey]struct{}),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// InProgress reports whether an operation is currently in flight.
func (g *Guard) InProgress(window, op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[guardKey{window, op}]
	return ok
}

// TryAcquire attempts to claim (window, op). It returns false without
// waiting when the operation is already in flight.
func (g *Guard) TryAcquire(window, op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := guardKey{window, op}
	if _, ok := g.held[key]; ok {
		g.logger.Debug("operation already in progress",
			zap.String("window", window),
			zap.String("op", op),
		)
		return false
	}
	g.held[key] = struct{}{}
	return true
}

// Release frees (window, op). Releasing a key that is not held is a no-op.
func (g *Guard) Release(window, op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, guardKey{window, op})
}

// Do runs fn while holding (window, op) and releases the key when fn
// returns or panics. When the key is already held it reports done=false
// without invoking fn; contention is not an error.
func (g *Guard) Do(window, op string, fn func() error) (done bool, err error) {
	if !g.TryAcquire(window, op) {
		return false, nil
	}
	defer g.Release(window, op)
	return true, fn()
}

// ClearWindow drops every key held for a window. Called when the window
// is destroyed so a crashed async operation cannot pin its keys forever.
func (g *Guard) ClearWindow(window string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.held {
		if key.window == window {
			delete(g.held, key)
		}
	}
}
