// Package command translates named menu events into mutations on the
// currently focused engine. Every dispatcher binds to one window: it
// ignores events addressed elsewhere, resolves its engine through the
// active-editor registry, wraps async work in the reentry guard, and
// returns focus to the engine afterwards. Setup and teardown are
// generation-counted so a teardown racing a slow setup can never leak
// listeners.
package command

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/editor"
	"github.com/vmarkdev/vmark/internal/guard"
	"github.com/vmarkdev/vmark/internal/menu"
)

// Deps are the collaborators shared by every dispatcher bound to one
// window.
type Deps struct {
	// Window is the label events must carry to be acted on.
	Window string
	// Bus delivers the menu events.
	Bus *menu.Bus
	// Registry resolves the focused engine per surface.
	Registry *editor.Registry
	// Guard serializes the operations that must not double-fire.
	Guard *guard.Guard
	// ActiveSurface names the surface currently shown in this window.
	ActiveSurface func() string
	// ActiveDocument resolves the document behind the active tab.
	ActiveDocument func() (document.Document, bool)
	// Excluded reports that editing shortcuts should be ignored, for
	// example while a find panel owns keyboard input.
	Excluded func() bool
	// Logger may be nil; dispatchers fall back to a nop logger.
	Logger *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// binding implements the shared subscribe/teardown discipline. Each
// Setup bumps the generation; registrations check their captured
// generation before taking effect, so listeners attached by a setup
// that was torn down mid-flight unregister themselves immediately.
type binding struct {
	deps Deps

	mu     sync.Mutex
	gen    uint64
	unsubs []func()
}

func newBinding(deps Deps) binding {
	return binding{deps: deps}
}

func (b *binding) logger() *zap.Logger { return b.deps.logger() }

// beginSetup invalidates earlier setups and returns the new
// generation.
func (b *binding) beginSetup() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardownLocked()
	b.gen++
	return b.gen
}

// register subscribes fn to a command under the given generation. A
// registration from a stale generation unsubscribes itself and reports
// false.
func (b *binding) register(gen uint64, name string, fn menu.Handler) bool {
	unsubscribe := b.deps.Bus.Subscribe(name, fn)

	b.mu.Lock()
	stale := gen != b.gen
	if !stale {
		b.unsubs = append(b.unsubs, unsubscribe)
	}
	b.mu.Unlock()

	if stale {
		unsubscribe()
	}
	return !stale
}

// Teardown unsubscribes everything and invalidates in-flight setups.
func (b *binding) Teardown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardownLocked()
	b.gen++
}

func (b *binding) teardownLocked() {
	for _, unsubscribe := range b.unsubs {
		unsubscribe()
	}
	b.unsubs = nil
}

// handle wraps a handler with the window filter and the focus
// exclusion check.
func (b *binding) handle(fn func(menu.Event)) menu.Handler {
	return func(e menu.Event) {
		if e.WindowLabel != b.deps.Window {
			return
		}
		if b.deps.Excluded != nil && b.deps.Excluded() {
			return
		}
		fn(e)
	}
}

// handleAnyFocus is handle without the exclusion check, for commands
// that are not editing shortcuts.
func (b *binding) handleAnyFocus(fn func(menu.Event)) menu.Handler {
	return func(e menu.Event) {
		if e.WindowLabel != b.deps.Window {
			return
		}
		fn(e)
	}
}

// activeRich resolves the focused structured engine, or nil.
func (b *binding) activeRich() (editor.RichEditor, bool) {
	return b.deps.Registry.ActiveRich()
}

// activeSelectable resolves the focused engine of the window's current
// surface as a selection target.
func (b *binding) activeSelectable() (editor.SelectionEditor, bool) {
	surface := editor.SurfaceWYSIWYG
	if b.deps.ActiveSurface != nil {
		surface = b.deps.ActiveSurface()
	}
	return b.deps.Registry.ActiveSelectable(surface)
}
