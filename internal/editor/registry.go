package editor

import (
	"sync"

	"go.uber.org/zap"
)

// Registry records which engine instance currently owns keyboard focus
// for each surface. Dispatchers consult it to route commands; it is not
// a source of document truth. Focus and blur events may arrive out of
// order, so clearing is conditional on identity.
type Registry struct {
	mu     sync.RWMutex
	active map[string]Editor
	logger *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		active: make(map[string]Editor),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetActive records the focused instance for a surface.
func (r *Registry) SetActive(surface string, e Editor) {
	r.mu.Lock()
	r.active[surface] = e
	r.mu.Unlock()

	r.logger.Debug("editor focused", zap.String("surface", surface))
}

// ClearIfMatch clears the surface's entry only while e is still the
// recorded instance. A blur that raced with a newer focus is a no-op.
func (r *Registry) ClearIfMatch(surface string, e Editor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[surface] == e {
		delete(r.active, surface)
	}
}

// Active returns the focused instance for a surface, if any.
func (r *Registry) Active(surface string) (Editor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.active[surface]
	return e, ok
}

// ActiveRich returns the focused structured engine, if one is focused
// and implements the structured contract.
func (r *Registry) ActiveRich() (RichEditor, bool) {
	e, ok := r.Active(SurfaceWYSIWYG)
	if !ok {
		return nil, false
	}
	rich, ok := e.(RichEditor)
	return rich, ok
}

// ActiveText returns the focused source engine, if any.
func (r *Registry) ActiveText() (TextEditor, bool) {
	e, ok := r.Active(SurfaceSource)
	if !ok {
		return nil, false
	}
	text, ok := e.(TextEditor)
	return text, ok
}

// ActiveSelectable returns the focused engine for the given surface as
// a selection target.
func (r *Registry) ActiveSelectable(surface string) (SelectionEditor, bool) {
	e, ok := r.Active(surface)
	if !ok {
		return nil, false
	}
	sel, ok := e.(SelectionEditor)
	return sel, ok
}
