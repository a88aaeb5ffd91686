package command

import (
	"github.com/vmarkdev/vmark/internal/editor/caretsync"
	"github.com/vmarkdev/vmark/internal/save"
	"github.com/vmarkdev/vmark/internal/session"
)

// Window identifies the window a dispatcher set binds to, together
// with the focus probes only the shell can answer.
type Window struct {
	Label         string
	ActiveSurface func() string
	Excluded      func() bool
}

// Hooks are the shell-side callbacks a window provides when it binds
// its menu. Every hook ends in a native dialog or an external surface,
// which is why the core cannot supply them itself.
type Hooks struct {
	SavePaths SavePathChooser
	Exports   Exporter
	Images    ImagePicker
	Opens     Opener
	Recents   RecentClearer
}

// Binder builds a ready-to-Setup dispatcher set for one window.
type Binder func(w Window, hooks Hooks) *Set

// Set bundles every dispatcher bound to one window so the shell can
// attach and detach them as one unit.
type Set struct {
	dispatchers []dispatcher
}

type dispatcher interface {
	Setup()
	Teardown()
}

// NewSet builds the full dispatcher roster for one window. A
// dispatcher whose hook is missing is left out rather than bound
// half-working.
func NewSet(deps Deps, pipeline *save.Pipeline, sessions *session.Manager, translator *caretsync.Translator, hooks Hooks) *Set {
	s := &Set{}
	s.add(NewFormatDispatcher(deps))
	s.add(NewParagraphDispatcher(deps))
	s.add(NewSelectionDispatcher(deps))
	s.add(NewViewDispatcher(deps, sessions, translator))
	if hooks.SavePaths != nil {
		s.add(NewSaveDispatcher(deps, pipeline, sessions, hooks.SavePaths))
	}
	if hooks.Exports != nil {
		s.add(NewExportDispatcher(deps, hooks.Exports))
	}
	if hooks.Images != nil {
		s.add(NewImageDispatcher(deps, hooks.Images))
	}
	if hooks.Opens != nil && hooks.Recents != nil {
		s.add(NewRecentDispatcher(deps, hooks.Opens, hooks.Recents))
	}
	return s
}

func (s *Set) add(d dispatcher) { s.dispatchers = append(s.dispatchers, d) }

// Setup attaches every dispatcher in the set.
func (s *Set) Setup() {
	for _, d := range s.dispatchers {
		d.Setup()
	}
}

// Teardown detaches the set in reverse order of attachment.
func (s *Set) Teardown() {
	for i := len(s.dispatchers) - 1; i >= 0; i-- {
		s.dispatchers[i].Teardown()
	}
}
