package command

import (
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/editor/caretsync"
	"github.com/vmarkdev/vmark/internal/menu"
	"github.com/vmarkdev/vmark/internal/session"
)

// ViewDispatcher flips per-window view state: the WYSIWYG/source mode
// toggle plus the focus and typewriter flags. Mode switches route the
// caret through the translator so the cursor lands on the same block
// in the destination surface.
type ViewDispatcher struct {
	binding
	sessions   *session.Manager
	translator *caretsync.Translator
}

func NewViewDispatcher(deps Deps, sessions *session.Manager, translator *caretsync.Translator) *ViewDispatcher {
	return &ViewDispatcher{binding: newBinding(deps), sessions: sessions, translator: translator}
}

func (d *ViewDispatcher) Setup() {
	gen := d.beginSetup()
	d.register(gen, menu.CmdSourceMode, d.handle(func(menu.Event) {
		d.toggleSourceMode()
	}))
	d.register(gen, menu.CmdFocusMode, d.handle(func(menu.Event) {
		on := d.sessions.ToggleFocusMode(d.deps.Window)
		d.logger().Debug("toggled focus mode", zap.String("window", d.deps.Window), zap.Bool("on", on))
	}))
	d.register(gen, menu.CmdTypewriterMode, d.handle(func(menu.Event) {
		on := d.sessions.ToggleTypewriter(d.deps.Window)
		d.logger().Debug("toggled typewriter mode", zap.String("window", d.deps.Window), zap.Bool("on", on))
	}))
}

// toggleSourceMode swaps the window between the rich surface and the
// source surface. The caret position is recorded on the surface being
// left and, when the destination editor is already mounted, restored
// immediately. When the destination mounts later it picks the record
// up itself, so a missing editor here is not an error.
func (d *ViewDispatcher) toggleSourceMode() {
	window := d.deps.Window
	sess, ok := d.sessions.Get(window)
	if !ok {
		return
	}
	doc, hasDoc := d.deps.ActiveDocument()

	if sess.View.Mode == session.ModeWYSIWYG {
		if from, found := d.deps.Registry.ActiveRich(); found && hasDoc {
			d.translator.RecordSwitch(doc.ID, from)
		}
		d.sessions.SetViewMode(window, session.ModeSource)
		if to, found := d.deps.Registry.ActiveText(); found {
			if hasDoc {
				d.translator.RestoreInto(doc.ID, to)
			}
			to.Focus()
		}
		return
	}

	if from, found := d.deps.Registry.ActiveText(); found && hasDoc {
		d.translator.RecordSwitch(doc.ID, from)
	}
	d.sessions.SetViewMode(window, session.ModeWYSIWYG)
	if to, found := d.deps.Registry.ActiveRich(); found {
		if hasDoc {
			d.translator.RestoreInto(doc.ID, to)
		}
		to.Focus()
	}
}
