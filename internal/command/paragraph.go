package command

import (
	"github.com/vmarkdev/vmark/internal/menu"
)

// headingCommands maps the heading commands to their level.
var headingCommands = []struct {
	command string
	level   int
}{
	{menu.CmdHeading1, 1},
	{menu.CmdHeading2, 2},
	{menu.CmdHeading3, 3},
	{menu.CmdHeading4, 4},
	{menu.CmdHeading5, 5},
	{menu.CmdHeading6, 6},
}

// ParagraphDispatcher converts block types on the focused structured
// engine: headings, plain paragraphs, quotes, lists, and code fences.
// All conversions are synchronous and skip the reentry guard.
type ParagraphDispatcher struct {
	binding
}

// NewParagraphDispatcher binds the block commands to one window.
func NewParagraphDispatcher(deps Deps) *ParagraphDispatcher {
	return &ParagraphDispatcher{binding: newBinding(deps)}
}

// Setup subscribes the dispatcher's commands.
func (d *ParagraphDispatcher) Setup() {
	gen := d.beginSetup()
	for _, hc := range headingCommands {
		level := hc.level
		d.register(gen, hc.command, d.handle(func(menu.Event) {
			d.setBlock("heading", level)
		}))
	}
	d.register(gen, menu.CmdParagraph, d.handle(func(menu.Event) {
		d.setBlock("paragraph", 0)
	}))
	d.register(gen, menu.CmdCodeFences, d.handle(func(menu.Event) {
		d.setBlock("codeBlock", 0)
	}))
	d.register(gen, menu.CmdQuote, d.handle(func(menu.Event) {
		d.toggleWrap("blockquote")
	}))
	d.register(gen, menu.CmdNestQuote, d.handle(func(menu.Event) {
		d.wrap("blockquote")
	}))
	d.register(gen, menu.CmdUnnestQuote, d.handle(func(menu.Event) {
		d.lift("blockquote")
	}))
	d.register(gen, menu.CmdUnorderedList, d.handle(func(menu.Event) {
		d.toggleList("bulletList", "orderedList")
	}))
	d.register(gen, menu.CmdOrderedList, d.handle(func(menu.Event) {
		d.toggleList("orderedList", "bulletList")
	}))
	d.register(gen, menu.CmdRemoveList, d.handle(func(menu.Event) {
		d.removeList()
	}))
}

func (d *ParagraphDispatcher) setBlock(kind string, level int) {
	rich, ok := d.activeRich()
	if !ok {
		return
	}
	rich.SetBlockType(kind, level, rich.Selection())
	rich.Focus()
}

func (d *ParagraphDispatcher) wrap(kind string) {
	rich, ok := d.activeRich()
	if !ok {
		return
	}
	rich.WrapBlock(kind, rich.Selection())
	rich.Focus()
}

func (d *ParagraphDispatcher) lift(kind string) {
	rich, ok := d.activeRich()
	if !ok {
		return
	}
	rich.LiftBlock(kind, rich.Selection())
	rich.Focus()
}

// toggleWrap unwraps the selection from an enclosing container of the
// kind, or wraps it in a new one when none encloses it.
func (d *ParagraphDispatcher) toggleWrap(kind string) {
	rich, ok := d.activeRich()
	if !ok {
		return
	}
	if !rich.LiftBlock(kind, rich.Selection()) {
		rich.WrapBlock(kind, rich.Selection())
	}
	rich.Focus()
}

// toggleList cycles list membership: the same kind unwraps, the other
// kind converts, plain blocks wrap.
func (d *ParagraphDispatcher) toggleList(kind, other string) {
	rich, ok := d.activeRich()
	if !ok {
		return
	}

	switch {
	case rich.LiftBlock(kind, rich.Selection()):
		// Was this kind already; lifting is the toggle-off.
	case rich.LiftBlock(other, rich.Selection()):
		rich.WrapBlock(kind, rich.Selection())
	default:
		rich.WrapBlock(kind, rich.Selection())
	}
	rich.Focus()
}

// removeList unwraps whichever list kind encloses the selection.
func (d *ParagraphDispatcher) removeList() {
	rich, ok := d.activeRich()
	if !ok {
		return
	}
	if !rich.LiftBlock("bulletList", rich.Selection()) {
		rich.LiftBlock("orderedList", rich.Selection())
	}
	rich.Focus()
}
