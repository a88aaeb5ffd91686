package command

import (
	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/editor/selection"
	"github.com/vmarkdev/vmark/internal/menu"
)

// SelectionDispatcher drives the geometry commands on whichever
// surface the window currently shows. Use-selection-for-find feeds the
// system clipboard so the find panel picks the text up.
type SelectionDispatcher struct {
	binding

	writeClipboard func(string) error
}

// NewSelectionDispatcher binds the selection commands to one window.
func NewSelectionDispatcher(deps Deps) *SelectionDispatcher {
	return &SelectionDispatcher{
		binding:        newBinding(deps),
		writeClipboard: clipboard.WriteAll,
	}
}

// Setup subscribes the dispatcher's commands.
func (d *SelectionDispatcher) Setup() {
	gen := d.beginSetup()
	d.register(gen, menu.CmdSelectWord, d.handle(func(menu.Event) {
		d.selectWord()
	}))
	d.register(gen, menu.CmdSelectLine, d.handle(func(menu.Event) {
		d.selectLine()
	}))
	d.register(gen, menu.CmdSelectBlock, d.handle(func(menu.Event) {
		d.selectBlock()
	}))
	d.register(gen, menu.CmdExpandSelection, d.handle(func(menu.Event) {
		d.expandSelection()
	}))
	d.register(gen, menu.CmdUseSelectionFind, d.handle(func(menu.Event) {
		d.useSelectionForFind()
	}))
}

func (d *SelectionDispatcher) selectWord() {
	view, ok := d.activeSelectable()
	if !ok {
		return
	}
	if word, found := selection.WordAt(view, view.Selection().From); found {
		view.SetSelection(word)
	}
	view.Focus()
}

func (d *SelectionDispatcher) selectLine() {
	view, ok := d.activeSelectable()
	if !ok {
		return
	}
	sel := view.Selection()
	view.SetSelection(selection.VisualLineBoundaries(view, sel.From, sel.To))
	view.Focus()
}

func (d *SelectionDispatcher) selectBlock() {
	view, ok := d.activeSelectable()
	if !ok {
		return
	}
	if block, found := selection.EnclosingBlock(view, view.Selection().From); found {
		view.SetSelection(block)
	}
	view.Focus()
}

func (d *SelectionDispatcher) expandSelection() {
	view, ok := d.activeSelectable()
	if !ok {
		return
	}
	view.SetSelection(selection.Expand(view, view.Selection()))
	view.Focus()
}

func (d *SelectionDispatcher) useSelectionForFind() {
	view, ok := d.activeSelectable()
	if !ok {
		return
	}
	sel := view.Selection()
	if sel.Collapsed() {
		return
	}
	if err := d.writeClipboard(view.TextBetween(sel.From, sel.To)); err != nil {
		d.logger().Warn("clipboard write failed",
			zap.String("window", d.deps.Window),
			zap.Error(err))
	}
	view.Focus()
}
