package command

import (
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/editor"
	"github.com/vmarkdev/vmark/internal/menu"
)

// markCommands maps inline formatting commands to the mark each one
// toggles. Mark names are an open set the engine interprets; new marks
// route through here without further dispatch changes.
var markCommands = []struct {
	command string
	mark    string
}{
	{menu.CmdBold, "bold"},
	{menu.CmdItalic, "italic"},
	{menu.CmdCode, "code"},
	{menu.CmdStrikethrough, "strike"},
	{menu.CmdHighlight, "highlight"},
}

// FormatDispatcher applies inline mark commands to the focused
// structured engine. Mark toggles are synchronous mutations and skip
// the reentry guard.
type FormatDispatcher struct {
	binding
}

// NewFormatDispatcher binds the inline formatting commands to one
// window.
func NewFormatDispatcher(deps Deps) *FormatDispatcher {
	return &FormatDispatcher{binding: newBinding(deps)}
}

// Setup subscribes the dispatcher's commands.
func (d *FormatDispatcher) Setup() {
	gen := d.beginSetup()
	for _, mc := range markCommands {
		mark := mc.mark
		d.register(gen, mc.command, d.handle(func(menu.Event) {
			d.toggleMark(mark)
		}))
	}
	d.register(gen, menu.CmdClearFormat, d.handle(func(menu.Event) {
		d.clearFormatting()
	}))
}

// toggleMark toggles a mark across the selection. A collapsed cursor
// touching a run of the mark spreads to the whole run instead of
// toggling a zero-length range; a collapsed cursor in plain text flips
// the pending marks for the next typed character.
func (d *FormatDispatcher) toggleMark(mark string) {
	rich, ok := d.activeRich()
	if !ok {
		return
	}

	sel := rich.Selection()
	if sel.Collapsed() {
		if run, ok := rich.MarkRun(sel.From, mark); ok {
			rich.ToggleMark(mark, run)
		} else {
			toggleStoredMark(rich, mark)
		}
		rich.Focus()
		return
	}

	rich.ToggleMark(mark, sel)
	rich.Focus()
}

// toggleStoredMark flips a mark in the pending set. The pending set
// starts from the marks active at the cursor when nothing is pending
// yet.
func toggleStoredMark(rich editor.RichEditor, mark string) {
	base := rich.StoredMarks()
	if base == nil {
		base = rich.MarksAt(rich.Selection().From)
	}

	for i, m := range base {
		if m == mark {
			rich.SetStoredMarks(append(base[:i:i], base[i+1:]...))
			return
		}
	}
	rich.SetStoredMarks(append(base, mark))
}

// clearFormatting strips every mark from every selection range. Ranges
// already plain contribute no change, so repeating the command emits
// nothing.
func (d *FormatDispatcher) clearFormatting() {
	rich, ok := d.activeRich()
	if !ok {
		return
	}

	changed := false
	for _, sel := range rich.Selections() {
		if sel.Collapsed() {
			continue
		}
		if rich.RemoveMarks(sel) {
			changed = true
		}
	}
	if changed {
		d.logger().Debug("cleared formatting",
			zap.String("window", d.deps.Window),
			zap.Int("ranges", len(rich.Selections())))
	}
	rich.Focus()
}

// EscapeAtBoundary resolves the "stop formatting now" ambiguity by
// boundary side. At a mark run's trailing edge the caret stays put; at
// its leading edge the caret steps one position left, out of the run;
// from inside it jumps to the run's end. Pending marks clear in every
// branch, so the next typed character comes out plain.
func EscapeAtBoundary(rich editor.RichEditor) {
	pos := rich.Selection().From
	run, ok := enclosingMarkRun(rich, pos)
	if !ok {
		rich.ClearStoredMarks()
		return
	}

	switch {
	case pos == run.To:
		// Trailing edge: the caret is already outside the run.
	case pos == run.From:
		rich.SetSelection(editor.Range{From: pos - 1, To: pos - 1})
	default:
		rich.SetSelection(editor.Range{From: run.To, To: run.To})
	}
	rich.ClearStoredMarks()
}

// enclosingMarkRun finds a mark run touching pos, checking the
// character before the caret first and the one after it second so both
// edges of a run count as touching.
func enclosingMarkRun(rich editor.RichEditor, pos int) (editor.Range, bool) {
	for _, mark := range rich.MarksAt(pos) {
		if run, ok := rich.MarkRun(pos, mark); ok {
			return run, true
		}
	}
	for _, mark := range rich.MarksAt(pos + 1) {
		if run, ok := rich.MarkRun(pos, mark); ok {
			return run, true
		}
	}
	return editor.Range{}, false
}
