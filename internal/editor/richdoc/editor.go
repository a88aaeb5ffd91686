package richdoc

import (
	"github.com/pkg/errors"

	"github.com/vmarkdev/vmark/internal/editor"
)

// Editor exposes a Document through the structured-surface contract,
// adding a rendered-row layout so geometry queries work headlessly.
// Each textblock renders on its own row; a positive wrap width breaks
// long blocks into further visual rows, one unit per character.
type Editor struct {
	doc       *Document
	wrapWidth int
	focused   bool
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithWrapWidth sets the visual wrap width in characters. Zero means
// no wrapping.
func WithWrapWidth(w int) EditorOption {
	return func(e *Editor) { e.wrapWidth = w }
}

// NewEditor wraps a document in an engine instance.
func NewEditor(doc *Document, opts ...EditorOption) *Editor {
	e := &Editor{doc: doc}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns the underlying document.
func (e *Editor) Document() *Document { return e.doc }

// Surface implements the engine contract.
func (e *Editor) Surface() string { return editor.SurfaceWYSIWYG }

// Focus records that the engine took keyboard focus back.
func (e *Editor) Focus() { e.focused = true }

// Focused reports whether Focus has been called.
func (e *Editor) Focused() bool { return e.focused }

// DocRange implements the view contract.
func (e *Editor) DocRange() editor.Range { return e.doc.DocRange() }

// TextBetween implements the view contract.
func (e *Editor) TextBetween(from, to int) string { return e.doc.TextBetween(from, to) }

// AncestorSpans implements the view contract.
func (e *Editor) AncestorSpans(pos int) []editor.Range { return e.doc.AncestorSpans(pos) }

// Blocks lists the document's textblocks in order.
func (e *Editor) Blocks() []editor.Block {
	spans := e.doc.Textblocks()
	blocks := make([]editor.Block, 0, len(spans))
	for _, b := range spans {
		blocks = append(blocks, editor.Block{
			Kind: b.Kind,
			Span: editor.Range{From: b.Start, To: b.End},
		})
	}
	return blocks
}

// CoordsAtPos maps a position to its rendered location. Structural
// positions between blocks have no rendered location and fail.
func (e *Editor) CoordsAtPos(pos int) (editor.Coords, error) {
	row := 0
	for _, b := range e.doc.Textblocks() {
		length := b.End - b.Start
		if pos >= b.Start && pos <= b.End {
			offset := pos - b.Start
			if e.wrapWidth <= 0 {
				return editor.Coords{Left: float64(offset), Top: float64(row)}, nil
			}
			line, col := offset/e.wrapWidth, offset%e.wrapWidth
			if offset == length && length > 0 && col == 0 {
				line, col = line-1, e.wrapWidth
			}
			return editor.Coords{Left: float64(col), Top: float64(row + line)}, nil
		}
		row += e.blockRows(length)
	}
	return editor.Coords{}, errors.Errorf("no coordinates at position %d", pos)
}

func (e *Editor) blockRows(length int) int {
	if e.wrapWidth <= 0 || length == 0 {
		return 1
	}
	return (length + e.wrapWidth - 1) / e.wrapWidth
}

// Selection implements the selection contract.
func (e *Editor) Selection() editor.Range { return e.doc.Selection() }

// SetSelection implements the selection contract.
func (e *Editor) SetSelection(r editor.Range) { e.doc.SetSelection(r) }

// Selections implements the structured contract.
func (e *Editor) Selections() []editor.Range { return e.doc.Selections() }

// MarksAt implements the structured contract.
func (e *Editor) MarksAt(pos int) []string { return e.doc.MarksAt(pos) }

// MarkRun implements the structured contract.
func (e *Editor) MarkRun(pos int, mark string) (editor.Range, bool) {
	return e.doc.MarkRun(pos, mark)
}

// ToggleMark implements the structured contract.
func (e *Editor) ToggleMark(mark string, r editor.Range) bool {
	return e.doc.ToggleMark(mark, r)
}

// RemoveMarks implements the structured contract.
func (e *Editor) RemoveMarks(r editor.Range) bool { return e.doc.RemoveMarks(r) }

// StoredMarks implements the structured contract.
func (e *Editor) StoredMarks() []string { return e.doc.StoredMarks() }

// SetStoredMarks implements the structured contract.
func (e *Editor) SetStoredMarks(marks []string) { e.doc.SetStoredMarks(marks) }

// ClearStoredMarks implements the structured contract.
func (e *Editor) ClearStoredMarks() { e.doc.ClearStoredMarks() }

// SetBlockType implements the structured contract.
func (e *Editor) SetBlockType(kind string, level int, r editor.Range) bool {
	return e.doc.SetBlockType(kind, level, r)
}

// WrapBlock implements the structured contract.
func (e *Editor) WrapBlock(kind string, r editor.Range) bool {
	return e.doc.WrapBlock(kind, r)
}

// LiftBlock implements the structured contract.
func (e *Editor) LiftBlock(kind string, r editor.Range) bool {
	return e.doc.LiftBlock(kind, r)
}

// InsertImage implements the structured contract.
func (e *Editor) InsertImage(src, alt string) bool { return e.doc.InsertImage(src, alt) }
