package textbuf

import (
	"github.com/pkg/errors"

	"github.com/vmarkdev/vmark/internal/editor"
)

// Editor exposes a Buffer through the source-surface contract. Layout
// follows the logical line table; a positive wrap width breaks long
// lines into further visual rows, one unit per character. Structural
// ancestry comes from a markdown parse of the buffer, so block
// selection works on raw source too.
type Editor struct {
	buf       *Buffer
	wrapWidth int
	focused   bool

	blocksRev uint64
	blocks    *blockTree
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithWrapWidth sets the visual wrap width in characters. Zero means
// no wrapping.
func WithWrapWidth(w int) EditorOption {
	return func(e *Editor) { e.wrapWidth = w }
}

// NewEditor wraps a buffer in an engine instance.
func NewEditor(buf *Buffer, opts ...EditorOption) *Editor {
	e := &Editor{buf: buf}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Buffer returns the underlying buffer.
func (e *Editor) Buffer() *Buffer { return e.buf }

// Surface implements the engine contract.
func (e *Editor) Surface() string { return editor.SurfaceSource }

// Focus records that the engine took keyboard focus back.
func (e *Editor) Focus() { e.focused = true }

// Focused reports whether Focus has been called.
func (e *Editor) Focused() bool { return e.focused }

// DocRange implements the view contract.
func (e *Editor) DocRange() editor.Range {
	return editor.Range{From: 0, To: e.buf.Len()}
}

// TextBetween implements the view contract.
func (e *Editor) TextBetween(from, to int) string { return e.buf.TextBetween(from, to) }

// Length implements the source contract.
func (e *Editor) Length() int { return e.buf.Len() }

// Text implements the source contract.
func (e *Editor) Text() string { return e.buf.Text() }

// LineAt implements the source contract.
func (e *Editor) LineAt(pos int) editor.Range { return e.buf.LineAt(pos) }

// Selection implements the selection contract.
func (e *Editor) Selection() editor.Range { return e.buf.Selection() }

// SetSelection implements the selection contract.
func (e *Editor) SetSelection(r editor.Range) { e.buf.SetSelection(r) }

// Splice implements the source contract.
func (e *Editor) Splice(from, to int, text string, sel editor.Range) {
	e.buf.Splice(from, to, text, sel)
}

// CoordsAtPos maps an offset to its rendered location.
func (e *Editor) CoordsAtPos(pos int) (editor.Coords, error) {
	if pos < 0 || pos > e.buf.Len() {
		return editor.Coords{}, errors.Errorf("no coordinates at offset %d", pos)
	}

	row := 0
	for i := 0; i < e.buf.LineCount(); i++ {
		span := e.buf.lineSpan(i)
		if pos >= span.From && pos <= span.To {
			offset := pos - span.From
			if e.wrapWidth <= 0 {
				return editor.Coords{Left: float64(offset), Top: float64(row)}, nil
			}
			line, col := offset/e.wrapWidth, offset%e.wrapWidth
			if offset == span.Size() && offset > 0 && col == 0 {
				line, col = line-1, e.wrapWidth
			}
			return editor.Coords{Left: float64(col), Top: float64(row + line)}, nil
		}
		row += e.lineRows(span.Size())
	}
	return editor.Coords{}, errors.Errorf("no coordinates at offset %d", pos)
}

func (e *Editor) lineRows(length int) int {
	if e.wrapWidth <= 0 || length == 0 {
		return 1
	}
	return (length + e.wrapWidth - 1) / e.wrapWidth
}

// AncestorSpans returns the markdown block constructs enclosing pos,
// innermost first, excluding the document itself.
func (e *Editor) AncestorSpans(pos int) []editor.Range {
	return e.tree().ancestorsAt(pos)
}

// Blocks lists the buffer's text-bearing markdown blocks in order.
func (e *Editor) Blocks() []editor.Block {
	return e.tree().textBlocks()
}

func (e *Editor) tree() *blockTree {
	if e.blocks == nil || e.blocksRev != e.buf.Revision() {
		e.blocks = parseBlocks(e.buf.Text())
		e.blocksRev = e.buf.Revision()
	}
	return e.blocks
}
