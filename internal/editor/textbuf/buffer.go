// Package textbuf is an in-memory flat text engine: a rune buffer with
// a logical line table and a wrapped layout, implementing the source
// surface contract. Offsets are rune offsets throughout.
package textbuf

import (
	"github.com/vmarkdev/vmark/internal/editor"
)

// Buffer is a flat text document with selection state. Splice is the
// only content mutation; it replaces a range and applies the new
// selection in one step, so observers never see the buffer and the
// selection disagree.
type Buffer struct {
	text      []rune
	lineStart []int
	selection editor.Range
	revision  uint64
}

// NewBuffer creates a buffer holding text, with a collapsed selection
// at the start.
func NewBuffer(text string) *Buffer {
	b := &Buffer{text: []rune(text), revision: 1}
	b.rebuildLines()
	return b
}

// Len returns the buffer length in runes.
func (b *Buffer) Len() int { return len(b.text) }

// Text returns the whole buffer.
func (b *Buffer) Text() string { return string(b.text) }

// Revision returns the content revision.
func (b *Buffer) Revision() uint64 { return b.revision }

// TextBetween returns the text between two offsets, clamped to the
// buffer.
func (b *Buffer) TextBetween(from, to int) string {
	r := b.clamp(editor.Range{From: from, To: to})
	return string(b.text[r.From:r.To])
}

// Selection returns the current selection.
func (b *Buffer) Selection() editor.Range { return b.selection }

// SetSelection replaces the selection, clamped to the buffer.
func (b *Buffer) SetSelection(r editor.Range) { b.selection = b.clamp(r) }

// Splice replaces [from,to) with text and applies the new selection
// atomically.
func (b *Buffer) Splice(from, to int, text string, sel editor.Range) {
	r := b.clamp(editor.Range{From: from, To: to})
	insert := []rune(text)

	out := make([]rune, 0, len(b.text)-r.Size()+len(insert))
	out = append(out, b.text[:r.From]...)
	out = append(out, insert...)
	out = append(out, b.text[r.To:]...)
	b.text = out

	b.rebuildLines()
	b.revision++
	b.selection = b.clamp(sel)
}

// LineCount returns the number of logical lines. An empty buffer has
// one empty line.
func (b *Buffer) LineCount() int { return len(b.lineStart) }

// LineIndex returns the logical line containing an offset.
func (b *Buffer) LineIndex(pos int) int {
	pos = min(max(pos, 0), len(b.text))
	lo, hi := 0, len(b.lineStart)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineStart[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// LineAt returns the span of the logical line containing pos, without
// its trailing newline.
func (b *Buffer) LineAt(pos int) editor.Range {
	return b.lineSpan(b.LineIndex(pos))
}

// lineSpan returns line i's span without the trailing newline.
func (b *Buffer) lineSpan(i int) editor.Range {
	start := b.lineStart[i]
	end := len(b.text)
	if i+1 < len(b.lineStart) {
		end = b.lineStart[i+1] - 1
	}
	return editor.Range{From: start, To: end}
}

// RowCol converts an offset to a logical (row, column) pair.
func (b *Buffer) RowCol(pos int) (int, int) {
	pos = min(max(pos, 0), len(b.text))
	row := b.LineIndex(pos)
	return row, pos - b.lineStart[row]
}

// Offset converts a logical (row, column) pair to an offset, clamping
// the column into the row.
func (b *Buffer) Offset(row, col int) int {
	row = min(max(row, 0), len(b.lineStart)-1)
	span := b.lineSpan(row)
	col = min(max(col, 0), span.Size())
	return span.From + col
}

func (b *Buffer) rebuildLines() {
	b.lineStart = b.lineStart[:0]
	b.lineStart = append(b.lineStart, 0)
	for i, r := range b.text {
		if r == '\n' {
			b.lineStart = append(b.lineStart, i+1)
		}
	}
}

func (b *Buffer) clamp(r editor.Range) editor.Range {
	if r.From > r.To {
		r.From, r.To = r.To, r.From
	}
	r.From = min(max(r.From, 0), len(b.text))
	r.To = min(max(r.To, 0), len(b.text))
	return r
}
