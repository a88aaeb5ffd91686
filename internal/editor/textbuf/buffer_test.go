package textbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmarkdev/vmark/internal/editor"
)

const sample = "# Title\n\nHello world\nsecond line\n"

func TestBuffer_Lines(t *testing.T) {
	b := NewBuffer(sample)

	assert.Equal(t, 33, b.Len())
	assert.Equal(t, 5, b.LineCount(), "the trailing newline opens a final empty line")

	assert.Equal(t, editor.Range{From: 0, To: 7}, b.LineAt(3))
	assert.Equal(t, editor.Range{From: 0, To: 7}, b.LineAt(7), "the newline belongs to its line")
	assert.Equal(t, editor.Range{From: 8, To: 8}, b.LineAt(8), "blank line")
	assert.Equal(t, editor.Range{From: 9, To: 20}, b.LineAt(15))
	assert.Equal(t, editor.Range{From: 33, To: 33}, b.LineAt(33))
	assert.Equal(t, editor.Range{From: 33, To: 33}, b.LineAt(99), "clamped")
}

func TestBuffer_RowColRoundTrip(t *testing.T) {
	b := NewBuffer(sample)

	row, col := b.RowCol(15)
	assert.Equal(t, 2, row)
	assert.Equal(t, 6, col)
	assert.Equal(t, 15, b.Offset(2, 6))

	assert.Equal(t, 20, b.Offset(2, 99), "column clamps to line end")
	assert.Equal(t, 0, b.Offset(-1, 0))

	row, col = b.RowCol(0)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
}

func TestBuffer_Splice(t *testing.T) {
	b := NewBuffer(sample)
	rev := b.Revision()

	b.Splice(15, 20, "there, editor", editor.Range{From: 15, To: 28})

	assert.Equal(t, "# Title\n\nHello there, editor\nsecond line\n", b.Text())
	assert.Equal(t, editor.Range{From: 15, To: 28}, b.Selection())
	assert.Greater(t, b.Revision(), rev)
	assert.Equal(t, editor.Range{From: 9, To: 28}, b.LineAt(15), "line table follows the edit")
}

func TestBuffer_SpliceClamps(t *testing.T) {
	b := NewBuffer("abc")

	b.Splice(2, 99, "Z", editor.Range{From: 99, To: 99})
	assert.Equal(t, "abZ", b.Text())
	assert.Equal(t, editor.Range{From: 3, To: 3}, b.Selection())
}

func TestBuffer_SetSelection(t *testing.T) {
	b := NewBuffer("abc")
	b.SetSelection(editor.Range{From: 9, To: -1})
	assert.Equal(t, editor.Range{From: 0, To: 3}, b.Selection())
}

func TestBuffer_Empty(t *testing.T) {
	b := NewBuffer("")
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, b.LineCount())
	assert.Equal(t, editor.Range{}, b.LineAt(0))
}
