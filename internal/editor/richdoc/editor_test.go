package richdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmarkdev/vmark/internal/editor"
)

var _ editor.RichEditor = (*Editor)(nil)

func TestEditor_CoordsAtPos(t *testing.T) {
	e := NewEditor(testDoc())

	c, err := e.CoordsAtPos(1)
	require.NoError(t, err)
	assert.Equal(t, editor.Coords{Left: 0, Top: 0}, c)

	c, err = e.CoordsAtPos(4)
	require.NoError(t, err)
	assert.Equal(t, editor.Coords{Left: 3, Top: 0}, c)

	c, err = e.CoordsAtPos(10)
	require.NoError(t, err)
	assert.Equal(t, editor.Coords{Left: 2, Top: 1}, c, "each block renders on its own row")

	_, err = e.CoordsAtPos(7)
	assert.Error(t, err, "structural positions are not laid out")
	_, err = e.CoordsAtPos(0)
	assert.Error(t, err)
}

func TestEditor_CoordsAtPos_Wrapped(t *testing.T) {
	// Heading content is 5 characters: rows 0-1 at width 4. The
	// paragraph content is 11 characters: rows 2-4.
	e := NewEditor(testDoc(), WithWrapWidth(4))

	c, err := e.CoordsAtPos(5)
	require.NoError(t, err)
	assert.Equal(t, editor.Coords{Left: 0, Top: 1}, c, "offset 4 starts the second visual row")

	c, err = e.CoordsAtPos(6)
	require.NoError(t, err)
	assert.Equal(t, editor.Coords{Left: 1, Top: 1}, c)

	c, err = e.CoordsAtPos(8)
	require.NoError(t, err)
	assert.Equal(t, editor.Coords{Left: 0, Top: 2}, c)

	c, err = e.CoordsAtPos(19)
	require.NoError(t, err)
	assert.Equal(t, editor.Coords{Left: 3, Top: 4}, c, "paragraph end sits on its last visual row")
}

func TestEditor_Delegation(t *testing.T) {
	e := NewEditor(testDoc())

	assert.Equal(t, editor.SurfaceWYSIWYG, e.Surface())
	assert.Equal(t, editor.Range{From: 0, To: 20}, e.DocRange())
	assert.Equal(t, "Hello", e.TextBetween(1, 6))

	e.SetSelection(editor.Range{From: 2, To: 5})
	assert.Equal(t, editor.Range{From: 2, To: 5}, e.Selection())

	assert.False(t, e.Focused())
	e.Focus()
	assert.True(t, e.Focused())

	require.True(t, e.ToggleMark(MarkItalic, editor.Range{From: 1, To: 6}))
	assert.Equal(t, []string{MarkItalic}, e.MarksAt(3))
}
