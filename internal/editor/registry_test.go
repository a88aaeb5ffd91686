package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEditor struct {
	surface string
	focused int
}

func (f *fakeEditor) Surface() string { return f.surface }
func (f *fakeEditor) Focus()          { f.focused++ }

func TestRegistry_SetActive(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Active(SurfaceWYSIWYG)
	assert.False(t, ok)

	inst := &fakeEditor{surface: SurfaceWYSIWYG}
	r.SetActive(SurfaceWYSIWYG, inst)

	got, ok := r.Active(SurfaceWYSIWYG)
	require.True(t, ok)
	assert.Same(t, inst, got)

	_, ok = r.Active(SurfaceSource)
	assert.False(t, ok, "surfaces are independent")
}

func TestRegistry_ClearIfMatch(t *testing.T) {
	r := NewRegistry()
	old := &fakeEditor{surface: SurfaceWYSIWYG}
	r.SetActive(SurfaceWYSIWYG, old)

	r.ClearIfMatch(SurfaceWYSIWYG, old)
	_, ok := r.Active(SurfaceWYSIWYG)
	assert.False(t, ok)
}

func TestRegistry_StaleBlurKeepsNewerFocus(t *testing.T) {
	r := NewRegistry()
	old := &fakeEditor{surface: SurfaceWYSIWYG}
	newer := &fakeEditor{surface: SurfaceWYSIWYG}

	r.SetActive(SurfaceWYSIWYG, old)
	r.SetActive(SurfaceWYSIWYG, newer)

	// The blur from the old instance arrives after the new focus.
	r.ClearIfMatch(SurfaceWYSIWYG, old)

	got, ok := r.Active(SurfaceWYSIWYG)
	require.True(t, ok)
	assert.Same(t, newer, got)
}

func TestRange(t *testing.T) {
	assert.True(t, Range{From: 3, To: 3}.Collapsed())
	assert.False(t, Range{From: 3, To: 7}.Collapsed())
	assert.Equal(t, 4, Range{From: 3, To: 7}.Size())
	assert.True(t, Range{From: 0, To: 10}.Covers(Range{From: 3, To: 7}))
	assert.True(t, Range{From: 3, To: 7}.Covers(Range{From: 3, To: 7}))
	assert.False(t, Range{From: 4, To: 7}.Covers(Range{From: 3, To: 7}))
}
