package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmarkdev/vmark/internal/editor"
	"github.com/vmarkdev/vmark/internal/menu"
)

func TestToggleMark_RangedSelection(t *testing.T) {
	rich := &fakeRich{sel: editor.Range{From: 3, To: 9}}
	deps, bus := testHarness(rich)
	NewFormatDispatcher(deps).Setup()

	bus.Emit(menu.CmdBold, testWindow)

	require.Len(t, rich.toggled, 1)
	assert.Equal(t, markCall{mark: "bold", r: editor.Range{From: 3, To: 9}}, rich.toggled[0])
	assert.Equal(t, 1, rich.focused, "focus returns to the engine after the mutation")
}

func TestToggleMark_CollapsedCursorSpreadsToRun(t *testing.T) {
	rich := &fakeRich{
		sel:  editor.Range{From: 5, To: 5},
		runs: map[string]editor.Range{"bold": {From: 4, To: 8}},
	}
	deps, bus := testHarness(rich)
	NewFormatDispatcher(deps).Setup()

	bus.Emit(menu.CmdBold, testWindow)

	require.Len(t, rich.toggled, 1)
	assert.Equal(t, editor.Range{From: 4, To: 8}, rich.toggled[0].r,
		"collapsed cursor inside a run toggles the whole run")
	assert.Nil(t, rich.stored)
}

func TestToggleMark_CollapsedCursorFlipsPendingMarks(t *testing.T) {
	rich := &fakeRich{
		sel:     editor.Range{From: 5, To: 5},
		marksAt: map[int][]string{5: {"italic"}},
	}
	deps, bus := testHarness(rich)
	NewFormatDispatcher(deps).Setup()

	bus.Emit(menu.CmdBold, testWindow)
	assert.Empty(t, rich.toggled, "no run to spread over, nothing toggles")
	assert.Equal(t, []string{"italic", "bold"}, rich.stored,
		"pending set seeds from the cursor's marks and gains the toggled one")

	bus.Emit(menu.CmdBold, testWindow)
	assert.Equal(t, []string{"italic"}, rich.stored, "second toggle removes it again")
}

func TestClearFormatting(t *testing.T) {
	rich := &fakeRich{
		sels: []editor.Range{{From: 1, To: 1}, {From: 2, To: 6}, {From: 8, To: 12}},
	}
	deps, bus := testHarness(rich)
	NewFormatDispatcher(deps).Setup()

	bus.Emit(menu.CmdClearFormat, testWindow)

	assert.Equal(t, []editor.Range{{From: 2, To: 6}, {From: 8, To: 12}}, rich.removed,
		"collapsed ranges are skipped")
	assert.Equal(t, 1, rich.focused)
}

func TestEscapeAtBoundary(t *testing.T) {
	newRich := func(pos int) *fakeRich {
		return &fakeRich{
			sel: editor.Range{From: pos, To: pos},
			marksAt: map[int][]string{
				5: {"bold"}, 6: {"bold"}, 7: {"bold"}, 8: {"bold"},
			},
			runs:   map[string]editor.Range{"bold": {From: 4, To: 8}},
			stored: []string{"bold"},
		}
	}

	t.Run("trailing edge stays put", func(t *testing.T) {
		rich := newRich(8)
		EscapeAtBoundary(rich)
		assert.Equal(t, editor.Range{From: 8, To: 8}, rich.sel)
		assert.Equal(t, 1, rich.cleared)
	})

	t.Run("leading edge steps out left", func(t *testing.T) {
		rich := newRich(4)
		EscapeAtBoundary(rich)
		assert.Equal(t, editor.Range{From: 3, To: 3}, rich.sel)
		assert.Equal(t, 1, rich.cleared)
	})

	t.Run("inside jumps to run end", func(t *testing.T) {
		rich := newRich(6)
		EscapeAtBoundary(rich)
		assert.Equal(t, editor.Range{From: 8, To: 8}, rich.sel)
		assert.Equal(t, 1, rich.cleared)
	})

	t.Run("outside any run only clears pending marks", func(t *testing.T) {
		rich := newRich(2)
		EscapeAtBoundary(rich)
		assert.Equal(t, editor.Range{From: 2, To: 2}, rich.sel)
		assert.Equal(t, 1, rich.cleared)
		assert.Nil(t, rich.stored)
	})
}
