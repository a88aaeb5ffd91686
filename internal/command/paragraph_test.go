package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmarkdev/vmark/internal/menu"
)

func TestBlockTypeCommands(t *testing.T) {
	cases := []struct {
		command string
		want    blockCall
	}{
		{menu.CmdHeading1, blockCall{op: "set", kind: "heading", level: 1}},
		{menu.CmdHeading4, blockCall{op: "set", kind: "heading", level: 4}},
		{menu.CmdHeading6, blockCall{op: "set", kind: "heading", level: 6}},
		{menu.CmdParagraph, blockCall{op: "set", kind: "paragraph"}},
		{menu.CmdCodeFences, blockCall{op: "set", kind: "codeBlock"}},
	}
	for _, tc := range cases {
		t.Run(tc.command, func(t *testing.T) {
			rich := &fakeRich{}
			deps, bus := testHarness(rich)
			NewParagraphDispatcher(deps).Setup()

			bus.Emit(tc.command, testWindow)

			assert.Equal(t, []blockCall{tc.want}, rich.blocks)
			assert.Equal(t, 1, rich.focused)
		})
	}
}

func TestQuoteToggle(t *testing.T) {
	t.Run("wraps when not quoted", func(t *testing.T) {
		rich := &fakeRich{}
		deps, bus := testHarness(rich)
		NewParagraphDispatcher(deps).Setup()

		bus.Emit(menu.CmdQuote, testWindow)

		assert.Equal(t, []blockCall{
			{op: "lift", kind: "blockquote"},
			{op: "wrap", kind: "blockquote"},
		}, rich.blocks)
	})

	t.Run("lifts when already quoted", func(t *testing.T) {
		rich := &fakeRich{liftOK: map[string]bool{"blockquote": true}}
		deps, bus := testHarness(rich)
		NewParagraphDispatcher(deps).Setup()

		bus.Emit(menu.CmdQuote, testWindow)

		assert.Equal(t, []blockCall{{op: "lift", kind: "blockquote"}}, rich.blocks)
	})
}

func TestNestAndUnnestQuote(t *testing.T) {
	rich := &fakeRich{liftOK: map[string]bool{"blockquote": true}}
	deps, bus := testHarness(rich)
	NewParagraphDispatcher(deps).Setup()

	bus.Emit(menu.CmdNestQuote, testWindow)
	bus.Emit(menu.CmdUnnestQuote, testWindow)

	assert.Equal(t, []blockCall{
		{op: "wrap", kind: "blockquote"},
		{op: "lift", kind: "blockquote"},
	}, rich.blocks, "nest always wraps, unnest always lifts")
}

func TestListToggle(t *testing.T) {
	t.Run("same kind unwraps", func(t *testing.T) {
		rich := &fakeRich{liftOK: map[string]bool{"bulletList": true}}
		deps, bus := testHarness(rich)
		NewParagraphDispatcher(deps).Setup()

		bus.Emit(menu.CmdUnorderedList, testWindow)

		assert.Equal(t, []blockCall{{op: "lift", kind: "bulletList"}}, rich.blocks)
	})

	t.Run("other kind converts", func(t *testing.T) {
		rich := &fakeRich{liftOK: map[string]bool{"orderedList": true}}
		deps, bus := testHarness(rich)
		NewParagraphDispatcher(deps).Setup()

		bus.Emit(menu.CmdUnorderedList, testWindow)

		assert.Equal(t, []blockCall{
			{op: "lift", kind: "bulletList"},
			{op: "lift", kind: "orderedList"},
			{op: "wrap", kind: "bulletList"},
		}, rich.blocks)
	})

	t.Run("plain blocks wrap", func(t *testing.T) {
		rich := &fakeRich{}
		deps, bus := testHarness(rich)
		NewParagraphDispatcher(deps).Setup()

		bus.Emit(menu.CmdOrderedList, testWindow)

		assert.Equal(t, []blockCall{
			{op: "lift", kind: "orderedList"},
			{op: "lift", kind: "bulletList"},
			{op: "wrap", kind: "orderedList"},
		}, rich.blocks)
	})
}

func TestRemoveList(t *testing.T) {
	t.Run("bullet list", func(t *testing.T) {
		rich := &fakeRich{liftOK: map[string]bool{"bulletList": true}}
		deps, bus := testHarness(rich)
		NewParagraphDispatcher(deps).Setup()

		bus.Emit(menu.CmdRemoveList, testWindow)

		assert.Equal(t, []blockCall{{op: "lift", kind: "bulletList"}}, rich.blocks)
	})

	t.Run("ordered list falls back", func(t *testing.T) {
		rich := &fakeRich{liftOK: map[string]bool{"orderedList": true}}
		deps, bus := testHarness(rich)
		NewParagraphDispatcher(deps).Setup()

		bus.Emit(menu.CmdRemoveList, testWindow)

		assert.Equal(t, []blockCall{
			{op: "lift", kind: "bulletList"},
			{op: "lift", kind: "orderedList"},
		}, rich.blocks)
	})
}
