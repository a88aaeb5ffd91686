package richdoc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected *Node
	}{
		{
			"heading and paragraph",
			"# Title\n\nHello **bold** world\n",
			NewDoc(
				NewHeading(1, NewText("Title")),
				NewParagraph(NewText("Hello "), NewText("bold", MarkBold), NewText(" world")),
			),
		},
		{
			"nested emphasis",
			"***both***\n",
			NewDoc(NewParagraph(NewText("both", MarkBold, MarkItalic))),
		},
		{
			"code span",
			"run `go test` now\n",
			NewDoc(NewParagraph(
				NewText("run "), NewText("go test", MarkCode), NewText(" now"),
			)),
		},
		{
			"tight bullet list",
			"- a\n- b\n",
			NewDoc(NewBulletList(
				NewListItem(NewParagraph(NewText("a"))),
				NewListItem(NewParagraph(NewText("b"))),
			)),
		},
		{
			"ordered list",
			"1. first\n2. second\n",
			NewDoc(NewOrderedList(
				NewListItem(NewParagraph(NewText("first"))),
				NewListItem(NewParagraph(NewText("second"))),
			)),
		},
		{
			"blockquote",
			"> quoted\n",
			NewDoc(NewBlockquote(NewParagraph(NewText("quoted")))),
		},
		{
			"fenced code",
			"```go\npackage main\n```\n",
			NewDoc(NewCodeBlock("go", "package main")),
		},
		{
			"hard break",
			"line\\\nnext\n",
			NewDoc(NewParagraph(NewText("line"), NewHardBreak(), NewText("next"))),
		},
		{
			"soft break",
			"a\nb\n",
			NewDoc(NewParagraph(NewText("a"), NewText("\n"), NewText("b"))),
		},
		{
			"thematic break",
			"above\n\n---\n\nbelow\n",
			NewDoc(
				NewParagraph(NewText("above")),
				NewRule(),
				NewParagraph(NewText("below")),
			),
		},
		{
			"image",
			"![alt text](pic.png)\n",
			NewDoc(NewParagraph(NewImage("pic.png", "alt text"))),
		},
		{
			"link keeps text",
			"see [the docs](https://example.com)\n",
			NewDoc(NewParagraph(
				NewText("see "), NewText("the docs", MarkLink),
			)),
		},
		{
			"empty input yields one paragraph",
			"",
			NewDoc(NewParagraph()),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := Parse(tc.source)
			assert.Empty(t, cmp.Diff(tc.expected, d.Root()))
		})
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	sources := []string{
		"# Title\n\nHello **bold** world\n",
		"run `go test` now\n",
		"- a\n- b\n",
		"1. first\n2. second\n",
		"> quoted\n",
		"```go\npackage main\n```\n",
		"line\\\nnext\n",
		"above\n\n---\n\nbelow\n",
		"![alt](pic.png)\n",
		"# One\n\n## Two\n\npara\n",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, src, Parse(src).Markdown())
		})
	}
}

func TestSerialize_NestedBlocks(t *testing.T) {
	d := New(NewDoc(
		NewBlockquote(
			NewParagraph(NewText("first")),
			NewParagraph(NewText("second")),
		),
	))
	assert.Equal(t, "> first\n>\n> second\n", d.Markdown())

	list := New(NewDoc(NewBulletList(
		NewListItem(
			NewParagraph(NewText("item")),
			NewCodeBlock("", "code"),
		),
	)))
	assert.Equal(t, "- item\n\n  ```\n  code\n  ```\n", list.Markdown())
}

func TestParse_SelectionStartsCollapsed(t *testing.T) {
	d := Parse("# Title\n")
	require.NotNil(t, d)
	assert.True(t, d.Selection().Collapsed())
	assert.Equal(t, uint64(1), d.Revision())
}
