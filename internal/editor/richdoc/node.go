// Package richdoc is an in-memory structured document engine: a tree of
// block and inline nodes addressed by integer positions, with
// string-keyed marks on text. It implements the structured-surface
// contract so the command layer and the caret translator have a real
// engine to run against without a rendering shell.
//
// Positions count slots: every non-leaf node consumes one slot for its
// opening and one for its closing; each text rune and each atom leaf
// consumes one. Position 0 sits before the first top-level block.
package richdoc

import (
	"sort"
	"unicode/utf8"
)

// Node kinds. The set is open; unknown kinds flow through untouched.
const (
	KindDoc         = "doc"
	KindHeading     = "heading"
	KindParagraph   = "paragraph"
	KindBlockquote  = "blockquote"
	KindBulletList  = "bulletList"
	KindOrderedList = "orderedList"
	KindListItem    = "listItem"
	KindCodeBlock   = "codeBlock"
	KindText        = "text"
	KindImage       = "image"
	KindHardBreak   = "hardBreak"
	KindRule        = "horizontalRule"
)

// Mark names the reference serializer understands. Marks are an open
// string set; anything else round-trips through the tree untouched.
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkCode      = "code"
	MarkStrike    = "strike"
	MarkLink      = "link"
	MarkHighlight = "highlight"
)

// AtomText is the placeholder rune emitted for atom leaves when
// extracting plain text, so text offsets stay aligned with positions.
const AtomText = "￼"

// Node is one tree node. Text lives in leaves; structure in the rest.
type Node struct {
	Kind  string
	Level int
	Text  string
	Marks []string
	Attrs map[string]string

	Children []*Node
}

// IsText reports whether the node is a text leaf.
func (n *Node) IsText() bool { return n.Kind == KindText }

// IsLeaf reports whether the node has no content of its own.
func (n *Node) IsLeaf() bool {
	switch n.Kind {
	case KindText, KindImage, KindHardBreak, KindRule:
		return true
	}
	return false
}

// IsTextblock reports whether the node holds inline content directly.
func (n *Node) IsTextblock() bool {
	switch n.Kind {
	case KindHeading, KindParagraph, KindCodeBlock:
		return true
	}
	return false
}

// Size returns the number of position slots the node occupies.
func (n *Node) Size() int {
	switch {
	case n.IsText():
		return utf8.RuneCountInString(n.Text)
	case n.IsLeaf():
		return 1
	}
	return n.ContentSize() + 2
}

// ContentSize returns the combined size of the node's children.
func (n *Node) ContentSize() int {
	size := 0
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// HasMark reports whether a text node carries the mark.
func (n *Node) HasMark(mark string) bool {
	for _, m := range n.Marks {
		if m == mark {
			return true
		}
	}
	return false
}

func (n *Node) clone() *Node {
	out := &Node{
		Kind:  n.Kind,
		Level: n.Level,
		Text:  n.Text,
	}
	if n.Marks != nil {
		out.Marks = append([]string(nil), n.Marks...)
	}
	if n.Attrs != nil {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, c.clone())
	}
	return out
}

func sameMarks(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// NewDoc builds a document root.
func NewDoc(blocks ...*Node) *Node {
	return &Node{Kind: KindDoc, Children: blocks}
}

// NewHeading builds a heading of the given level.
func NewHeading(level int, inline ...*Node) *Node {
	return &Node{Kind: KindHeading, Level: level, Children: inline}
}

// NewParagraph builds a paragraph.
func NewParagraph(inline ...*Node) *Node {
	return &Node{Kind: KindParagraph, Children: inline}
}

// NewBlockquote builds a block quote.
func NewBlockquote(blocks ...*Node) *Node {
	return &Node{Kind: KindBlockquote, Children: blocks}
}

// NewBulletList builds an unordered list.
func NewBulletList(items ...*Node) *Node {
	return &Node{Kind: KindBulletList, Children: items}
}

// NewOrderedList builds an ordered list.
func NewOrderedList(items ...*Node) *Node {
	return &Node{Kind: KindOrderedList, Children: items}
}

// NewListItem builds a list item holding block content.
func NewListItem(blocks ...*Node) *Node {
	return &Node{Kind: KindListItem, Children: blocks}
}

// NewCodeBlock builds a fenced code block with plain text content.
func NewCodeBlock(language, text string) *Node {
	n := &Node{Kind: KindCodeBlock}
	if language != "" {
		n.Attrs = map[string]string{"language": language}
	}
	if text != "" {
		n.Children = []*Node{NewText(text)}
	}
	return n
}

// NewText builds a text leaf. Marks are kept sorted and deduplicated so
// equal sets compare equal.
func NewText(text string, marks ...string) *Node {
	return &Node{Kind: KindText, Text: text, Marks: normalizeMarks(marks)}
}

func normalizeMarks(marks []string) []string {
	if len(marks) == 0 {
		return nil
	}
	out := append([]string(nil), marks...)
	sort.Strings(out)
	dedup := out[:1]
	for _, m := range out[1:] {
		if m != dedup[len(dedup)-1] {
			dedup = append(dedup, m)
		}
	}
	return dedup
}

// NewImage builds an image atom.
func NewImage(src, alt string) *Node {
	return &Node{Kind: KindImage, Attrs: map[string]string{"src": src, "alt": alt}}
}

// NewHardBreak builds a forced line break atom.
func NewHardBreak() *Node {
	return &Node{Kind: KindHardBreak}
}

// NewRule builds a thematic break.
func NewRule() *Node {
	return &Node{Kind: KindRule}
}
