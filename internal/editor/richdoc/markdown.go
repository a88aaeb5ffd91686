package richdoc

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parse builds a document from markdown source. The mapping is the
// CommonMark subset the node schema covers; unknown inline containers
// contribute their text transparently.
func Parse(src string) *Document {
	data := []byte(src)
	root := goldmark.DefaultParser().Parse(text.NewReader(data))

	doc := NewDoc(convertBlocks(root, data)...)
	if len(doc.Children) == 0 {
		doc.Children = []*Node{NewParagraph()}
	}
	return New(doc)
}

func convertBlocks(parent ast.Node, src []byte) []*Node {
	var out []*Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if n := convertBlock(c, src); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func convertBlock(n ast.Node, src []byte) *Node {
	switch t := n.(type) {
	case *ast.Heading:
		return NewHeading(t.Level, convertInline(n, src, nil)...)
	case *ast.Paragraph:
		return NewParagraph(convertInline(n, src, nil)...)
	case *ast.TextBlock:
		// Tight list items hold their inline content in a text block.
		return NewParagraph(convertInline(n, src, nil)...)
	case *ast.Blockquote:
		return NewBlockquote(convertBlocks(n, src)...)
	case *ast.List:
		items := convertBlocks(n, src)
		if t.IsOrdered() {
			return NewOrderedList(items...)
		}
		return NewBulletList(items...)
	case *ast.ListItem:
		return NewListItem(convertBlocks(n, src)...)
	case *ast.FencedCodeBlock:
		return NewCodeBlock(string(t.Language(src)), blockLines(n, src))
	case *ast.CodeBlock:
		return NewCodeBlock("", blockLines(n, src))
	case *ast.ThematicBreak:
		return NewRule()
	case *ast.HTMLBlock:
		return NewParagraph(NewText(blockLines(n, src)))
	}
	return nil
}

func convertInline(parent ast.Node, src []byte, marks []string) []*Node {
	var out []*Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			if txt := string(t.Segment.Value(src)); txt != "" {
				out = append(out, NewText(txt, marks...))
			}
			if t.HardLineBreak() {
				out = append(out, NewHardBreak())
			} else if t.SoftLineBreak() {
				out = append(out, NewText("\n", marks...))
			}
		case *ast.String:
			out = append(out, NewText(string(t.Value), marks...))
		case *ast.Emphasis:
			mark := MarkItalic
			if t.Level >= 2 {
				mark = MarkBold
			}
			out = append(out, convertInline(c, src, appendMark(marks, mark))...)
		case *ast.CodeSpan:
			out = append(out, convertInline(c, src, appendMark(marks, MarkCode))...)
		case *ast.Link:
			out = append(out, convertInline(c, src, appendMark(marks, MarkLink))...)
		case *ast.AutoLink:
			out = append(out, NewText(string(t.URL(src)), appendMark(marks, MarkLink)...))
		case *ast.Image:
			out = append(out, NewImage(string(t.Destination), inlineText(c, src)))
		case *ast.RawHTML:
			if txt := segmentsText(t.Segments, src); txt != "" {
				out = append(out, NewText(txt, marks...))
			}
		default:
			if c.HasChildren() {
				out = append(out, convertInline(c, src, marks)...)
			}
		}
	}
	return out
}

func appendMark(marks []string, mark string) []string {
	out := make([]string, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, mark)
}

func blockLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func segmentsText(segs *text.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(src))
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// markDelims orders the marks the serializer can spell, outermost
// first. Marks outside this table serialize as plain text.
var markDelims = []struct {
	name  string
	delim string
}{
	{MarkBold, "**"},
	{MarkItalic, "*"},
	{MarkStrike, "~~"},
	{MarkHighlight, "=="},
	{MarkCode, "`"},
}

// Markdown serializes the document back to markdown. Link targets are
// not represented in the mark model and serialize as plain text.
func (d *Document) Markdown() string {
	return Serialize(d.root)
}

// Serialize renders a doc tree as markdown with LF line endings and a
// trailing newline.
func Serialize(root *Node) string {
	blocks := make([]string, 0, len(root.Children))
	for _, b := range root.Children {
		blocks = append(blocks, serializeBlock(b))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func serializeBlock(n *Node) string {
	switch n.Kind {
	case KindHeading:
		level := min(max(n.Level, 1), 6)
		return strings.Repeat("#", level) + " " + serializeInline(n.Children)
	case KindParagraph:
		return serializeInline(n.Children)
	case KindCodeBlock:
		fence := "```" + n.Attrs["language"]
		return fence + "\n" + textContent(n) + "\n```"
	case KindBlockquote:
		return prefixLines(serializeBlocks(n.Children), "> ", "> ")
	case KindBulletList:
		items := make([]string, 0, len(n.Children))
		for _, item := range n.Children {
			items = append(items, prefixLines(serializeBlocks(item.Children), "- ", "  "))
		}
		return strings.Join(items, "\n")
	case KindOrderedList:
		items := make([]string, 0, len(n.Children))
		for i, item := range n.Children {
			marker := fmt.Sprintf("%d. ", i+1)
			indent := strings.Repeat(" ", len(marker))
			items = append(items, prefixLines(serializeBlocks(item.Children), marker, indent))
		}
		return strings.Join(items, "\n")
	case KindRule:
		return "---"
	}
	return serializeInline(n.Children)
}

func serializeBlocks(blocks []*Node) string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, serializeBlock(b))
	}
	return strings.Join(out, "\n\n")
}

func serializeInline(inline []*Node) string {
	var b strings.Builder
	for _, c := range inline {
		switch c.Kind {
		case KindText:
			writeMarked(&b, c)
		case KindHardBreak:
			b.WriteString("\\\n")
		case KindImage:
			fmt.Fprintf(&b, "![%s](%s)", c.Attrs["alt"], c.Attrs["src"])
		}
	}
	return b.String()
}

func writeMarked(b *strings.Builder, n *Node) {
	var open []string
	for _, md := range markDelims {
		if n.HasMark(md.name) {
			open = append(open, md.delim)
			b.WriteString(md.delim)
		}
	}
	b.WriteString(n.Text)
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString(open[i])
	}
}

func textContent(n *Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.IsText() {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		if line == "" {
			prefix = strings.TrimRight(prefix, " ")
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
