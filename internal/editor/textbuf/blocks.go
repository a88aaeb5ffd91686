package textbuf

import (
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/vmarkdev/vmark/internal/editor"
)

// blockTree is the markdown block structure of the buffer, with spans
// in rune offsets. Fenced code spans cover the interior only, and
// container spans exclude their leading markers; both are close enough
// for ancestor geometry.
type blockTree struct {
	roots []*blockNode
}

type blockNode struct {
	span     editor.Range
	kind     string
	children []*blockNode
}

func parseBlocks(source string) *blockTree {
	data := []byte(source)
	runes := []rune(source)
	root := goldmark.DefaultParser().Parse(text.NewReader(data))

	tree := &blockTree{}
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		if n := buildBlockNode(c, data, runes); n != nil {
			tree.roots = append(tree.roots, n)
		}
	}
	return tree
}

func buildBlockNode(n ast.Node, data []byte, runes []rune) *blockNode {
	if n.Type() != ast.TypeBlock {
		return nil
	}
	start, stop, ok := byteSpan(n)
	if !ok {
		return nil
	}

	span := editor.Range{
		From: utf8.RuneCount(data[:start]),
		To:   utf8.RuneCount(data[:stop]),
	}
	for span.To > span.From && runes[span.To-1] == '\n' {
		span.To--
	}

	node := &blockNode{span: span, kind: textBlockKind(n)}
	if node.kind != "" {
		// Text-bearing leaves hold inline content, not block children.
		return node
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if child := buildBlockNode(c, data, runes); child != nil {
			node.children = append(node.children, child)
		}
	}
	return node
}

// textBlockKind names text-bearing leaf blocks with the kind strings
// the structured surface uses. Containers map to the empty string.
func textBlockKind(n ast.Node) string {
	switch n.(type) {
	case *ast.Heading:
		return "heading"
	case *ast.Paragraph, *ast.TextBlock, *ast.HTMLBlock:
		return "paragraph"
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return "codeBlock"
	}
	return ""
}

// byteSpan returns a block's source extent in bytes. Containers have
// no lines of their own and take the union of their children.
func byteSpan(n ast.Node) (int, int, bool) {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start, lines.At(lines.Len() - 1).Stop, true
	}

	start, stop, ok := 0, 0, false
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		s, e, childOK := byteSpan(c)
		if !childOK {
			continue
		}
		if !ok || s < start {
			start = s
		}
		if !ok || e > stop {
			stop = e
		}
		ok = true
	}
	return start, stop, ok
}

// textBlocks lists the text-bearing leaf blocks in document order.
func (t *blockTree) textBlocks() []editor.Block {
	var out []editor.Block
	var walk func(nodes []*blockNode)
	walk = func(nodes []*blockNode) {
		for _, n := range nodes {
			if n.kind != "" {
				out = append(out, editor.Block{Kind: n.kind, Span: n.span})
			}
			walk(n.children)
		}
	}
	walk(t.roots)
	return out
}

// ancestorsAt returns the chain of block spans containing pos,
// innermost first.
func (t *blockTree) ancestorsAt(pos int) []editor.Range {
	var chain []editor.Range
	nodes := t.roots
	for len(nodes) > 0 {
		var next []*blockNode
		for _, n := range nodes {
			if n.span.From <= pos && pos <= n.span.To {
				chain = append(chain, n.span)
				next = n.children
				break
			}
		}
		nodes = next
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
