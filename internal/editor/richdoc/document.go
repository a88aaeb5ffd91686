package richdoc

import (
	"strings"

	"github.com/vmarkdev/vmark/internal/editor"
)

// Document is a mutable tree document with selection state. All
// mutation goes through its methods; content changes bump the revision
// so async consumers and caches can detect staleness. Selection and
// stored-mark changes do not count as content changes.
type Document struct {
	root        *Node
	selections  []editor.Range
	storedMarks []string
	revision    uint64
}

// New wraps a doc root in a Document with a collapsed selection at the
// start.
func New(root *Node) *Document {
	if root == nil {
		root = NewDoc(NewParagraph())
	}
	return &Document{
		root:       root,
		selections: []editor.Range{{}},
		revision:   1,
	}
}

// Root returns the live tree. Callers must treat it as read-only.
func (d *Document) Root() *Node { return d.root }

// Revision returns the content revision.
func (d *Document) Revision() uint64 { return d.revision }

// ContentSize returns the document's position upper bound.
func (d *Document) ContentSize() int { return d.root.ContentSize() }

// DocRange returns the whole-document span.
func (d *Document) DocRange() editor.Range {
	return editor.Range{From: 0, To: d.ContentSize()}
}

// Selection returns the primary selection.
func (d *Document) Selection() editor.Range { return d.selections[0] }

// Selections returns every cursor's range, primary first.
func (d *Document) Selections() []editor.Range {
	out := make([]editor.Range, len(d.selections))
	copy(out, d.selections)
	return out
}

// SetSelection replaces all cursors with a single range, clamped to the
// document.
func (d *Document) SetSelection(r editor.Range) {
	d.selections = []editor.Range{d.clampRange(r)}
}

// SetSelections replaces the cursor set. Empty input collapses to a
// cursor at the document start.
func (d *Document) SetSelections(rs []editor.Range) {
	if len(rs) == 0 {
		d.selections = []editor.Range{{}}
		return
	}
	out := make([]editor.Range, len(rs))
	for i, r := range rs {
		out[i] = d.clampRange(r)
	}
	d.selections = out
}

// StoredMarks returns the marks pending for the next typed character.
func (d *Document) StoredMarks() []string {
	return append([]string(nil), d.storedMarks...)
}

// SetStoredMarks replaces the pending mark set.
func (d *Document) SetStoredMarks(marks []string) {
	d.storedMarks = normalizeMarks(marks)
}

// ClearStoredMarks drops all pending marks.
func (d *Document) ClearStoredMarks() {
	d.storedMarks = nil
}

func (d *Document) clampRange(r editor.Range) editor.Range {
	size := d.ContentSize()
	if r.From > r.To {
		r.From, r.To = r.To, r.From
	}
	r.From = min(max(r.From, 0), size)
	r.To = min(max(r.To, 0), size)
	return r
}

// span pairs a node with its absolute content range.
type span struct {
	node  *Node
	start int
	end   int
}

// ancestors returns the container chain holding pos, outermost first,
// starting with the doc itself. Positions sitting on a child's open or
// close slot belong to the parent.
func (d *Document) ancestors(pos int) []span {
	var chain []span
	node := d.root
	start := 0
	for {
		chain = append(chain, span{node: node, start: start, end: start + node.ContentSize()})
		if node.IsTextblock() {
			return chain
		}
		descended := false
		childPos := start
		for _, c := range node.Children {
			sz := c.Size()
			if !c.IsLeaf() && childPos < pos && pos < childPos+sz {
				node = c
				start = childPos + 1
				descended = true
				break
			}
			childPos += sz
		}
		if !descended {
			return chain
		}
	}
}

// AncestorSpans returns the content spans of the containers enclosing
// pos, innermost first, excluding the document itself.
func (d *Document) AncestorSpans(pos int) []editor.Range {
	chain := d.ancestors(pos)
	out := make([]editor.Range, 0, len(chain)-1)
	for i := len(chain) - 1; i >= 1; i-- {
		out = append(out, editor.Range{From: chain[i].start, To: chain[i].end})
	}
	return out
}

func (d *Document) textblockAt(pos int) (span, bool) {
	chain := d.ancestors(pos)
	last := chain[len(chain)-1]
	if last.node.IsTextblock() {
		return last, true
	}
	return span{}, false
}

// BlockSpan is a textblock with its absolute content range.
type BlockSpan struct {
	Node  *Node
	Kind  string
	Start int
	End   int
}

// Textblocks returns every textblock in document order.
func (d *Document) Textblocks() []BlockSpan {
	var out []BlockSpan
	pos := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			sz := c.Size()
			if c.IsTextblock() {
				out = append(out, BlockSpan{Node: c, Kind: c.Kind, Start: pos + 1, End: pos + sz - 1})
			} else if !c.IsLeaf() {
				pos++
				walk(c)
				pos++
				continue
			}
			pos += sz
		}
	}
	walk(d.root)
	return out
}

// TextBetween extracts plain text between two positions. Atom leaves
// contribute a placeholder rune so offsets stay aligned with positions;
// textblock boundaries contribute a newline.
func (d *Document) TextBetween(from, to int) string {
	r := d.clampRange(editor.Range{From: from, To: to})
	from, to = r.From, r.To

	var parts []string
	var cur strings.Builder
	flushed := false
	pos := 0

	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			sz := c.Size()
			cstart, cend := pos, pos+sz
			if cend <= from || cstart >= to {
				pos = cend
				continue
			}
			switch {
			case c.IsText():
				runes := []rune(c.Text)
				lo := max(from-cstart, 0)
				hi := min(to-cstart, len(runes))
				cur.WriteString(string(runes[lo:hi]))
				pos = cend
			case c.IsLeaf():
				cur.WriteString(AtomText)
				pos = cend
			default:
				pos++
				walk(c)
				pos++
				if c.IsTextblock() {
					parts = append(parts, cur.String())
					cur.Reset()
					flushed = true
				}
			}
		}
	}
	walk(d.root)

	if cur.Len() > 0 || !flushed {
		parts = append(parts, cur.String())
	}
	return strings.Join(parts, "\n")
}

// MarksAt returns the marks a character typed at pos would inherit: the
// marks of the character before pos within its textblock, falling back
// to those of the character at pos at a block start.
func (d *Document) MarksAt(pos int) []string {
	tb, ok := d.textblockAt(pos)
	if !ok {
		return nil
	}
	var atPos, before *Node
	childPos := tb.start
	for _, c := range tb.node.Children {
		sz := c.Size()
		if childPos <= pos-1 && pos-1 < childPos+sz {
			before = c
		}
		if childPos <= pos && pos < childPos+sz {
			atPos = c
		}
		childPos += sz
	}
	pick := before
	if pos == tb.start || pick == nil {
		pick = atPos
	}
	if pick == nil || !pick.IsText() {
		return nil
	}
	return append([]string(nil), pick.Marks...)
}

// MarkRun returns the extent of the contiguous run of inline content
// carrying mark that contains or abuts pos.
func (d *Document) MarkRun(pos int, mark string) (editor.Range, bool) {
	tb, ok := d.textblockAt(pos)
	if !ok {
		return editor.Range{}, false
	}

	type leafSpan struct {
		start, end int
		has        bool
	}
	var leaves []leafSpan
	childPos := tb.start
	for _, c := range tb.node.Children {
		sz := c.Size()
		leaves = append(leaves, leafSpan{
			start: childPos,
			end:   childPos + sz,
			has:   c.IsText() && c.HasMark(mark),
		})
		childPos += sz
	}

	hit := -1
	for i, l := range leaves {
		if l.has && l.start <= pos && pos <= l.end {
			hit = i
			break
		}
	}
	if hit < 0 {
		return editor.Range{}, false
	}

	lo, hi := hit, hit
	for lo > 0 && leaves[lo-1].has {
		lo--
	}
	for hi < len(leaves)-1 && leaves[hi+1].has {
		hi++
	}
	return editor.Range{From: leaves[lo].start, To: leaves[hi].end}, true
}

// RangeHasMark reports whether every text character in [from,to)
// carries the mark. Ranges without text characters report false.
func (d *Document) RangeHasMark(from, to int, mark string) bool {
	r := d.clampRange(editor.Range{From: from, To: to})
	from, to = r.From, r.To

	sawText := false
	all := true
	pos := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			sz := c.Size()
			cstart, cend := pos, pos+sz
			if cend <= from || cstart >= to {
				pos = cend
				continue
			}
			if c.IsText() {
				sawText = true
				if !c.HasMark(mark) {
					all = false
				}
				pos = cend
				continue
			}
			if c.IsLeaf() {
				pos = cend
				continue
			}
			pos++
			walk(c)
			pos++
		}
	}
	walk(d.root)
	return sawText && all
}

// ToggleMark adds the mark across the range, or removes it when every
// text character in the range already carries it. Code blocks never
// take marks. It reports whether the document changed.
func (d *Document) ToggleMark(mark string, r editor.Range) bool {
	r = d.clampRange(r)
	if r.Collapsed() {
		return false
	}
	add := !d.RangeHasMark(r.From, r.To, mark)
	return d.applyMark(r.From, r.To, func(marks []string) ([]string, bool) {
		has := containsMark(marks, mark)
		if has == add {
			return marks, false
		}
		if add {
			return normalizeMarks(append(append([]string(nil), marks...), mark)), true
		}
		return removeMark(marks, mark), true
	})
}

// RemoveMarks strips every mark from text in the range, reporting
// whether anything changed.
func (d *Document) RemoveMarks(r editor.Range) bool {
	r = d.clampRange(r)
	if r.Collapsed() {
		return false
	}
	return d.applyMark(r.From, r.To, func(marks []string) ([]string, bool) {
		if len(marks) == 0 {
			return nil, false
		}
		return nil, true
	})
}

// applyMark rewrites the mark sets of text overlapping [from,to),
// splitting leaves at the range edges. The transform returns the new
// mark set and whether it differs.
func (d *Document) applyMark(from, to int, transform func([]string) ([]string, bool)) bool {
	changed := false
	pos := 0

	var walk func(n *Node, markable bool)
	walk = func(n *Node, markable bool) {
		var out []*Node
		for _, c := range n.Children {
			sz := c.Size()
			cstart, cend := pos, pos+sz

			if c.IsText() && markable && cstart < to && cend > from {
				newMarks, diff := transform(c.Marks)
				if diff {
					runes := []rune(c.Text)
					lo := max(from-cstart, 0)
					hi := min(to-cstart, len(runes))
					if lo > 0 {
						out = append(out, NewText(string(runes[:lo]), c.Marks...))
					}
					out = append(out, NewText(string(runes[lo:hi]), newMarks...))
					if hi < len(runes) {
						out = append(out, NewText(string(runes[hi:]), c.Marks...))
					}
					changed = true
					pos = cend
					continue
				}
			}

			if !c.IsLeaf() {
				pos++
				walk(c, markable && c.Kind != KindCodeBlock)
				pos++
			} else {
				pos = cend
			}
			out = append(out, c)
		}
		n.Children = mergeText(out)
	}
	walk(d.root, true)

	if changed {
		d.revision++
	}
	return changed
}

// SetBlockType converts every textblock touching the range to the given
// kind. Converting to a code block strips marks. Level applies to
// headings only. It reports whether anything changed.
func (d *Document) SetBlockType(kind string, level int, r editor.Range) bool {
	r = d.clampRange(r)
	changed := false

	for _, b := range d.Textblocks() {
		if b.Start > r.To || b.End < r.From {
			continue
		}
		n := b.Node
		if n.Kind == kind && (kind != KindHeading || n.Level == level) {
			continue
		}
		n.Kind = kind
		if kind == KindHeading {
			n.Level = level
		} else {
			n.Level = 0
		}
		if kind == KindCodeBlock {
			for _, c := range n.Children {
				c.Marks = nil
			}
			n.Children = mergeText(n.Children)
		}
		changed = true
	}

	if changed {
		d.revision++
	}
	return changed
}

// WrapBlock nests the blocks touching the range inside a new container
// of the given kind. For list kinds each block becomes its own list
// item. The selection moves to the new container's content.
func (d *Document) WrapBlock(kind string, r editor.Range) bool {
	r = d.clampRange(r)
	parent, i0, i1 := d.blockRange(r)
	if parent == nil {
		return false
	}

	wrapped := append([]*Node(nil), parent.node.Children[i0:i1+1]...)
	var container *Node
	switch kind {
	case KindBulletList, KindOrderedList:
		items := make([]*Node, len(wrapped))
		for i, b := range wrapped {
			items[i] = NewListItem(b)
		}
		container = &Node{Kind: kind, Children: items}
	default:
		container = &Node{Kind: kind, Children: wrapped}
	}

	rest := append([]*Node(nil), parent.node.Children[i1+1:]...)
	parent.node.Children = append(append(parent.node.Children[:i0:i0], container), rest...)
	d.revision++

	start := d.startOf(container)
	d.SetSelection(editor.Range{From: start, To: start + container.ContentSize()})
	return true
}

// LiftBlock dissolves the nearest enclosing container of the given kind
// around the range, splicing its content into the grandparent. List
// containers also shed their item wrappers. The selection moves to the
// lifted content.
func (d *Document) LiftBlock(kind string, r editor.Range) bool {
	r = d.clampRange(r)
	chain := d.ancestors(r.From)

	var target *Node
	for i := len(chain) - 1; i >= 1; i-- {
		if chain[i].node.Kind == kind {
			target = chain[i].node
			break
		}
	}
	if target == nil {
		return false
	}

	parent, idx := d.parentOf(target)
	if parent == nil {
		return false
	}

	content := target.Children
	if kind == KindBulletList || kind == KindOrderedList {
		var blocks []*Node
		for _, item := range content {
			blocks = append(blocks, item.Children...)
		}
		content = blocks
	}

	rest := append([]*Node(nil), parent.Children[idx+1:]...)
	parent.Children = append(append(parent.Children[:idx:idx], content...), rest...)
	d.revision++

	if len(content) > 0 {
		start := d.startOf(content[0])
		size := 0
		for _, c := range content {
			size += c.Size()
		}
		d.SetSelection(editor.Range{From: start - 1, To: start - 1 + size})
	} else {
		d.SetSelection(editor.Range{From: 0, To: 0})
	}
	return true
}

// InsertImage places an image atom at the primary selection head.
// Insertion fails outside textblocks and inside code blocks.
func (d *Document) InsertImage(src, alt string) bool {
	pos := d.Selection().From
	tb, ok := d.textblockAt(pos)
	if !ok || tb.node.Kind == KindCodeBlock {
		return false
	}

	img := NewImage(src, alt)
	var out []*Node
	inserted := false
	childPos := tb.start
	for _, c := range tb.node.Children {
		sz := c.Size()
		if !inserted && c.IsText() && childPos < pos && pos < childPos+sz {
			runes := []rune(c.Text)
			cut := pos - childPos
			out = append(out,
				NewText(string(runes[:cut]), c.Marks...),
				img,
				NewText(string(runes[cut:]), c.Marks...),
			)
			inserted = true
			childPos += sz
			continue
		}
		if !inserted && childPos >= pos {
			out = append(out, img)
			inserted = true
		}
		out = append(out, c)
		childPos += sz
	}
	if !inserted {
		out = append(out, img)
	}
	tb.node.Children = mergeText(out)
	d.revision++
	d.SetSelection(editor.Range{From: pos + 1, To: pos + 1})
	return true
}

// blockRange finds the deepest container whose direct children cover
// the range, returning it with the covered child index bounds. A
// collapsed cursor covers the block whose content holds it, or the
// block starting at it when it sits between blocks.
func (d *Document) blockRange(r editor.Range) (*span, int, int) {
	fromChain := d.ancestors(r.From)
	toChain := d.ancestors(r.To)

	depth := 0
	for depth < len(fromChain) && depth < len(toChain) &&
		fromChain[depth].node == toChain[depth].node &&
		!fromChain[depth].node.IsTextblock() {
		depth++
	}
	if depth == 0 {
		return nil, 0, 0
	}
	parent := fromChain[depth-1]

	i0, i1 := -1, -1
	childPos := parent.start
	for i, c := range parent.node.Children {
		sz := c.Size()
		covered := childPos < r.To && childPos+sz > r.From
		if r.Collapsed() {
			covered = childPos < r.From && r.From < childPos+sz
		}
		if covered {
			if i0 < 0 {
				i0 = i
			}
			i1 = i
		}
		childPos += sz
	}

	if i0 < 0 && r.Collapsed() {
		childPos = parent.start
		for i, c := range parent.node.Children {
			if childPos == r.From {
				i0, i1 = i, i
				break
			}
			childPos += c.Size()
		}
	}
	if i0 < 0 {
		return nil, 0, 0
	}
	return &parent, i0, i1
}

// parentOf locates a node's parent and child index by tree identity.
func (d *Document) parentOf(target *Node) (*Node, int) {
	var findIn func(n *Node) (*Node, int)
	findIn = func(n *Node) (*Node, int) {
		for i, c := range n.Children {
			if c == target {
				return n, i
			}
			if !c.IsLeaf() {
				if p, j := findIn(c); p != nil {
					return p, j
				}
			}
		}
		return nil, -1
	}
	return findIn(d.root)
}

// startOf returns a node's absolute content start position.
func (d *Document) startOf(target *Node) int {
	found := -1
	pos := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if found >= 0 {
				return
			}
			if c == target {
				found = pos + 1
				if c.IsLeaf() {
					found = pos
				}
				return
			}
			if !c.IsLeaf() {
				pos++
				walk(c)
				pos++
			} else {
				pos += c.Size()
			}
		}
	}
	walk(d.root)
	return found
}

func containsMark(marks []string, mark string) bool {
	for _, m := range marks {
		if m == mark {
			return true
		}
	}
	return false
}

func removeMark(marks []string, mark string) []string {
	var out []string
	for _, m := range marks {
		if m != mark {
			out = append(out, m)
		}
	}
	return out
}

// mergeText joins adjacent text leaves with identical marks and drops
// empty ones.
func mergeText(children []*Node) []*Node {
	var out []*Node
	for _, c := range children {
		if c.IsText() && c.Text == "" {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.IsText() && c.IsText() && sameMarks(last.Marks, c.Marks) {
				last.Text += c.Text
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
