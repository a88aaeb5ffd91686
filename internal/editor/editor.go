// Package editor defines the contracts between the command layer and
// the two editing surfaces: the structured WYSIWYG engine and the flat
// source engine. The engines themselves are external collaborators;
// this package specifies only the narrow call surface the core needs,
// plus the process-wide registry of which instance has focus.
package editor

// Surface names. The registry and the view commands key on these.
const (
	SurfaceWYSIWYG = "wysiwyg"
	SurfaceSource  = "source"
)

// Range is a selection span in one engine's coordinate space. Offsets
// are flat character offsets for the source engine and tree position
// slots for the structured engine. Ranges from different engines are
// never comparable; they must pass through the caretsync translator.
type Range struct {
	From int
	To   int
}

// Collapsed reports whether the range is a bare cursor.
func (r Range) Collapsed() bool { return r.From == r.To }

// Size returns the span width.
func (r Range) Size() int { return r.To - r.From }

// Covers reports whether r fully contains other.
func (r Range) Covers(other Range) bool {
	return r.From <= other.From && r.To >= other.To
}

// Coords is a position's rendered screen location. Positions on the
// same visual row share a Top value.
type Coords struct {
	Left float64
	Top  float64
}

// View is the read-only geometry surface both engines expose. The
// selection resolver and the translator depend on nothing else.
type View interface {
	// DocRange returns the full document span in this engine's
	// coordinates.
	DocRange() Range
	// TextBetween returns the plain text between two positions,
	// ignoring markup structure.
	TextBetween(from, to int) string
	// CoordsAtPos maps a position to its rendered location. Engines
	// may fail on positions that are not currently laid out.
	CoordsAtPos(pos int) (Coords, error)
	// AncestorSpans returns the block containers enclosing pos,
	// innermost first, excluding the document itself.
	AncestorSpans(pos int) []Range
	// Blocks lists the document's text-bearing blocks in order.
	Blocks() []Block
}

// Block is one text-bearing construct in document order. Kind names
// are shared across engines so the translator can count constructs on
// either side.
type Block struct {
	Kind string
	Span Range
}

// Outliner enumerates a document's text-bearing blocks. The caretsync
// translator anchors positions on it when the user switches surfaces.
type Outliner interface {
	DocRange() Range
	Blocks() []Block
}

// Editor is the minimal surface every engine instance exposes to the
// registry and the dispatchers.
type Editor interface {
	// Surface returns the engine's surface name.
	Surface() string
	// Focus returns keyboard focus to the engine after a dispatcher
	// mutates it.
	Focus()
}

// SelectionEditor is an engine whose selection the selection commands
// can read and move.
type SelectionEditor interface {
	Editor
	View
	Selection() Range
	SetSelection(Range)
}

// RichEditor is the structured engine contract. Mark names are an open
// string set; dispatchers pass them through without interpretation.
type RichEditor interface {
	SelectionEditor

	// Selections returns every cursor's range, primary first.
	Selections() []Range
	// MarksAt returns the mark names active at a position.
	MarksAt(pos int) []string
	// MarkRun returns the contiguous extent of a mark around pos.
	MarkRun(pos int, mark string) (Range, bool)
	// ToggleMark adds or removes a mark across the range. It reports
	// whether the document changed.
	ToggleMark(mark string, r Range) bool
	// RemoveMarks strips every mark from the range, reporting whether
	// anything changed.
	RemoveMarks(r Range) bool
	// StoredMarks returns the pending marks applied to the next typed
	// character.
	StoredMarks() []string
	// SetStoredMarks replaces the pending mark set.
	SetStoredMarks(marks []string)
	// ClearStoredMarks drops all pending marks.
	ClearStoredMarks()
	// SetBlockType converts the blocks touching the range. Level is
	// meaningful for headings only.
	SetBlockType(kind string, level int, r Range) bool
	// WrapBlock nests the blocks touching the range in a container of
	// the given kind.
	WrapBlock(kind string, r Range) bool
	// LiftBlock unnests the blocks touching the range out of their
	// nearest container of the given kind.
	LiftBlock(kind string, r Range) bool
	// InsertImage places an image node at the selection head.
	InsertImage(src, alt string) bool
}

// TextEditor is the flat source engine contract.
type TextEditor interface {
	SelectionEditor

	// Length returns the buffer length in characters.
	Length() int
	// Text returns the whole buffer.
	Text() string
	// LineAt returns the span of the logical line containing pos.
	LineAt(pos int) Range
	// Splice replaces [from,to) with text and applies the new
	// selection in the same step.
	Splice(from, to int, text string, sel Range)
}
