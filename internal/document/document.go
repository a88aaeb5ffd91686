// Package document holds the process-wide document model: one Document
// per open tab, identified by a ULID that is never reused. All mutation
// goes through Store action methods; nothing outside this package
// writes a Document field directly.
package document

import (
	"github.com/vmarkdev/vmark/internal/ulid"
)

// LineEnding describes the newline style detected in a document.
type LineEnding string

// Line ending styles.
const (
	LineEndingLF      LineEnding = "lf"
	LineEndingCRLF    LineEnding = "crlf"
	LineEndingUnknown LineEnding = "unknown"
)

// HardBreakStyle describes how forced line breaks inside paragraphs are
// encoded in the markdown source.
type HardBreakStyle string

// Hard break styles.
const (
	HardBreakBackslash HardBreakStyle = "backslash"
	HardBreakTwoSpaces HardBreakStyle = "twoSpaces"
	HardBreakUnknown   HardBreakStyle = "unknown"
)

// CursorInfo is the engine-agnostic serialized caret position written
// by the cursor translator when the user switches surfaces, and
// consumed on the next switch. Positions are anchored to block-level
// constructs rather than raw offsets because the two surfaces do not
// share a coordinate space.
type CursorInfo struct {
	// Surface that wrote the record ("wysiwyg" or "source").
	Surface string
	// Kind of the enclosing block construct, e.g. "heading" or
	// "paragraph".
	Kind string
	// Ordinal is the zero-based index of the construct among blocks of
	// the same kind, in document order.
	Ordinal int
	// Offset is the rune offset within the construct's plain text.
	Offset int
}

// Document is the unit of editable content backing one tab.
type Document struct {
	// ID is unique for the process lifetime and never reused.
	ID string
	// Content is the live markdown text.
	Content string
	// FilePath is empty for untitled documents.
	FilePath string
	// Missing is set when the backing file vanished from disk.
	Missing bool
	// ChangedOnDisk is set when the backing file was modified outside
	// the editor since the last load or save.
	ChangedOnDisk bool

	LineEnding LineEnding
	HardBreak  HardBreakStyle

	// CursorInfo is nil until a surface switch records a position.
	CursorInfo *CursorInfo

	// Revision increases on every content change and every save. Async
	// consumers compare revisions to detect stale results.
	Revision uint64

	savedContent string
}

// Dirty reports whether the content differs from the last persisted
// content.
func (d *Document) Dirty() bool {
	return d.Content != d.savedContent
}

// Untitled reports whether the document has no backing file yet.
func (d *Document) Untitled() bool {
	return d.FilePath == ""
}

// SavedContent returns the content as of the last successful save or
// load.
func (d *Document) SavedContent() string {
	return d.savedContent
}

func newDocument(content, filePath string) *Document {
	return &Document{
		ID:           ulid.GenerateID(),
		Content:      content,
		FilePath:     filePath,
		LineEnding:   DetectLineEnding(content),
		HardBreak:    DetectHardBreakStyle(content),
		Revision:     1,
		savedContent: content,
	}
}

func (d *Document) clone() Document {
	out := *d
	if d.CursorInfo != nil {
		ci := *d.CursorInfo
		out.CursorInfo = &ci
	}
	return out
}
