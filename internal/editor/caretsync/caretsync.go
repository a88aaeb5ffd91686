// Package caretsync carries the caret across surface switches. The
// structured and source coordinate spaces share no addressing, so a
// position travels as an anchor: the kind and ordinal of its enclosing
// block construct plus a text offset inside it. When the construct
// vanished between switches, resolution degrades to the nearest
// preceding construct of the same kind, then to the document start.
package caretsync

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/editor"
	"github.com/vmarkdev/vmark/internal/editor/textbuf"
	"github.com/vmarkdev/vmark/internal/lru"
)

// indexCacheSize bounds the per-revision source block indexes kept
// around for repeated switches on unchanged documents.
const indexCacheSize = 8

// Anchor identifies a caret position independently of either surface's
// coordinate space. The zero Anchor means the document start.
type Anchor struct {
	Kind    string
	Ordinal int
	Offset  int
}

// AnchorAt computes the anchor for a position. A position outside
// every block anchors to the end of the nearest preceding block; when
// nothing precedes it, to the document start.
func AnchorAt(view editor.Outliner, pos int) Anchor {
	ordinals := make(map[string]int)
	var preceding Anchor

	for _, b := range view.Blocks() {
		ord := ordinals[b.Kind]
		ordinals[b.Kind]++

		if pos >= b.Span.From && pos <= b.Span.To {
			return Anchor{Kind: b.Kind, Ordinal: ord, Offset: pos - b.Span.From}
		}
		if b.Span.To < pos {
			preceding = Anchor{Kind: b.Kind, Ordinal: ord, Offset: b.Span.Size()}
		}
	}
	return preceding
}

// Resolve maps an anchor to a position in view's coordinate space. A
// missing ordinal falls back to the last construct of the same kind; a
// missing kind falls back to the document start. The offset is clamped
// into the resolved block, so Resolve never fails.
func Resolve(view editor.Outliner, a Anchor) int {
	doc := view.DocRange()
	if a.Kind == "" {
		return doc.From
	}

	var sameKind []editor.Block
	for _, b := range view.Blocks() {
		if b.Kind == a.Kind {
			sameKind = append(sameKind, b)
		}
	}
	if len(sameKind) == 0 {
		return doc.From
	}

	b := sameKind[max(0, min(a.Ordinal, len(sameKind)-1))]
	return b.Span.From + max(0, min(a.Offset, b.Span.Size()))
}

// Translate maps a position from one surface to another in one step.
func Translate(from, to editor.Outliner, pos int) int {
	return Resolve(to, AnchorAt(from, pos))
}

// Surface is a live engine the translator can read a caret from and
// restore one into.
type Surface interface {
	editor.Outliner
	Surface() string
	Selection() editor.Range
	SetSelection(editor.Range)
}

// Translator records the caret on the document when a surface is left
// and restores it when the other surface takes over.
type Translator struct {
	store  *document.Store
	index  *lru.Cache[string, sourceIndex]
	logger *zap.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Translator) { t.logger = logger }
}

// NewTranslator returns a translator writing through the given store.
func NewTranslator(store *document.Store, opts ...Option) *Translator {
	t := &Translator{
		store:  store,
		index:  lru.NewCache[string, sourceIndex](indexCacheSize),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordSwitch anchors the caret of the surface being left and stores
// it on the document for the next switch to consume.
func (t *Translator) RecordSwitch(docID string, from Surface) Anchor {
	a := AnchorAt(from, from.Selection().From)
	t.store.SetCursorInfo(docID, &document.CursorInfo{
		Surface: from.Surface(),
		Kind:    a.Kind,
		Ordinal: a.Ordinal,
		Offset:  a.Offset,
	})
	t.logger.Debug("recorded caret anchor",
		zap.String("document", docID),
		zap.String("surface", from.Surface()),
		zap.String("kind", a.Kind),
		zap.Int("ordinal", a.Ordinal),
		zap.Int("offset", a.Offset))
	return a
}

// RestoreInto consumes the document's recorded caret, resolves it in
// the surface being entered, and applies it as a collapsed selection.
// Without a recorded caret the surface's selection stays untouched.
func (t *Translator) RestoreInto(docID string, to Surface) (int, bool) {
	doc, ok := t.store.Get(docID)
	if !ok || doc.CursorInfo == nil {
		return 0, false
	}

	pos := Resolve(to, anchorOf(doc.CursorInfo))
	to.SetSelection(editor.Range{From: pos, To: pos})
	t.store.SetCursorInfo(docID, nil)

	t.logger.Debug("restored caret",
		zap.String("document", docID),
		zap.String("surface", to.Surface()),
		zap.Int("position", pos))
	return pos, true
}

// SourcePosition resolves the document's recorded caret against its
// current source text, for seeding a source surface that has not
// mounted yet. The block index is cached per revision, so repeated
// switches on an unchanged document skip the reparse. The record is
// left in place for RestoreInto.
func (t *Translator) SourcePosition(docID string) (int, bool) {
	doc, ok := t.store.Get(docID)
	if !ok || doc.CursorInfo == nil {
		return 0, false
	}

	key := fmt.Sprintf("%s@%d", doc.ID, doc.Revision)
	idx, err := t.index.GetOrCreate(key, func() (sourceIndex, error) {
		return indexSource(doc.Content), nil
	})
	if err != nil {
		return 0, false
	}
	return Resolve(idx, anchorOf(doc.CursorInfo)), true
}

func anchorOf(info *document.CursorInfo) Anchor {
	return Anchor{Kind: info.Kind, Ordinal: info.Ordinal, Offset: info.Offset}
}

// sourceIndex is a materialized block outline detached from any live
// engine.
type sourceIndex struct {
	doc    editor.Range
	blocks []editor.Block
}

func (s sourceIndex) DocRange() editor.Range { return s.doc }
func (s sourceIndex) Blocks() []editor.Block { return s.blocks }

func indexSource(content string) sourceIndex {
	e := textbuf.NewEditor(textbuf.NewBuffer(content))
	return sourceIndex{doc: e.DocRange(), blocks: e.Blocks()}
}
