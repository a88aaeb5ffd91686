// Package selection computes word, visual-line, and block boundaries
// on a live view, and drives the progressive expand-selection
// escalation. Everything here is pure: functions read the view and
// return ranges; they never mutate the engine.
package selection

import (
	"unicode"

	"github.com/vmarkdev/vmark/internal/editor"
)

// walkBudget caps each outward coordinate walk so pathologically long
// unwrapped lines stay cheap.
const walkBudget = 500

// IsWordRune reports whether r belongs to a word: Unicode letters,
// digits, and the underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordBoundaries expands pos to the maximal run of word runes
// containing it. Offsets are rune offsets into text. It reports false
// when pos is not adjacent to any word rune.
func WordBoundaries(text string, pos int) (editor.Range, bool) {
	runes := []rune(text)
	if pos < 0 || pos > len(runes) {
		return editor.Range{}, false
	}

	inWord := pos < len(runes) && IsWordRune(runes[pos])
	atWordEnd := pos > 0 && IsWordRune(runes[pos-1])
	if !inWord && !atWordEnd {
		return editor.Range{}, false
	}

	start, end := pos, pos
	for start > 0 && IsWordRune(runes[start-1]) {
		start--
	}
	for end < len(runes) && IsWordRune(runes[end]) {
		end++
	}
	return editor.Range{From: start, To: end}, true
}

// VisualLineBoundaries expands [from,to] to the rendered line(s)
// containing it, walking outward one position at a time and comparing
// vertical coordinates. Each direction walks at most walkBudget steps.
// A coordinate failure stops that direction at the last successful
// position; the result is partial, never an error.
func VisualLineBoundaries(view editor.View, from, to int) editor.Range {
	doc := view.DocRange()

	start := from
	if anchor, err := view.CoordsAtPos(from); err == nil {
		for i := 0; i < walkBudget && start > doc.From; i++ {
			c, err := view.CoordsAtPos(start - 1)
			if err != nil || c.Top != anchor.Top {
				break
			}
			start--
		}
	}

	end := to
	if anchor, err := view.CoordsAtPos(to); err == nil {
		for i := 0; i < walkBudget && end < doc.To; i++ {
			c, err := view.CoordsAtPos(end + 1)
			if err != nil || c.Top != anchor.Top {
				break
			}
			end++
		}
	}

	return editor.Range{From: start, To: end}
}

// EnclosingBlock returns the innermost block container holding pos. It
// reports false outside any block.
func EnclosingBlock(view editor.View, pos int) (editor.Range, bool) {
	spans := view.AncestorSpans(pos)
	if len(spans) == 0 {
		return editor.Range{}, false
	}
	return spans[0], true
}

// Expand widens sel by exactly one tier: enclosing word for a collapsed
// cursor, then the visual line, then each structural ancestor in turn,
// then the whole document. The result never shrinks below sel, so
// repeated calls converge on the full document.
func Expand(view editor.View, sel editor.Range) editor.Range {
	if sel.Collapsed() {
		if word, ok := WordAt(view, sel.From); ok && word.Covers(sel) && word.Size() > 0 {
			return word
		}
	}

	line := VisualLineBoundaries(view, sel.From, sel.To)
	if line.Covers(sel) && line.Size() > sel.Size() {
		return line
	}

	for _, span := range view.AncestorSpans(sel.From) {
		if span.Covers(sel) && span.Size() > sel.Size() {
			return span
		}
	}

	return view.DocRange()
}

// WordAt maps pos into its innermost block's text, finds the word
// there, and maps back. The alignment check guards against blocks whose
// extracted text does not correspond one-to-one with positions.
func WordAt(view editor.View, pos int) (editor.Range, bool) {
	block, ok := EnclosingBlock(view, pos)
	if !ok {
		block = view.DocRange()
	}

	text := view.TextBetween(block.From, block.To)
	word, ok := WordBoundaries(text, pos-block.From)
	if !ok {
		return editor.Range{}, false
	}

	out := editor.Range{From: block.From + word.From, To: block.From + word.To}
	if view.TextBetween(out.From, out.To) != substrRunes(text, word.From, word.To) {
		return editor.Range{}, false
	}
	return out, true
}

func substrRunes(s string, from, to int) string {
	runes := []rune(s)
	return string(runes[from:to])
}
