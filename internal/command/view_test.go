package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/editor"
	"github.com/vmarkdev/vmark/internal/editor/caretsync"
	"github.com/vmarkdev/vmark/internal/editor/richdoc"
	"github.com/vmarkdev/vmark/internal/editor/textbuf"
	"github.com/vmarkdev/vmark/internal/menu"
	"github.com/vmarkdev/vmark/internal/session"
)

const modeSwitchDoc = "# Hello\n\nWorld bold!\n"

func TestSourceModeToggleCarriesCaret(t *testing.T) {
	store := document.NewStore()
	doc := store.Open(modeSwitchDoc, "/notes/a.md")

	sessions := session.NewManager()
	sessions.Register(testWindow)

	rich := richdoc.NewEditor(richdoc.Parse(modeSwitchDoc))
	src := textbuf.NewEditor(textbuf.NewBuffer(modeSwitchDoc))

	deps, bus := testHarness(nil)
	deps.Registry.SetActive(editor.SurfaceWYSIWYG, rich)
	deps.Registry.SetActive(editor.SurfaceSource, src)
	deps.ActiveDocument = func() (document.Document, bool) { return store.Get(doc.ID) }

	d := NewViewDispatcher(deps, sessions, caretsync.NewTranslator(store))
	d.Setup()

	// Caret two characters into the paragraph on the rich side.
	rich.SetSelection(editor.Range{From: 10, To: 10})

	bus.Emit(menu.CmdSourceMode, testWindow)

	sess, ok := sessions.Get(testWindow)
	require.True(t, ok)
	assert.Equal(t, session.ModeSource, sess.View.Mode)
	assert.Equal(t, editor.Range{From: 11, To: 11}, src.Selection(),
		"caret lands at the same offset of the same paragraph")
	assert.True(t, src.Focused())

	bus.Emit(menu.CmdSourceMode, testWindow)

	sess, _ = sessions.Get(testWindow)
	assert.Equal(t, session.ModeWYSIWYG, sess.View.Mode)
	assert.Equal(t, editor.Range{From: 10, To: 10}, rich.Selection(),
		"switching back restores the original caret")
	assert.True(t, rich.Focused())
}

func TestSourceModeToggleWithoutDestinationEditor(t *testing.T) {
	store := document.NewStore()
	doc := store.Open(modeSwitchDoc, "/notes/a.md")

	sessions := session.NewManager()
	sessions.Register(testWindow)

	rich := richdoc.NewEditor(richdoc.Parse(modeSwitchDoc))

	deps, bus := testHarness(nil)
	deps.Registry.SetActive(editor.SurfaceWYSIWYG, rich)
	deps.ActiveDocument = func() (document.Document, bool) { return store.Get(doc.ID) }

	translator := caretsync.NewTranslator(store)
	NewViewDispatcher(deps, sessions, translator).Setup()

	rich.SetSelection(editor.Range{From: 10, To: 10})
	bus.Emit(menu.CmdSourceMode, testWindow)

	sess, _ := sessions.Get(testWindow)
	assert.Equal(t, session.ModeSource, sess.View.Mode,
		"mode flips even before the source editor mounts")

	// The record stays queued for the editor that mounts later.
	pos, ok := translator.SourcePosition(doc.ID)
	require.True(t, ok)
	assert.Equal(t, 11, pos)
}

func TestFocusAndTypewriterToggles(t *testing.T) {
	sessions := session.NewManager()
	sessions.Register(testWindow)

	deps, bus := testHarness(nil)
	d := NewViewDispatcher(deps, sessions, caretsync.NewTranslator(document.NewStore()))
	d.Setup()

	bus.Emit(menu.CmdFocusMode, testWindow)
	sess, _ := sessions.Get(testWindow)
	assert.True(t, sess.View.FocusMode)

	bus.Emit(menu.CmdTypewriterMode, testWindow)
	sess, _ = sessions.Get(testWindow)
	assert.True(t, sess.View.Typewriter)

	bus.Emit(menu.CmdFocusMode, testWindow)
	sess, _ = sessions.Get(testWindow)
	assert.False(t, sess.View.FocusMode, "second toggle turns it back off")
}
