package save

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/history"
	"github.com/vmarkdev/vmark/internal/recent"
	"github.com/vmarkdev/vmark/internal/session"
)

type fixture struct {
	fsys     afero.Fs
	store    *document.Store
	sessions *session.Manager
	history  *history.Store
	recents  *recent.Store
	pipeline *Pipeline

	doc document.Document
	tab session.Tab
}

// newFixture opens one document in the main window, clean, backed by
// path (or untitled when path is empty).
func newFixture(t *testing.T, content, path string, opts ...PipelineOption) *fixture {
	t.Helper()

	f := &fixture{
		fsys:     afero.NewMemMapFs(),
		store:    document.NewStore(),
		sessions: session.NewManager(),
	}
	f.sessions.Register(session.LabelMain)

	if path == "" {
		f.doc = f.store.OpenUntitled(content)
	} else {
		f.doc = f.store.Open(content, path)
	}
	tab, ok := f.sessions.AddTab(session.LabelMain, f.doc.ID, session.DeriveTitle(path))
	require.True(t, ok)
	f.tab = tab

	f.history = history.NewStore(f.fsys, "/state/history")
	f.recents = recent.NewStore(f.fsys, "/state/recent.json")

	opts = append([]PipelineOption{
		WithSnapshots(f.history),
		WithRecents(f.recents),
	}, opts...)
	f.pipeline = NewPipeline(f.fsys, f.store, f.sessions, opts...)
	return f
}

func (f *fixture) document(t *testing.T) *document.Document {
	t.Helper()
	doc, ok := f.store.Get(f.doc.ID)
	require.True(t, ok)
	return &doc
}

func TestSaveToPath_NormalizesAndRecords(t *testing.T) {
	f := newFixture(t, "a  \r\nb\r\n", "/notes/a.md",
		WithHardBreakPreference("backslash"),
		WithLineEndingPreference("lf"))

	edited := "a  \r\nb edited\r\n"
	f.store.SetContent(f.doc.ID, edited)

	ok := f.pipeline.SaveToPath(f.tab.ID, "/notes/a.md", edited, TriggerManual)
	require.True(t, ok)

	written, err := afero.ReadFile(f.fsys, "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "a\\\nb edited\n", string(written),
		"two-space break becomes a backslash, CRLF becomes LF")

	doc := f.document(t)
	assert.False(t, doc.Dirty())
	assert.Equal(t, document.LineEndingLF, doc.LineEnding)
	assert.Equal(t, document.HardBreakBackslash, doc.HardBreak)

	files, err := f.recents.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/a.md"}, files)

	snaps, err := f.history.List("/notes/a.md")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, history.TriggerManual, snaps[0].Trigger)

	content, err := f.history.Content(snaps[0])
	require.NoError(t, err)
	assert.Equal(t, "a\\\nb edited\n", content, "snapshots hold what reached disk")
}

func TestSaveToPath_PreserveKeepsDetectedStyles(t *testing.T) {
	f := newFixture(t, "a  \r\nb\r\n", "/notes/a.md")

	edited := "a  \r\nb!\r\n"
	f.store.SetContent(f.doc.ID, edited)

	require.True(t, f.pipeline.SaveToPath(f.tab.ID, "/notes/a.md", edited, TriggerManual))

	written, err := afero.ReadFile(f.fsys, "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, edited, string(written), "preserve changes nothing")
}

func TestSaveToPath_SaveAsMovesTheDocument(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetContent(f.doc.ID, "hello world\n")

	require.True(t, f.pipeline.SaveToPath(f.tab.ID, "/notes/renamed.md", "hello world\n", TriggerManual))

	doc := f.document(t)
	assert.Equal(t, "/notes/renamed.md", doc.FilePath)
	assert.False(t, doc.Dirty())

	tab, ok := f.sessions.ActiveTab(session.LabelMain)
	require.True(t, ok)
	assert.Equal(t, "renamed", tab.Title)
}

func TestSaveToPath_WriteFailureTouchesNothing(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetContent(f.doc.ID, "changed\n")

	f.pipeline.fsys = afero.NewReadOnlyFs(f.fsys)

	ok := f.pipeline.SaveToPath(f.tab.ID, "/notes/a.md", "changed\n", TriggerManual)
	require.False(t, ok)

	doc := f.document(t)
	assert.True(t, doc.Dirty(), "failed save records nothing")

	files, err := f.recents.Files()
	require.NoError(t, err)
	assert.Empty(t, files)

	snaps, err := f.history.List("/notes/a.md")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSaveToPath_SnapshotFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetContent(f.doc.ID, "changed\n")

	f.pipeline.snapshots = failingSnapshotter{}

	assert.True(t, f.pipeline.SaveToPath(f.tab.ID, "/notes/a.md", "changed\n", TriggerManual),
		"history problems never fail the save")
	assert.False(t, f.document(t).Dirty())
}

func TestSaveToPath_ClearsMissingFlag(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetMissing(f.doc.ID, true)
	f.store.SetContent(f.doc.ID, "restored\n")

	require.True(t, f.pipeline.SaveToPath(f.tab.ID, "/notes/a.md", "restored\n", TriggerManual))
	assert.False(t, f.document(t).Missing)
}

func TestSaveToPath_UnknownTab(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	assert.False(t, f.pipeline.SaveToPath("no-such-tab", "/notes/a.md", "x", TriggerManual))
}

type failingSnapshotter struct{}

func (failingSnapshotter) Snapshot(path, content string, trigger history.Trigger) (history.Snapshot, error) {
	return history.Snapshot{}, assert.AnError
}
