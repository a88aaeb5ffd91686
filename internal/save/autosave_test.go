package save

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmarkdev/vmark/internal/guard"
	"github.com/vmarkdev/vmark/internal/history"
	"github.com/vmarkdev/vmark/internal/session"
)

func TestTick_SavesDirtyDocument(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetContent(f.doc.ID, "hello world\n")

	a := NewAutoSaver(f.pipeline, f.store, f.sessions, guard.New())
	require.True(t, a.Tick(session.LabelMain, time.Now()))

	written, err := afero.ReadFile(f.fsys, "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(written))
	assert.False(t, f.document(t).Dirty())

	snaps, err := f.history.List("/notes/a.md")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, history.TriggerAuto, snaps[0].Trigger)
}

func TestTick_SkipsCleanDocument(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")

	a := NewAutoSaver(f.pipeline, f.store, f.sessions, guard.New())
	assert.False(t, a.Tick(session.LabelMain, time.Now()))

	_, err := f.fsys.Stat("/notes/a.md")
	assert.Error(t, err, "nothing to save, nothing written")
}

func TestTick_DebouncesAfterASave(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetContent(f.doc.ID, "v1\n")

	a := NewAutoSaver(f.pipeline, f.store, f.sessions, guard.New())
	t0 := time.Now()
	require.True(t, a.Tick(session.LabelMain, t0))

	f.store.SetContent(f.doc.ID, "v2\n")
	assert.False(t, a.Tick(session.LabelMain, t0.Add(2*time.Second)), "too soon after the last save")
	assert.True(t, a.Tick(session.LabelMain, t0.Add(DefaultDebounce)))

	written, err := afero.ReadFile(f.fsys, "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "v2\n", string(written))
}

func TestTick_YieldsToManualSave(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetContent(f.doc.ID, "edited\n")

	g := guard.New()
	a := NewAutoSaver(f.pipeline, f.store, f.sessions, g)

	require.True(t, g.TryAcquire(session.LabelMain, OpManualSave))
	assert.False(t, a.Tick(session.LabelMain, time.Now()))

	g.Release(session.LabelMain, OpManualSave)
	assert.True(t, a.Tick(session.LabelMain, time.Now()))
}

func TestTick_SkipsUntitledDocument(t *testing.T) {
	f := newFixture(t, "", "")
	f.store.SetContent(f.doc.ID, "draft\n")

	a := NewAutoSaver(f.pipeline, f.store, f.sessions, guard.New())
	assert.False(t, a.Tick(session.LabelMain, time.Now()))
}

func TestTick_SkipsMissingBackingFile(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetContent(f.doc.ID, "edited\n")
	f.store.SetMissing(f.doc.ID, true)

	a := NewAutoSaver(f.pipeline, f.store, f.sessions, guard.New())
	assert.False(t, a.Tick(session.LabelMain, time.Now()))
}

func TestTick_WindowWithoutTabs(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.sessions.Register("doc-1")

	a := NewAutoSaver(f.pipeline, f.store, f.sessions, guard.New())
	assert.False(t, a.Tick("doc-1", time.Now()))
}

func TestTick_RetriesAfterAFailedWrite(t *testing.T) {
	f := newFixture(t, "hello\n", "/notes/a.md")
	f.store.SetContent(f.doc.ID, "edited\n")

	writable := f.pipeline.fsys
	f.pipeline.fsys = afero.NewReadOnlyFs(writable)

	a := NewAutoSaver(f.pipeline, f.store, f.sessions, guard.New())
	now := time.Now()
	require.False(t, a.Tick(session.LabelMain, now))

	// A failed attempt leaves no stamp, so the very next tick tries
	// again instead of waiting out the debounce window.
	f.pipeline.fsys = writable
	assert.True(t, a.Tick(session.LabelMain, now))
}
