package session

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/recent"
)

type fakeStalePrompter struct {
	answer bool
	err    error
	asked  []string
}

func (p *fakeStalePrompter) ConfirmRemoveStale(path string) (bool, error) {
	p.asked = append(p.asked, path)
	return p.answer, p.err
}

type restoreFixture struct {
	fsys     afero.Fs
	store    *document.Store
	sessions *Manager
	recents  *recent.Store
	prompter *fakeStalePrompter
	restorer *Restorer
}

func newRestoreFixture(t *testing.T) *restoreFixture {
	t.Helper()

	f := &restoreFixture{
		fsys:     afero.NewMemMapFs(),
		store:    document.NewStore(),
		sessions: NewManager(),
		prompter: &fakeStalePrompter{},
	}
	f.recents = recent.NewStore(f.fsys, "/state/recent.json")
	f.sessions.Register(LabelMain)
	f.restorer = NewRestorer(f.fsys, f.store, f.sessions,
		WithRecents(f.recents),
		WithStalePrompter(f.prompter),
	)
	return f
}

func (f *restoreFixture) writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fsys, path, []byte(content), 0o644))
}

func TestRestoreTabs_ReopensInOrder(t *testing.T) {
	f := newRestoreFixture(t)
	f.writeFile(t, "/notes/a.md", "# A\n")
	f.writeFile(t, "/notes/b.md", "# B\n")

	tabs := f.restorer.RestoreTabs(LabelMain, []string{"/notes/a.md", "/notes/b.md"})

	require.Len(t, tabs, 2)
	assert.Equal(t, "a", tabs[0].Title)
	assert.Equal(t, "b", tabs[1].Title)

	active, ok := f.sessions.ActiveTab(LabelMain)
	require.True(t, ok)
	assert.Equal(t, tabs[0].ID, active.ID, "the leftmost restored tab gets focus")

	doc, ok := f.store.Get(tabs[0].DocumentID)
	require.True(t, ok)
	assert.Equal(t, "# A\n", doc.Content)
	assert.False(t, doc.Dirty())
}

func TestRestoreTabs_SkipsUnreadableEntries(t *testing.T) {
	f := newRestoreFixture(t)
	f.writeFile(t, "/notes/b.md", "# B\n")

	tabs := f.restorer.RestoreTabs(LabelMain, []string{"/notes/gone.md", "/notes/b.md"})

	require.Len(t, tabs, 1, "one vanished file must not abort the rest")
	assert.Equal(t, "b", tabs[0].Title)
}

func TestRestoreTabs_EmptyList(t *testing.T) {
	f := newRestoreFixture(t)

	assert.Empty(t, f.restorer.RestoreTabs(LabelMain, nil))
	_, ok := f.sessions.ActiveTab(LabelMain)
	assert.False(t, ok)
}

func TestOpenRecent_OpensAndPromotes(t *testing.T) {
	f := newRestoreFixture(t)
	f.writeFile(t, "/notes/a.md", "# A\n")
	f.writeFile(t, "/notes/b.md", "# B\n")
	require.NoError(t, f.recents.TouchFile("/notes/a.md"))
	require.NoError(t, f.recents.TouchFile("/notes/b.md"))

	tab, ok := f.restorer.OpenRecent(LabelMain, "/notes/a.md")

	require.True(t, ok)
	assert.Equal(t, "a", tab.Title)

	files, err := f.recents.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/a.md", "/notes/b.md"}, files, "opening promotes the entry")
}

func TestOpenRecent_MissingFileAsksAndRemoves(t *testing.T) {
	f := newRestoreFixture(t)
	require.NoError(t, f.recents.TouchFile("/notes/gone.md"))
	f.prompter.answer = true

	_, ok := f.restorer.OpenRecent(LabelMain, "/notes/gone.md")

	assert.False(t, ok)
	assert.Equal(t, []string{"/notes/gone.md"}, f.prompter.asked)
	files, err := f.recents.Files()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestOpenRecent_MissingFileKeptWhenDeclined(t *testing.T) {
	f := newRestoreFixture(t)
	require.NoError(t, f.recents.TouchFile("/notes/gone.md"))

	_, ok := f.restorer.OpenRecent(LabelMain, "/notes/gone.md")

	assert.False(t, ok)
	files, err := f.recents.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/gone.md"}, files)
}

func TestOpenRecent_PromptFailureKeepsEntry(t *testing.T) {
	f := newRestoreFixture(t)
	require.NoError(t, f.recents.TouchFile("/notes/gone.md"))
	f.prompter.answer = true
	f.prompter.err = assert.AnError

	_, ok := f.restorer.OpenRecent(LabelMain, "/notes/gone.md")

	assert.False(t, ok)
	files, err := f.recents.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/gone.md"}, files)
}

func TestOpenRecent_ActivatesExistingTab(t *testing.T) {
	f := newRestoreFixture(t)
	f.writeFile(t, "/notes/a.md", "# A\n")
	f.writeFile(t, "/notes/b.md", "# B\n")

	first, ok := f.restorer.OpenRecent(LabelMain, "/notes/a.md")
	require.True(t, ok)
	_, ok = f.restorer.OpenRecent(LabelMain, "/notes/b.md")
	require.True(t, ok)

	again, ok := f.restorer.OpenRecent(LabelMain, "/notes/a.md")

	require.True(t, ok)
	assert.Equal(t, first.ID, again.ID, "no duplicate tab for an open path")

	sess, ok := f.sessions.Get(LabelMain)
	require.True(t, ok)
	assert.Len(t, sess.Tabs, 2)
	assert.Equal(t, first.ID, sess.ActiveTabID)
}
