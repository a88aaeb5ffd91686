package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Open(t *testing.T) {
	store := NewStore()

	doc := store.Open("# Title\n", "/notes/title.md")
	require.NotEmpty(t, doc.ID)
	assert.Equal(t, "# Title\n", doc.Content)
	assert.Equal(t, "/notes/title.md", doc.FilePath)
	assert.Equal(t, LineEndingLF, doc.LineEnding)
	assert.Equal(t, uint64(1), doc.Revision)
	assert.False(t, doc.Dirty())
	assert.False(t, doc.Untitled())

	got, ok := store.Get(doc.ID)
	require.True(t, ok)
	assert.Equal(t, doc, got)
}

func TestStore_OpenUntitled(t *testing.T) {
	store := NewStore()

	doc := store.OpenUntitled("")
	assert.True(t, doc.Untitled())
	assert.False(t, doc.Dirty())

	seeded := store.OpenUntitled("# Draft\n")
	assert.True(t, seeded.Untitled())
	assert.True(t, seeded.Dirty(), "initial content of an untitled document is unsaved")
	assert.NotEqual(t, doc.ID, seeded.ID)
}

func TestStore_SetContent(t *testing.T) {
	store := NewStore()
	doc := store.Open("one\n", "/d.md")

	store.SetContent(doc.ID, "one\ntwo\n")

	got, ok := store.Get(doc.ID)
	require.True(t, ok)
	assert.Equal(t, "one\ntwo\n", got.Content)
	assert.Equal(t, "one\n", got.SavedContent())
	assert.True(t, got.Dirty())
	assert.Equal(t, uint64(2), got.Revision)

	store.SetContent(doc.ID, "one\n")
	got, _ = store.Get(doc.ID)
	assert.False(t, got.Dirty(), "restoring saved content makes the document clean again")
	assert.Equal(t, uint64(3), got.Revision)
}

func TestStore_MarkSaved(t *testing.T) {
	store := NewStore()
	doc := store.Open("a\r\nb\r\n", "/d.md")
	store.SetContent(doc.ID, "a\r\nb\r\nc\r\n")
	store.SetChangedOnDisk(doc.ID, true)

	store.MarkSaved(doc.ID, "a\r\nb\r\nc\r\n", LineEndingCRLF, HardBreakUnknown)

	got, ok := store.Get(doc.ID)
	require.True(t, ok)
	assert.False(t, got.Dirty())
	assert.False(t, got.ChangedOnDisk)
	assert.Equal(t, LineEndingCRLF, got.LineEnding)
	assert.Equal(t, uint64(3), got.Revision)
}

func TestStore_SetFilePath(t *testing.T) {
	store := NewStore()
	doc := store.OpenUntitled("draft\n")
	store.SetMissing(doc.ID, true)

	store.SetFilePath(doc.ID, "/notes/draft.md")

	got, _ := store.Get(doc.ID)
	assert.Equal(t, "/notes/draft.md", got.FilePath)
	assert.False(t, got.Missing, "pointing at a fresh file clears the missing flag")
	assert.False(t, got.Untitled())
}

func TestStore_SetCursorInfo(t *testing.T) {
	store := NewStore()
	doc := store.Open("# H\n\npara\n", "/d.md")

	info := &CursorInfo{Surface: "wysiwyg", Kind: "paragraph", Ordinal: 0, Offset: 2}
	store.SetCursorInfo(doc.ID, info)
	info.Offset = 99

	got, _ := store.Get(doc.ID)
	require.NotNil(t, got.CursorInfo)
	assert.Equal(t, 2, got.CursorInfo.Offset, "store keeps its own copy")

	got.CursorInfo.Offset = 7
	again, _ := store.Get(doc.ID)
	assert.Equal(t, 2, again.CursorInfo.Offset, "Get returns a copy")

	store.SetCursorInfo(doc.ID, nil)
	got, _ = store.Get(doc.ID)
	assert.Nil(t, got.CursorInfo)
}

func TestStore_ByPath(t *testing.T) {
	store := NewStore()
	a := store.Open("a\n", "/a.md")
	store.OpenUntitled("")

	id, ok := store.ByPath("/a.md")
	require.True(t, ok)
	assert.Equal(t, a.ID, id)

	_, ok = store.ByPath("/missing.md")
	assert.False(t, ok)

	_, ok = store.ByPath("")
	assert.False(t, ok, "untitled documents are never matched by path")
}

func TestStore_Close(t *testing.T) {
	store := NewStore()
	doc := store.Open("a\n", "/a.md")
	require.Equal(t, 1, store.Len())

	store.Close(doc.ID)
	assert.Equal(t, 0, store.Len())
	_, ok := store.Get(doc.ID)
	assert.False(t, ok)

	store.SetContent(doc.ID, "late write")
	store.MarkSaved(doc.ID, "late write", LineEndingLF, HardBreakUnknown)
}
