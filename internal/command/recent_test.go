package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmarkdev/vmark/internal/menu"
)

type fakeOpener struct {
	files      []string
	workspaces []string
	err        error
}

func (f *fakeOpener) OpenFile(path string) error {
	f.files = append(f.files, path)
	return f.err
}

func (f *fakeOpener) OpenWorkspace(path string) error {
	f.workspaces = append(f.workspaces, path)
	return f.err
}

type fakeClearer struct{ calls int }

func (f *fakeClearer) Clear() error {
	f.calls++
	return nil
}

func TestOpenRecentEntries(t *testing.T) {
	opener := &fakeOpener{}
	deps, bus := testHarness(nil)
	NewRecentDispatcher(deps, opener, &fakeClearer{}).Setup()

	bus.EmitPath(menu.CmdOpenRecentFile, testWindow, "/notes/a.md")
	bus.EmitPath(menu.CmdOpenRecentWorkspace, testWindow, "/notes")

	assert.Equal(t, []string{"/notes/a.md"}, opener.files)
	assert.Equal(t, []string{"/notes"}, opener.workspaces)
}

func TestOpenRecentIgnoresEmptyPath(t *testing.T) {
	opener := &fakeOpener{}
	deps, bus := testHarness(nil)
	NewRecentDispatcher(deps, opener, &fakeClearer{}).Setup()

	bus.Emit(menu.CmdOpenRecentFile, testWindow)

	assert.Empty(t, opener.files)
}

func TestOpenRecentGuarded(t *testing.T) {
	opener := &fakeOpener{}
	deps, bus := testHarness(nil)
	NewRecentDispatcher(deps, opener, &fakeClearer{}).Setup()

	deps.Guard.TryAcquire(testWindow, opOpenRecent)
	bus.EmitPath(menu.CmdOpenRecentFile, testWindow, "/notes/a.md")
	assert.Empty(t, opener.files, "second entry clicked while the first still loads is dropped")

	deps.Guard.Release(testWindow, opOpenRecent)
	bus.EmitPath(menu.CmdOpenRecentFile, testWindow, "/notes/a.md")
	assert.Len(t, opener.files, 1)
}

func TestClearRecent(t *testing.T) {
	clearer := &fakeClearer{}
	deps, bus := testHarness(nil)
	NewRecentDispatcher(deps, &fakeOpener{}, clearer).Setup()

	bus.Emit(menu.CmdClearRecent, testWindow)

	assert.Equal(t, 1, clearer.calls)
}
