package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDocumentWindow(t *testing.T) {
	assert.True(t, IsDocumentWindow("main"))
	assert.True(t, IsDocumentWindow("doc-0"))
	assert.True(t, IsDocumentWindow("doc-123"))
	assert.False(t, IsDocumentWindow("settings"))
	assert.False(t, IsDocumentWindow("print-preview"))
}

type fakeHost struct {
	windows   []string
	requested []string
	destroyed []string
	exits     int
}

func (h *fakeHost) Windows() []string          { return h.windows }
func (h *fakeHost) RequestClose(label string)  { h.requested = append(h.requested, label) }
func (h *fakeHost) DestroyWindow(label string) { h.destroyed = append(h.destroyed, label) }
func (h *fakeHost) Exit()                      { h.exits++ }

func TestQuit_ClosesDocumentWindowsFirst(t *testing.T) {
	host := &fakeHost{windows: []string{"main", "doc-1", "settings"}}
	q := NewQuit(host)

	q.Start()

	assert.True(t, q.InProgress())
	assert.Equal(t, []string{"main", "doc-1"}, host.requested)
	assert.Equal(t, []string{"settings"}, host.destroyed)
	assert.Zero(t, host.exits, "exit waits for the document windows")
}

func TestQuit_ExitsAfterTheLastWindow(t *testing.T) {
	host := &fakeHost{windows: []string{"main", "doc-1"}}
	q := NewQuit(host)
	q.Start()

	q.WindowDestroyed("doc-1")
	assert.Zero(t, host.exits)
	assert.True(t, q.InProgress())

	q.WindowDestroyed("main")
	assert.Equal(t, 1, host.exits)
	assert.False(t, q.InProgress())
}

func TestQuit_NoDocumentWindowsExitsImmediately(t *testing.T) {
	host := &fakeHost{windows: []string{"settings"}}
	q := NewQuit(host)

	q.Start()

	assert.Equal(t, 1, host.exits)
	assert.False(t, q.InProgress())
	assert.Equal(t, []string{"settings"}, host.destroyed)
}

func TestQuit_CancelStopsTheExit(t *testing.T) {
	host := &fakeHost{windows: []string{"main", "doc-1"}}
	q := NewQuit(host)
	q.Start()

	q.WindowDestroyed("doc-1")
	q.Cancel()
	assert.False(t, q.InProgress())

	// The straggler closing later must not take the app down.
	q.WindowDestroyed("main")
	assert.Zero(t, host.exits)
}

func TestQuit_SecondStartIsIgnored(t *testing.T) {
	host := &fakeHost{windows: []string{"main"}}
	q := NewQuit(host)

	q.Start()
	q.Start()

	assert.Equal(t, []string{"main"}, host.requested, "one close request per window")
}

func TestQuit_DestroyedWindowOutsideAQuit(t *testing.T) {
	host := &fakeHost{windows: []string{"main"}}
	q := NewQuit(host)

	q.WindowDestroyed("main")
	assert.Zero(t, host.exits)
}
