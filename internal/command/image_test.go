package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmarkdev/vmark/internal/menu"
)

type fakePicker struct {
	path  string
	err   error
	calls int
}

func (f *fakePicker) PickImage() (string, error) {
	f.calls++
	return f.path, f.err
}

func imageHarness(rich *fakeRich, picker *fakePicker, mime string) (*ImageDispatcher, *menu.Bus) {
	deps, bus := testHarness(rich)
	d := NewImageDispatcher(deps, picker)
	d.detectMIME = func(string) (string, error) { return mime, nil }
	d.Setup()
	return d, bus
}

func TestInsertImage(t *testing.T) {
	rich := &fakeRich{}
	_, bus := imageHarness(rich, &fakePicker{path: "/pics/cat photo.png"}, "image/png")

	bus.Emit(menu.CmdImage, testWindow)

	require.Len(t, rich.images, 1)
	assert.Equal(t, imageCall{src: "/pics/cat photo.png", alt: "cat photo"}, rich.images[0],
		"alt text defaults to the file name without its extension")
	assert.Equal(t, 1, rich.focused)
}

func TestInsertImageRejectsNonImage(t *testing.T) {
	rich := &fakeRich{}
	_, bus := imageHarness(rich, &fakePicker{path: "/docs/report.pdf"}, "application/pdf")

	bus.Emit(menu.CmdImage, testWindow)

	assert.Empty(t, rich.images)
}

func TestInsertImageCancelledPicker(t *testing.T) {
	rich := &fakeRich{}
	picker := &fakePicker{}
	_, bus := imageHarness(rich, picker, "image/png")

	bus.Emit(menu.CmdImage, testWindow)

	assert.Equal(t, 1, picker.calls)
	assert.Empty(t, rich.images)
}

func TestInsertImageWithoutRichEditor(t *testing.T) {
	picker := &fakePicker{path: "/pics/cat.png"}
	deps, bus := testHarness(nil)
	d := NewImageDispatcher(deps, picker)
	d.Setup()

	bus.Emit(menu.CmdImage, testWindow)

	assert.Zero(t, picker.calls, "no engine, no dialog")
}
