package command

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/menu"
)

const opInsertImage = "insert-image"

// ImagePicker prompts for an image file and returns its path. An empty
// path with a nil error means the user cancelled.
type ImagePicker interface {
	PickImage() (string, error)
}

// ImageDispatcher routes the insert-image menu item. The picker is a
// dialog, so the whole flow is guarded against a second trigger while
// it is open.
type ImageDispatcher struct {
	binding
	picker ImagePicker

	// detectMIME is swapped in tests to avoid touching the filesystem.
	detectMIME func(path string) (string, error)
}

func NewImageDispatcher(deps Deps, picker ImagePicker) *ImageDispatcher {
	return &ImageDispatcher{
		binding: newBinding(deps),
		picker:  picker,
		detectMIME: func(path string) (string, error) {
			mt, err := mimetype.DetectFile(path)
			if err != nil {
				return "", err
			}
			return mt.String(), nil
		},
	}
}

func (d *ImageDispatcher) Setup() {
	gen := d.beginSetup()
	d.register(gen, menu.CmdImage, d.handle(func(menu.Event) {
		d.insertImage()
	}))
}

func (d *ImageDispatcher) insertImage() {
	rich, ok := d.activeRich()
	if !ok {
		return
	}
	d.deps.Guard.Do(d.deps.Window, opInsertImage, func() error {
		path, err := d.picker.PickImage()
		if err != nil {
			d.logger().Warn("image picker failed", zap.Error(err))
			return nil
		}
		if path == "" {
			return nil
		}
		mime, err := d.detectMIME(path)
		if err != nil {
			d.logger().Warn("detecting image type failed",
				zap.String("path", path), zap.Error(err))
			return nil
		}
		if !strings.HasPrefix(mime, "image/") {
			d.logger().Warn("picked file is not an image",
				zap.String("path", path), zap.String("mime", mime))
			return nil
		}
		alt := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if rich.InsertImage(path, alt) {
			rich.Focus()
		}
		return nil
	})
}
