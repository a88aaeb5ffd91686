package command

import (
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/menu"
	"github.com/vmarkdev/vmark/internal/save"
	"github.com/vmarkdev/vmark/internal/session"
)

// SavePathChooser prompts for a destination file. An empty path with a
// nil error means the user cancelled.
type SavePathChooser interface {
	ChooseSavePath(doc document.Document) (string, error)
}

// SaveDispatcher routes the manual save commands into the save
// pipeline. The whole flow, dialog included, runs under the manual
// save guard key: a second Cmd+S while the destination dialog is open
// is dropped, and the auto-save scheduler stays out of the way.
type SaveDispatcher struct {
	binding
	pipeline *save.Pipeline
	sessions *session.Manager
	chooser  SavePathChooser
}

func NewSaveDispatcher(deps Deps, pipeline *save.Pipeline, sessions *session.Manager, chooser SavePathChooser) *SaveDispatcher {
	return &SaveDispatcher{
		binding:  newBinding(deps),
		pipeline: pipeline,
		sessions: sessions,
		chooser:  chooser,
	}
}

func (d *SaveDispatcher) Setup() {
	gen := d.beginSetup()
	d.register(gen, menu.CmdSave, d.handleAnyFocus(func(menu.Event) {
		d.saveActive(false)
	}))
	d.register(gen, menu.CmdSaveAs, d.handleAnyFocus(func(menu.Event) {
		d.saveActive(true)
	}))
}

func (d *SaveDispatcher) saveActive(pickPath bool) {
	d.deps.Guard.Do(d.deps.Window, save.OpManualSave, func() error {
		tab, ok := d.sessions.ActiveTab(d.deps.Window)
		if !ok {
			return nil
		}
		doc, ok := d.deps.ActiveDocument()
		if !ok {
			return nil
		}

		path := doc.FilePath
		if pickPath || path == "" {
			chosen, err := d.chooser.ChooseSavePath(doc)
			if err != nil {
				d.logger().Warn("save path prompt failed", zap.Error(err))
				return nil
			}
			if chosen == "" {
				return nil
			}
			path = chosen
		}

		d.pipeline.SaveToPath(tab.ID, path, doc.Content, save.TriggerManual)
		return nil
	})
}
