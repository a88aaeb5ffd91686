// Package save is the sole write path for document content. Manual
// save, auto-save, and close-time save all go through the same
// pipeline, so normalization, dirty tracking, recents, and history
// snapshots cannot drift apart between flows. Writing a document to
// disk any other way bypasses that bookkeeping.
package save

import (
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/history"
	"github.com/vmarkdev/vmark/internal/session"
)

// Trigger names which flow invoked a save. History retention treats
// them differently.
type Trigger string

// Save triggers.
const (
	TriggerManual Trigger = "manual"
	TriggerAuto   Trigger = "auto"
	TriggerClose  Trigger = "close"
)

// OpManualSave is the reentry guard key held around a manual save. The
// auto-save scheduler checks it to stay out of the way.
const OpManualSave = "save"

// Snapshotter stores a copy of saved content. *history.Store implements
// it.
type Snapshotter interface {
	Snapshot(path, content string, trigger history.Trigger) (history.Snapshot, error)
}

// RecentRecorder tracks saved paths for the recents menu.
// *recent.Store implements it.
type RecentRecorder interface {
	TouchFile(path string) error
}

// Pipeline persists documents with style normalization and post-write
// bookkeeping.
type Pipeline struct {
	fsys     afero.Fs
	store    *document.Store
	sessions *session.Manager

	snapshots Snapshotter
	recents   RecentRecorder

	lineEndingPref string
	hardBreakPref  string

	logger *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// WithSnapshots enables history snapshots after successful saves.
func WithSnapshots(s Snapshotter) PipelineOption {
	return func(p *Pipeline) { p.snapshots = s }
}

// WithRecents enables recent-files tracking after successful saves.
func WithRecents(r RecentRecorder) PipelineOption {
	return func(p *Pipeline) { p.recents = r }
}

// WithLineEndingPreference sets the configured line-ending style:
// "lf", "crlf", or "preserve".
func WithLineEndingPreference(pref string) PipelineOption {
	return func(p *Pipeline) { p.lineEndingPref = pref }
}

// WithHardBreakPreference sets the configured hard-break style:
// "backslash", "two-spaces", or "preserve".
func WithHardBreakPreference(pref string) PipelineOption {
	return func(p *Pipeline) { p.hardBreakPref = pref }
}

// NewPipeline creates a save pipeline. Both style preferences default
// to "preserve".
func NewPipeline(fsys afero.Fs, store *document.Store, sessions *session.Manager, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fsys:           fsys,
		store:          store,
		sessions:       sessions,
		lineEndingPref: "preserve",
		hardBreakPref:  "preserve",
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SaveToPath writes content to path on behalf of a tab's document and
// reports success. Hard-break markers are normalized before line
// endings, because break detection reads the unconverted trailing
// whitespace. On a write failure nothing in any store changes. After a
// successful write the document keeps path as its backing file, the
// tab title re-derives from it, the path joins the recents, and a
// snapshot is taken; snapshot and recents failures are logged and
// swallowed, never failing the save they follow.
func (p *Pipeline) SaveToPath(tabID, path, content string, trigger Trigger) bool {
	window, tab, ok := p.sessions.FindTab(tabID)
	if !ok {
		p.logger.Warn("save skipped, tab is gone", zap.String("tabID", tabID))
		return false
	}
	doc, ok := p.store.Get(tab.DocumentID)
	if !ok {
		p.logger.Warn("save skipped, document is gone",
			zap.String("tabID", tabID),
			zap.String("documentID", tab.DocumentID))
		return false
	}

	lineEnding := document.ResolveLineEnding(p.lineEndingPref, doc.LineEnding)
	hardBreak := document.ResolveHardBreak(p.hardBreakPref, doc.HardBreak)

	normalized := document.NormalizeHardBreaks(content, hardBreak)
	normalized = document.NormalizeLineEndings(normalized, lineEnding)

	if err := p.persist(path, normalized); err != nil {
		p.logger.Error("save failed",
			zap.String("path", path),
			zap.String("documentID", doc.ID),
			zap.String("trigger", string(trigger)),
			zap.Error(err))
		return false
	}

	p.store.SetFilePath(doc.ID, path)
	if doc.Content != content {
		// The engine flushed text the store has not seen yet.
		p.store.SetContent(doc.ID, content)
	}
	p.store.MarkSaved(doc.ID, content, lineEnding, hardBreak)
	p.sessions.SetTabTitle(window, tab.ID, session.DeriveTitle(path))

	if p.recents != nil {
		if err := p.recents.TouchFile(path); err != nil {
			p.logger.Warn("failed to record recent file",
				zap.String("path", path), zap.Error(err))
		}
	}
	if p.snapshots != nil {
		if _, err := p.snapshots.Snapshot(path, normalized, history.Trigger(trigger)); err != nil {
			p.logger.Warn("failed to snapshot saved document",
				zap.String("path", path), zap.Error(err))
		}
	}

	p.logger.Debug("document saved",
		zap.String("path", path),
		zap.String("documentID", doc.ID),
		zap.String("trigger", string(trigger)))
	return true
}

func (p *Pipeline) persist(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := p.fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(p.fsys, path, []byte(content), 0o644)
}
