package save

import (
	"strings"

	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/session"
)

// Outcome resolves a close-time save decision.
type Outcome string

// Close outcomes. Single-document flows end in cancelled, discarded, or
// saved; multi-document flows end in cancelled, discarded, or saved-all.
const (
	OutcomeCancelled Outcome = "cancelled"
	OutcomeDiscarded Outcome = "discarded"
	OutcomeSaved     Outcome = "saved"
	OutcomeSavedAll  Outcome = "saved-all"
)

// Canonical prompt button labels. Dialogs may show reworded buttons;
// registering the custom text via WithLabels keeps them recognizable.
const (
	LabelSave     = "Save"
	LabelDontSave = "Don't Save"
	LabelSaveAll  = "Save All"
	LabelCancel   = "Cancel"
)

// Labels overrides prompt button text for matching purposes. Empty
// fields fall back to the canonical labels alone.
type Labels struct {
	Save     string
	DontSave string
	SaveAll  string
	Cancel   string
}

// Prompter asks the user close-time questions. Returned strings are
// button labels; the orchestrator classifies them tolerantly.
type Prompter interface {
	// ConfirmClose asks what to do with one dirty document.
	ConfirmClose(doc document.Document) (string, error)
	// ConfirmCloseAll asks once for a set of dirty documents.
	ConfirmCloseAll(dirty int) (string, error)
	// ChooseSavePath picks a destination for an untitled document. An
	// empty path means the user cancelled.
	ChooseSavePath(doc document.Document) (string, error)
}

// Orchestrator resolves what happens to dirty documents when tabs or
// windows close. It never discards content silently: every path that
// cannot guarantee the document reached disk ends in cancelled.
type Orchestrator struct {
	pipeline *Pipeline
	store    *document.Store
	sessions *session.Manager
	prompter Prompter
	labels   Labels
	logger   *zap.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLabels registers custom button text.
func WithLabels(l Labels) OrchestratorOption {
	return func(o *Orchestrator) { o.labels = l }
}

// WithCloseLogger sets the logger. The default is a nop logger.
func WithCloseLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = logger }
}

// NewOrchestrator creates a close orchestrator writing through pipeline.
func NewOrchestrator(pipeline *Pipeline, store *document.Store, sessions *session.Manager, prompter Prompter, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		pipeline: pipeline,
		store:    store,
		sessions: sessions,
		prompter: prompter,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CloseTab resolves one tab. Clean or already-gone documents close as
// saved without prompting.
func (o *Orchestrator) CloseTab(tabID string) Outcome {
	_, tab, ok := o.sessions.FindTab(tabID)
	if !ok {
		return OutcomeSaved
	}
	doc, ok := o.store.Get(tab.DocumentID)
	if !ok || !doc.Dirty() {
		return OutcomeSaved
	}

	label, err := o.prompter.ConfirmClose(doc)
	if err != nil {
		o.logger.Warn("close prompt failed", zap.Error(err))
		return OutcomeCancelled
	}

	switch o.classify(label) {
	case choiceDontSave:
		return OutcomeDiscarded
	case choiceSave, choiceSaveAll:
		return o.saveOne(tab, doc)
	default:
		return OutcomeCancelled
	}
}

// CloseTabs resolves a set of tabs with one prompt. The set with no
// dirty documents short-circuits to saved-all without prompting. Under
// save-all, the first failure or sub-prompt cancellation aborts the
// remaining saves.
func (o *Orchestrator) CloseTabs(tabIDs []string) Outcome {
	type pending struct {
		tab session.Tab
		doc document.Document
	}

	var dirty []pending
	for _, tabID := range tabIDs {
		_, tab, ok := o.sessions.FindTab(tabID)
		if !ok {
			continue
		}
		doc, ok := o.store.Get(tab.DocumentID)
		if !ok || !doc.Dirty() {
			continue
		}
		dirty = append(dirty, pending{tab: tab, doc: doc})
	}
	if len(dirty) == 0 {
		return OutcomeSavedAll
	}

	label, err := o.prompter.ConfirmCloseAll(len(dirty))
	if err != nil {
		o.logger.Warn("close-all prompt failed", zap.Error(err))
		return OutcomeCancelled
	}

	switch o.classify(label) {
	case choiceDontSave:
		return OutcomeDiscarded
	case choiceSave, choiceSaveAll:
		for _, p := range dirty {
			if o.saveOne(p.tab, p.doc) != OutcomeSaved {
				return OutcomeCancelled
			}
		}
		return OutcomeSavedAll
	default:
		return OutcomeCancelled
	}
}

// CloseWindow resolves every tab of a window.
func (o *Orchestrator) CloseWindow(window string) Outcome {
	sess, ok := o.sessions.Get(window)
	if !ok {
		return OutcomeSavedAll
	}
	tabIDs := make([]string, 0, len(sess.Tabs))
	for _, tab := range sess.Tabs {
		tabIDs = append(tabIDs, tab.ID)
	}
	return o.CloseTabs(tabIDs)
}

// saveOne persists one document, prompting for a destination when it is
// untitled. Any refusal along the way reports cancelled, never a silent
// loss.
func (o *Orchestrator) saveOne(tab session.Tab, doc document.Document) Outcome {
	path := doc.FilePath
	if path == "" {
		chosen, err := o.prompter.ChooseSavePath(doc)
		if err != nil {
			o.logger.Warn("save path prompt failed", zap.Error(err))
			return OutcomeCancelled
		}
		if chosen == "" {
			return OutcomeCancelled
		}
		path = chosen
	}

	if !o.pipeline.SaveToPath(tab.ID, path, doc.Content, TriggerClose) {
		return OutcomeCancelled
	}
	return OutcomeSaved
}

type choice int

const (
	choiceUnknown choice = iota
	choiceSave
	choiceDontSave
	choiceSaveAll
	choiceCancel
)

// classify maps clicked button text to an intent, accepting canonical
// or registered custom labels, case-insensitively. Unrecognized text
// classifies as unknown, which callers treat as cancel: misreading a
// dialog must never cost the user a document.
func (o *Orchestrator) classify(label string) choice {
	norm := strings.TrimSpace(label)
	match := func(canonical, custom string) bool {
		if strings.EqualFold(norm, canonical) {
			return true
		}
		return custom != "" && strings.EqualFold(norm, strings.TrimSpace(custom))
	}

	switch {
	case match(LabelSaveAll, o.labels.SaveAll):
		return choiceSaveAll
	case match(LabelSave, o.labels.Save):
		return choiceSave
	case match(LabelDontSave, o.labels.DontSave):
		return choiceDontSave
	case match(LabelCancel, o.labels.Cancel):
		return choiceCancel
	default:
		return choiceUnknown
	}
}
