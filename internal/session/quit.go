package session

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// IsDocumentWindow reports whether a window label hosts documents.
// Auxiliary windows (settings, previews) close without any save
// orchestration.
func IsDocumentWindow(label string) bool {
	return label == LabelMain || strings.HasPrefix(label, "doc-")
}

// QuitHost is the application shell the quit coordinator drives.
type QuitHost interface {
	// Windows lists the labels of the currently open windows.
	Windows() []string
	// RequestClose asks a document window to run its close flow. The
	// window reports back through WindowDestroyed, or cancels the
	// quit.
	RequestClose(label string)
	// DestroyWindow closes an auxiliary window outright.
	DestroyWindow(label string)
	// Exit terminates the application.
	Exit()
}

// Quit coordinates application exit. Every document window gets to run
// its own close orchestration; the app exits only once the last of
// them is gone, and a cancelled save prompt anywhere calls the whole
// thing off.
type Quit struct {
	host   QuitHost
	logger *zap.Logger

	mu         sync.Mutex
	inProgress bool
	targets    map[string]struct{}
}

// QuitOption configures a Quit coordinator.
type QuitOption func(*Quit)

// WithQuitLogger sets the logger. The default is a nop logger.
func WithQuitLogger(logger *zap.Logger) QuitOption {
	return func(q *Quit) { q.logger = logger }
}

// NewQuit creates a coordinator driving host.
func NewQuit(host QuitHost, opts ...QuitOption) *Quit {
	q := &Quit{host: host, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start begins a coordinated quit. A second Start while one is running
// does nothing.
func (q *Quit) Start() {
	q.mu.Lock()
	if q.inProgress {
		q.mu.Unlock()
		return
	}
	q.inProgress = true
	q.targets = make(map[string]struct{})

	var docs, others []string
	for _, label := range q.host.Windows() {
		if IsDocumentWindow(label) {
			q.targets[label] = struct{}{}
			docs = append(docs, label)
		} else {
			others = append(others, label)
		}
	}
	empty := len(q.targets) == 0
	if empty {
		q.inProgress = false
	}
	q.mu.Unlock()

	q.logger.Info("quit requested", zap.Strings("windows", docs))

	for _, label := range others {
		q.host.DestroyWindow(label)
	}
	if empty {
		q.host.Exit()
		return
	}
	for _, label := range docs {
		q.host.RequestClose(label)
	}
}

// Cancel aborts an in-progress quit, typically because a save prompt
// was dismissed.
func (q *Quit) Cancel() {
	q.mu.Lock()
	cancelled := q.inProgress
	q.inProgress = false
	q.targets = nil
	q.mu.Unlock()

	if cancelled {
		q.logger.Info("quit cancelled")
	}
}

// InProgress reports whether a quit is underway.
func (q *Quit) InProgress() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inProgress
}

// WindowDestroyed records that a window finished closing. The last
// document window exits the application.
func (q *Quit) WindowDestroyed(label string) {
	if !IsDocumentWindow(label) {
		return
	}

	q.mu.Lock()
	if !q.inProgress {
		q.mu.Unlock()
		return
	}
	delete(q.targets, label)
	last := len(q.targets) == 0
	if last {
		q.inProgress = false
	}
	q.mu.Unlock()

	if last {
		q.host.Exit()
	}
}
