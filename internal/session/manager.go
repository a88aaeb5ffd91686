package session

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Manager owns every window session. Reads return copies; mutation goes
// through action methods. Document window labels come from a counter
// that never restarts within a process, so a label is never reused even
// after its window closes.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	counter  uint64
	logger   *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates an empty session manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register creates a session for a window with a fixed label, such as
// the main window. Registering an existing label is a no-op.
func (m *Manager) Register(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[label]; ok {
		return
	}
	m.sessions[label] = newSession(label)
}

// OpenDocumentWindow creates a session under a fresh "doc-N" label and
// returns the label.
func (m *Manager) OpenDocumentWindow() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	label := fmt.Sprintf("doc-%d", m.counter)
	m.counter++
	m.sessions[label] = newSession(label)

	m.logger.Debug("document window opened", zap.String("window", label))
	return label
}

// CloseWindow drops the session for a window.
func (m *Manager) CloseWindow(label string) {
	m.mu.Lock()
	delete(m.sessions, label)
	m.mu.Unlock()
}

// Get returns a copy of a window's session.
func (m *Manager) Get(label string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[label]
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

// Windows returns all live window labels in sorted order.
func (m *Manager) Windows() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	labels := make([]string, 0, len(m.sessions))
	for label := range m.sessions {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// AddTab appends a tab showing the given document and makes it active.
func (m *Manager) AddTab(label, documentID, title string) (Tab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[label]
	if !ok {
		return Tab{}, false
	}

	tab := newTab(documentID, title)
	sess.Tabs = append(sess.Tabs, tab)
	sess.ActiveTabID = tab.ID
	return tab, true
}

// CloseTab removes a tab. Closing the active tab activates the next tab
// to the right, falling back to the left neighbor.
func (m *Manager) CloseTab(label, tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[label]
	if !ok {
		return
	}
	i := sess.tabIndex(tabID)
	if i < 0 {
		return
	}

	sess.Tabs = append(sess.Tabs[:i], sess.Tabs[i+1:]...)
	if sess.ActiveTabID != tabID {
		return
	}
	switch {
	case len(sess.Tabs) == 0:
		sess.ActiveTabID = ""
	case i < len(sess.Tabs):
		sess.ActiveTabID = sess.Tabs[i].ID
	default:
		sess.ActiveTabID = sess.Tabs[len(sess.Tabs)-1].ID
	}
}

// ActivateTab makes a tab active. Unknown tabs are ignored.
func (m *Manager) ActivateTab(label, tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[label]
	if !ok {
		return
	}
	if sess.tabIndex(tabID) >= 0 {
		sess.ActiveTabID = tabID
	}
}

// ActiveTab returns the active tab of a window.
func (m *Manager) ActiveTab(label string) (Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[label]
	if !ok {
		return Tab{}, false
	}
	return sess.ActiveTab()
}

// SetTabTitle renames a tab, typically after a save-as.
func (m *Manager) SetTabTitle(label, tabID, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[label]
	if !ok {
		return
	}
	if i := sess.tabIndex(tabID); i >= 0 {
		sess.Tabs[i].Title = title
	}
}

// SetTabPinned flags or clears a tab's pinned state.
func (m *Manager) SetTabPinned(label, tabID string, pinned bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[label]
	if !ok {
		return
	}
	if i := sess.tabIndex(tabID); i >= 0 {
		sess.Tabs[i].Pinned = pinned
	}
}

// MoveTab reorders a tab to the given index, clamped to the strip.
func (m *Manager) MoveTab(label, tabID string, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[label]
	if !ok {
		return
	}
	i := sess.tabIndex(tabID)
	if i < 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(sess.Tabs) {
		index = len(sess.Tabs) - 1
	}

	tab := sess.Tabs[i]
	sess.Tabs = append(sess.Tabs[:i], sess.Tabs[i+1:]...)
	sess.Tabs = append(sess.Tabs[:index], append([]Tab{tab}, sess.Tabs[index:]...)...)
}

// SetViewMode switches a window between surfaces.
func (m *Manager) SetViewMode(label string, mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[label]; ok {
		sess.View.Mode = mode
	}
}

// ToggleFocusMode flips focus mode and returns the new value.
func (m *Manager) ToggleFocusMode(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[label]
	if !ok {
		return false
	}
	sess.View.FocusMode = !sess.View.FocusMode
	return sess.View.FocusMode
}

// ToggleTypewriter flips typewriter scrolling and returns the new value.
func (m *Manager) ToggleTypewriter(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[label]
	if !ok {
		return false
	}
	sess.View.Typewriter = !sess.View.Typewriter
	return sess.View.Typewriter
}

// FindDocument locates the first window and tab showing a document,
// scanning windows in label order.
func (m *Manager) FindDocument(documentID string) (string, Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	labels := make([]string, 0, len(m.sessions))
	for label := range m.sessions {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		for _, tab := range m.sessions[label].Tabs {
			if tab.DocumentID == documentID {
				return label, tab, true
			}
		}
	}
	return "", Tab{}, false
}

// FindTab locates the window holding a tab. Tab ids are unique across
// windows, so at most one window matches.
func (m *Manager) FindTab(tabID string) (string, Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for label, sess := range m.sessions {
		if i := sess.tabIndex(tabID); i >= 0 {
			return label, sess.Tabs[i], true
		}
	}
	return "", Tab{}, false
}
