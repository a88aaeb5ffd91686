// Package session tracks per-window editor state: the ordered tab strip,
// the active tab, and the view flags the view commands toggle. Sessions
// are keyed by window label and owned by a process-wide Manager.
package session

import (
	"path/filepath"
	"strings"

	"github.com/vmarkdev/vmark/internal/ulid"
)

// Window labels used by the shell. Document windows get generated
// "doc-N" labels from the Manager.
const (
	LabelMain     = "main"
	LabelSettings = "settings"
)

// Mode names the editing surface a window currently shows.
type Mode string

// Editing surfaces.
const (
	ModeWYSIWYG Mode = "wysiwyg"
	ModeSource  Mode = "source"
)

// UntitledTitle is shown for documents without a backing file.
const UntitledTitle = "Untitled"

// Tab is one open document slot in a window's tab strip.
type Tab struct {
	ID         string
	DocumentID string
	Title      string
	Pinned     bool
}

// ViewFlags is the per-window view state.
type ViewFlags struct {
	Mode       Mode
	FocusMode  bool
	Typewriter bool
}

// Session is the editor state of a single window.
type Session struct {
	WindowLabel string
	Tabs        []Tab
	ActiveTabID string
	View        ViewFlags
}

// ActiveTab returns the active tab, if any.
func (s *Session) ActiveTab() (Tab, bool) {
	for _, tab := range s.Tabs {
		if tab.ID == s.ActiveTabID {
			return tab, true
		}
	}
	return Tab{}, false
}

func (s *Session) tabIndex(tabID string) int {
	for i, tab := range s.Tabs {
		if tab.ID == tabID {
			return i
		}
	}
	return -1
}

func (s *Session) clone() Session {
	out := *s
	out.Tabs = make([]Tab, len(s.Tabs))
	copy(out.Tabs, s.Tabs)
	return out
}

func newSession(label string) *Session {
	return &Session{
		WindowLabel: label,
		View:        ViewFlags{Mode: ModeWYSIWYG},
	}
}

func newTab(documentID, title string) Tab {
	return Tab{
		ID:         ulid.GenerateID(),
		DocumentID: documentID,
		Title:      title,
	}
}

// DeriveTitle computes a tab title from a file path: the base name with
// the extension stripped. Empty paths title as untitled.
func DeriveTitle(filePath string) string {
	if filePath == "" {
		return UntitledTitle
	}
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
