// Package menu carries named application commands from the shell to
// per-window subscribers. Events broadcast to every subscriber of a
// name; the payload names the target window and subscribers filter on
// it. Windows receive nothing until marked ready, so commands fired at
// a window that is still starting up queue and flush on readiness
// instead of vanishing.
package menu

import (
	"sync"

	"go.uber.org/zap"
)

// Command names. Payloads target one window by label; recent-file and
// recent-workspace opens also carry a path.
const (
	CmdNew        = "menu:new"
	CmdNewWindow  = "menu:new-window"
	CmdOpen       = "menu:open"
	CmdOpenFolder = "menu:open-folder"
	CmdClose      = "menu:close"
	CmdSave       = "menu:save"
	CmdSaveAs     = "menu:save-as"

	CmdOpenRecentFile      = "menu:open-recent-file"
	CmdOpenRecentWorkspace = "menu:open-recent-workspace"
	CmdClearRecent         = "menu:clear-recent"

	CmdBold          = "menu:bold"
	CmdItalic        = "menu:italic"
	CmdCode          = "menu:code"
	CmdStrikethrough = "menu:strikethrough"
	CmdHighlight     = "menu:highlight"
	CmdClearFormat   = "menu:clear-format"

	CmdHeading1      = "menu:heading-1"
	CmdHeading2      = "menu:heading-2"
	CmdHeading3      = "menu:heading-3"
	CmdHeading4      = "menu:heading-4"
	CmdHeading5      = "menu:heading-5"
	CmdHeading6      = "menu:heading-6"
	CmdParagraph     = "menu:paragraph"
	CmdQuote         = "menu:quote"
	CmdNestQuote     = "menu:nest-quote"
	CmdUnnestQuote   = "menu:unnest-quote"
	CmdUnorderedList = "menu:unordered-list"
	CmdOrderedList   = "menu:ordered-list"
	CmdRemoveList    = "menu:remove-list"
	CmdCodeFences    = "menu:code-fences"
	CmdImage         = "menu:image"

	CmdSelectWord       = "menu:select-word"
	CmdSelectLine       = "menu:select-line"
	CmdSelectBlock      = "menu:select-block"
	CmdExpandSelection  = "menu:expand-selection"
	CmdUseSelectionFind = "menu:use-selection-find"

	CmdSourceMode     = "menu:source-mode"
	CmdFocusMode      = "menu:focus-mode"
	CmdTypewriterMode = "menu:typewriter-mode"

	CmdExportHTML = "menu:export-html"
	CmdSavePDF    = "menu:save-pdf"
	// CmdPrint keeps the historic export-pdf id; the menu item reads
	// "Print" and opens the system dialog.
	CmdPrint = "menu:export-pdf"
)

// Event is one routed command instance.
type Event struct {
	// Name is the command, e.g. "menu:bold".
	Name string
	// WindowLabel is the target window. Subscribers in other windows
	// ignore the event.
	WindowLabel string
	// Path is set for recent-file and recent-workspace opens.
	Path string
}

// Handler consumes delivered events.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Bus is the in-process command router.
type Bus struct {
	mu      sync.Mutex
	nextID  int
	subs    map[string][]subscription
	ready   map[string]struct{}
	pending map[string][]Event
	logger  *zap.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the bus logger.
func WithLogger(logger *zap.Logger) BusOption {
	return func(b *Bus) { b.logger = logger }
}

// NewBus returns an empty bus. No window is ready until MarkReady.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:    make(map[string][]subscription),
		ready:   make(map[string]struct{}),
		pending: make(map[string][]Event),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for one command name and returns its
// unsubscribe func. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(name string, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[name]
		for i, s := range subs {
			if s.id == id {
				b.subs[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish routes an event. Events for a window that is not ready queue
// until MarkReady; the decision and the queueing happen under one lock
// so readiness flips cannot drop events in between.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	if _, ok := b.ready[event.WindowLabel]; !ok {
		b.pending[event.WindowLabel] = append(b.pending[event.WindowLabel], event)
		b.mu.Unlock()
		b.logger.Debug("queued command for unready window",
			zap.String("name", event.Name),
			zap.String("window", event.WindowLabel))
		return
	}
	handlers := b.handlersLocked(event.Name)
	b.mu.Unlock()

	b.deliver(handlers, event)
}

// Emit publishes a plain command to a window.
func (b *Bus) Emit(name, windowLabel string) {
	b.Publish(Event{Name: name, WindowLabel: windowLabel})
}

// EmitPath publishes a command carrying a file path.
func (b *Bus) EmitPath(name, windowLabel, path string) {
	b.Publish(Event{Name: name, WindowLabel: windowLabel, Path: path})
}

// MarkReady records that a window can receive events and flushes its
// queue in arrival order.
func (b *Bus) MarkReady(windowLabel string) {
	b.mu.Lock()
	b.ready[windowLabel] = struct{}{}
	queued := b.pending[windowLabel]
	delete(b.pending, windowLabel)

	type delivery struct {
		handlers []Handler
		event    Event
	}
	flush := make([]delivery, 0, len(queued))
	for _, event := range queued {
		flush = append(flush, delivery{handlers: b.handlersLocked(event.Name), event: event})
	}
	b.mu.Unlock()

	if len(flush) > 0 {
		b.logger.Debug("flushing queued commands",
			zap.String("window", windowLabel),
			zap.Int("count", len(flush)))
	}
	for _, d := range flush {
		b.deliver(d.handlers, d.event)
	}
}

// Ready reports whether a window was marked ready.
func (b *Bus) Ready(windowLabel string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ready[windowLabel]
	return ok
}

// ClearWindow forgets a destroyed window's readiness and drops its
// queued events.
func (b *Bus) ClearWindow(windowLabel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.ready, windowLabel)
	delete(b.pending, windowLabel)
}

func (b *Bus) handlersLocked(name string) []Handler {
	subs := b.subs[name]
	if len(subs) == 0 {
		return nil
	}
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.fn
	}
	return handlers
}

// deliver runs handlers outside the bus lock so they can publish or
// subscribe without deadlocking.
func (b *Bus) deliver(handlers []Handler, event Event) {
	for _, fn := range handlers {
		fn(event)
	}
}
