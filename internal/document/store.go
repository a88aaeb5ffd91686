package document

import (
	"sync"

	"go.uber.org/zap"
)

// Store owns every open Document in the process. Reads return copies;
// writes go through action methods so a mutation is always complete
// before anyone else can observe it.
type Store struct {
	mu     sync.RWMutex
	docs   map[string]*Document
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty document store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		docs:   make(map[string]*Document),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open registers a document loaded from disk. Content and saved
// content start out equal, so the document is clean.
func (s *Store) Open(content, filePath string) Document {
	doc := newDocument(content, filePath)

	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.mu.Unlock()

	s.logger.Debug("document opened",
		zap.String("id", doc.ID),
		zap.String("path", filePath),
	)
	return doc.clone()
}

// OpenUntitled registers a new document with no backing file. Any
// initial content counts as unsaved.
func (s *Store) OpenUntitled(content string) Document {
	doc := newDocument(content, "")
	doc.savedContent = ""

	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.mu.Unlock()

	return doc.clone()
}

// Get returns a copy of the document, if it exists.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, false
	}
	return doc.clone(), true
}

// Close removes a document. The id is never reused.
func (s *Store) Close(id string) {
	s.mu.Lock()
	delete(s.docs, id)
	s.mu.Unlock()
}

// SetContent replaces the live content and bumps the revision. Dirty
// state follows from the content comparison; there is no flag to keep
// in sync.
func (s *Store) SetContent(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return
	}
	doc.Content = content
	doc.Revision++
}

// SetFilePath points the document at a new backing file ("save as").
func (s *Store) SetFilePath(id, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		doc.FilePath = path
		doc.Missing = false
	}
}

// MarkSaved records a successful persist: the given content becomes
// the saved content and the detected styles are updated to what was
// written.
func (s *Store) MarkSaved(id, savedContent string, lineEnding LineEnding, hardBreak HardBreakStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return
	}
	doc.savedContent = savedContent
	doc.LineEnding = lineEnding
	doc.HardBreak = hardBreak
	doc.ChangedOnDisk = false
	doc.Revision++
}

// SetMissing flags or clears the missing-from-disk state.
func (s *Store) SetMissing(id string, missing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		doc.Missing = missing
	}
}

// SetChangedOnDisk flags an external modification of the backing file.
func (s *Store) SetChangedOnDisk(id string, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		doc.ChangedOnDisk = changed
	}
}

// SetCursorInfo stores the translated caret position for the next
// surface switch. A nil info clears the record.
func (s *Store) SetCursorInfo(id string, info *CursorInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return
	}
	if info == nil {
		doc.CursorInfo = nil
		return
	}
	ci := *info
	doc.CursorInfo = &ci
}

// ByPath returns the id of the open document backed by path, if any.
func (s *Store) ByPath(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, doc := range s.docs {
		if doc.FilePath != "" && doc.FilePath == path {
			return id, true
		}
	}
	return "", false
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
