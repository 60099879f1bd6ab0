package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const storeFileName = "progress.json"

// fileData is the on-disk shape, keyed by document ID.
type fileData struct {
	Positions map[string]Position   `json:"positions"`
	Bookmarks map[string][]Bookmark `json:"bookmarks"`
}

// Store persists positions and bookmarks as a single JSON file.
type Store struct {
	path string
	mu   sync.RWMutex
	data fileData
}

// NewStore creates or loads the store under XDG_STATE_HOME/folio, or
// ~/.local/state/folio without the variable set.
func NewStore() (*Store, error) {
	return Open(filepath.Join(stateDir(), storeFileName))
}

// Open creates or loads a store at an explicit path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	s := &Store{path: path}
	s.reset()
	if err := s.load(); err != nil {
		// Unreadable state starts fresh rather than blocking the
		// reader.
		s.reset()
	}
	return s, nil
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "folio")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "folio")
}

func (s *Store) reset() {
	s.data = fileData{
		Positions: make(map[string]Position),
		Bookmarks: make(map[string][]Bookmark),
	}
}

// Position returns the saved position for a document.
func (s *Store) Position(docID string) (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.data.Positions[docID]
	return pos, ok
}

// SetPosition saves a position under its own document ID.
func (s *Store) SetPosition(pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Positions[pos.DocumentID] = pos
	return s.save()
}

// ClearPosition removes the saved position for a document.
func (s *Store) ClearPosition(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Positions, docID)
	return s.save()
}

// Bookmarks returns the document's bookmarks in creation order.
func (s *Store) Bookmarks(docID string) []Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	marks := s.data.Bookmarks[docID]
	out := make([]Bookmark, len(marks))
	copy(out, marks)
	return out
}

// AddBookmark appends a bookmark under its position's document.
func (s *Store) AddBookmark(b Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := b.Position.DocumentID
	s.data.Bookmarks[id] = append(s.data.Bookmarks[id], b)
	return s.save()
}

// RemoveBookmark deletes the i-th bookmark of a document. Out-of-range
// indices are ignored.
func (s *Store) RemoveBookmark(docID string, i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marks := s.data.Bookmarks[docID]
	if i < 0 || i >= len(marks) {
		return nil
	}
	s.data.Bookmarks[docID] = append(marks[:i], marks[i+1:]...)
	return s.save()
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return err
	}
	if s.data.Positions == nil {
		s.data.Positions = make(map[string]Position)
	}
	if s.data.Bookmarks == nil {
		s.data.Bookmarks = make(map[string][]Bookmark)
	}
	return nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
