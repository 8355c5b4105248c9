package board

import (
	"errors"
	"log"
	"sync"
)

var (
	// ErrDuplicateID is returned when an append reuses an existing id.
	ErrDuplicateID = errors.New("board: duplicate element id")
	// ErrNotFound is returned when an update targets an absent id.
	ErrNotFound = errors.New("board: element not found")
)

// Store is the in-memory authoritative collection of board elements for
// one session. Insertion order is rendering order; elements are only
// ever appended or wholesale replaced, never removed one by one.
type Store struct {
	mu    sync.RWMutex
	elems []Element
	index map[string]int
}

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Append adds one element at the end of the collection.
func (s *Store) Append(e Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[e.ID]; exists {
		return ErrDuplicateID
	}
	s.index[e.ID] = len(s.elems)
	s.elems = append(s.elems, e)
	return nil
}

// Has reports whether an element with the given id is present.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// ReplaceAll swaps the whole collection for the given elements, in the
// given order. Poll reconciliation uses this; an optimistic local
// element that has not reached the remote store yet simply disappears
// until its persist lands, which is accepted.
func (s *Store) ReplaceAll(elems []Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elems = make([]Element, 0, len(elems))
	s.index = make(map[string]int, len(elems))
	for _, e := range elems {
		if _, dup := s.index[e.ID]; dup {
			log.Printf("[STORE] duplicate id %s in replacement set, keeping first", e.ID)
			continue
		}
		s.index[e.ID] = len(s.elems)
		s.elems = append(s.elems, e)
	}
}

// UpdateLabelText rewrites the payload of an existing label element.
func (s *Store) UpdateLabelText(id, text string, at Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	e := &s.elems[i]
	if e.Kind != KindLabel {
		return ErrNotFound
	}
	color := ""
	if e.Label != nil {
		color = e.Label.Color
	}
	e.Label = &LabelPayload{Text: text, X: at.X, Y: at.Y, Color: color}
	return nil
}

// Get returns the element with the given id.
func (s *Store) Get(id string) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Element{}, false
	}
	return s.elems[i], true
}

// Snapshot returns a copy of the collection in rendering order.
func (s *Store) Snapshot() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Element, len(s.elems))
	copy(out, s.elems)
	return out
}

// Len returns the number of stored elements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elems)
}

// Authors returns the distinct author ids in first-seen order.
func (s *Store) Authors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool, 8)
	var out []string
	for _, e := range s.elems {
		if e.Author == "" || seen[e.Author] {
			continue
		}
		seen[e.Author] = true
		out = append(out, e.Author)
	}
	return out
}
