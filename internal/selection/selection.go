// Package selection tracks the set of currently selected block ids.
package selection

import (
	"sort"
	"sync"
)

// Set holds selected block ids. It is safe for concurrent use; observers are
// called after the lock is released.
type Set struct {
	mu        sync.Mutex
	ids       map[string]struct{}
	observers map[int]func()
	nextID    int
}

// New creates an empty selection set
func New() *Set {
	return &Set{
		ids:       make(map[string]struct{}),
		observers: make(map[int]func()),
	}
}

// Toggle replaces the selection with {id} when additive is false. When additive
// is true the id is removed if present and added otherwise.
func (s *Set) Toggle(id string, additive bool) {
	s.mu.Lock()
	if !additive {
		s.replaceLocked(id)
	} else if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.mu.Unlock()
	s.notify()
}

// Replace makes {id} the whole selection
func (s *Set) Replace(id string) {
	s.mu.Lock()
	s.replaceLocked(id)
	s.mu.Unlock()
	s.notify()
}

// Add adds ids without removing existing members
func (s *Set) Add(ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.mu.Unlock()
	s.notify()
}

// Remove drops ids from the selection
func (s *Set) Remove(ids ...string) {
	s.mu.Lock()
	changed := false
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			delete(s.ids, id)
			changed = true
		}
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Clear empties the selection
func (s *Set) Clear() {
	s.mu.Lock()
	if len(s.ids) == 0 {
		s.mu.Unlock()
		return
	}
	s.ids = make(map[string]struct{})
	s.mu.Unlock()
	s.notify()
}

// IsSelected reports membership
func (s *Set) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Snapshot returns a sorted copy of the selected ids
func (s *Set) Snapshot() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}

// Subscribe registers fn to run after every membership change.
func (s *Set) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Set) replaceLocked(id string) {
	s.ids = map[string]struct{}{id: {}}
}

func (s *Set) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
