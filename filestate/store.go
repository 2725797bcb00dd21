package filestate

import "sync"

// Store is the file-state store: URI → State. A single mutex guards the
// whole map, matching spec.md §5's "no fine-grained locks" and the
// single-writer discipline of §9 ("Only the compile task writes FileStates'
// artifact fields"). The compile pass is the sole writer; the worker facade
// and request queue only read through Get/Snapshot.
type Store struct {
	m       sync.Mutex
	entries map[string]State
}

// NewStore creates an empty file-state store.
func NewStore() *Store {
	return &Store{entries: make(map[string]State)}
}

// Get returns the current State for uri, and whether one exists.
func (s *Store) Get(uri string) (State, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	st, ok := s.entries[uri]
	return st, ok
}

// Set stores or replaces uri's State.
func (s *Store) Set(uri string, st State) {
	s.m.Lock()
	defer s.m.Unlock()
	s.entries[uri] = st
}

// Delete removes uri's entry entirely (spec.md §3: "Destroyed when the
// file cannot be located on disk and has no Opened content").
func (s *Store) Delete(uri string) {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.entries, uri)
}

// Snapshot returns a shallow copy of the whole store, for callers (request
// satisfaction, diagnostics) that need a consistent read without holding
// the lock across unrelated work.
func (s *Store) Snapshot() map[string]State {
	s.m.Lock()
	defer s.m.Unlock()

	snap := make(map[string]State, len(s.entries))
	for uri, st := range s.entries {
		snap[uri] = st
	}
	return snap
}
