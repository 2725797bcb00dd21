package content

import (
	"sync"

	"chaiworker/common"
	"chaiworker/wclock"
)

// Store is the content store: URI → Contents, plus the global world clock
// it ticks on every mutation (spec.md §4.2: "All mutations of the content
// store are atomic with a clock increment"). It is the single owner of the
// Clock value; nothing outside this package is allowed to tick it, keeping
// with the single-writer discipline of spec.md §9.
type Store struct {
	m       sync.Mutex
	clock   wclock.Clock
	entries map[string]Contents
}

// NewStore creates an empty content store with its clock at zero.
func NewStore() *Store {
	return &Store{entries: make(map[string]Contents)}
}

// UpdateFile replaces uri's content with Opened{version, text} and ticks the
// clock (spec.md §4.1 updateFile). Returns the new clock value.
func (s *Store) UpdateFile(uri string, version wclock.Version, text Rope) wclock.Clock {
	uri = common.NormalizeURI(uri)

	s.m.Lock()
	defer s.m.Unlock()

	s.entries[uri] = Opened{Version: version, Text: text}
	return s.clock.Tick()
}

// TouchFile marks an on-disk file dirty and ticks the clock (spec.md §4.1
// touchFile). If the file is Opened, or has no entry at all yet, it still
// ticks the clock: an untracked URI becoming "touched" is itself new
// information the refresh pass must consider (the file may now exist on
// disk where it didn't before).
func (s *Store) TouchFile(uri string) wclock.Clock {
	uri = common.NormalizeURI(uri)

	s.m.Lock()
	defer s.m.Unlock()

	if c, ok := s.entries[uri]; ok {
		if _, isOpened := c.(Opened); !isOpened {
			s.entries[uri] = OnDisk{Dirty: true}
		}
	} else {
		s.entries[uri] = OnDisk{Dirty: true}
	}

	return s.clock.Tick()
}

// CloseFile removes uri's content entry and ticks the clock (spec.md §4.1
// closeFile). The file-state store demotes the corresponding FileState to
// DiskState on the next pass that visits it; this store only owns content.
func (s *Store) CloseFile(uri string) wclock.Clock {
	uri = common.NormalizeURI(uri)

	s.m.Lock()
	defer s.m.Unlock()

	delete(s.entries, uri)
	return s.clock.Tick()
}

// Snapshot is a consistent, point-in-time read of the content store: the
// clock value and the set of entries as they stood at that instant (spec.md
// §4.2: "Readers see a consistent (contents, clock) snapshot").
type Snapshot struct {
	Clock   wclock.Clock
	Entries map[string]Contents
}

// Snapshot takes a consistent read of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.m.Lock()
	defer s.m.Unlock()

	entries := make(map[string]Contents, len(s.entries))
	for uri, c := range s.entries {
		entries[uri] = c
	}

	return Snapshot{Clock: s.clock, Entries: entries}
}

// Get returns the current contents for uri, and whether an entry exists.
func (s *Store) Get(uri string) (Contents, bool) {
	uri = common.NormalizeURI(uri)

	s.m.Lock()
	defer s.m.Unlock()

	c, ok := s.entries[uri]
	return c, ok
}

// Clock returns the store's current clock value without mutating it.
func (s *Store) Clock() wclock.Clock {
	s.m.Lock()
	defer s.m.Unlock()
	return s.clock
}

// ClearDirty clears the OnDisk.Dirty flag for uri, if it is currently
// OnDisk. Called by the compile pass once a re-read of the file has been
// parsed successfully, or served from the parse cache (DESIGN.md's
// resolution of spec.md §9's open question on when to clear the dirty flag).
func (s *Store) ClearDirty(uri string) {
	uri = common.NormalizeURI(uri)

	s.m.Lock()
	defer s.m.Unlock()

	if c, ok := s.entries[uri]; ok {
		if d, isDisk := c.(OnDisk); isDisk && d.Dirty {
			s.entries[uri] = OnDisk{Dirty: false}
		}
	}
}
