// Package names implements the process-wide fresh-name allocator and its
// inverse URI index (spec.md §3's "compiler-internal name", §4.1's
// findFile). Compile stages address files by this internal Name rather than
// by URI once a FileState exists for them.
package names

import "sync"

// Name is a fresh, process-unique integer tag for a file, handed to the
// external compiler stages in place of its URI.
type Name int64

// Index is the bidirectional URI<->Name table, plus the counter that hands
// out fresh names. It is its own small transactional store, matching
// spec.md §5's "no fine-grained locks": one mutex covers both directions
// of the map together with the counter, so a caller can never observe one
// direction updated and not the other.
type Index struct {
	m        sync.Mutex
	next     Name
	byURI    map[string]Name
	byName   map[Name]string
}

// NewIndex creates an empty name index.
func NewIndex() *Index {
	return &Index{
		byURI:  make(map[string]Name),
		byName: make(map[Name]string),
	}
}

// Allocate returns the existing name for uri if one is already assigned,
// or mints and records a fresh one otherwise.
func (ix *Index) Allocate(uri string) Name {
	ix.m.Lock()
	defer ix.m.Unlock()

	if n, ok := ix.byURI[uri]; ok {
		return n
	}

	ix.next++
	n := ix.next
	ix.byURI[uri] = n
	ix.byName[n] = uri
	return n
}

// Remove deletes uri's entry from the index entirely (spec.md §3: "the
// fileVars index is the inverse of name over all present FileStates" — a
// FileState's removal must remove its name too).
func (ix *Index) Remove(uri string) {
	ix.m.Lock()
	defer ix.m.Unlock()

	if n, ok := ix.byURI[uri]; ok {
		delete(ix.byURI, uri)
		delete(ix.byName, n)
	}
}

// Lookup returns the URI bound to name, and whether it exists. This backs
// the worker facade's findFile operation (spec.md §4.1).
func (ix *Index) Lookup(name Name) (string, bool) {
	ix.m.Lock()
	defer ix.m.Unlock()

	uri, ok := ix.byName[name]
	return uri, ok
}

// NameOf returns the name already bound to uri, if any, without allocating
// one.
func (ix *Index) NameOf(uri string) (Name, bool) {
	ix.m.Lock()
	defer ix.m.Unlock()

	n, ok := ix.byURI[uri]
	return n, ok
}
