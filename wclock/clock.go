// Package wclock implements the two monotonic counters the worker keys its
// staleness checks on: the global world Clock, ticked on every content
// mutation, and the per-file Version, assigned by the editor client to one
// revision of an open file's text.
//
// Both types are not goroutine-safe on their own, matching the teacher's own
// Lamport clock: callers hold them behind the content store's single mutex
// (spec.md §5's "software transactional primitives ... no fine-grained
// locks") rather than making the counters individually atomic.
package wclock

// Clock is the global edit/touch ordinal. It increments once per content
// store mutation (updateFile, touchFile, closeFile) and stamps the
// baseClock of the refresh pass that observes it.
type Clock int64

// Tick advances the clock by one and returns the new value.
func (c *Clock) Tick() Clock {
	*c++
	return *c
}

// Value returns the current clock value without advancing it.
func (c *Clock) Value() Clock {
	return *c
}

// Version is the editor-assigned revision number of one open file's text.
// Two Versions are only ever compared for equality or ordering within the
// same file; there is no cross-file meaning to a raw Version value.
type Version int64

// Less reports whether v precedes other. Provided mainly so call sites read
// as "is this artifact stale" rather than bare integer comparison.
func (v Version) Less(other Version) bool {
	return v < other
}
