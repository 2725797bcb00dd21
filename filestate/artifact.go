package filestate

import "chaiworker/wclock"

// VersionedArtifact is either absent, or the payload produced by a compile
// stage together with the file Version that produced it (spec.md §3, §9:
// "stage result tagged with the version that produced it; survives later
// failures"). A later version that fails to reach this stage leaves an
// older VersionedArtifact's payload untouched rather than clearing it —
// callers decide whether a payload is still current by comparing its
// Version against the version they care about, via CurrentAt.
type VersionedArtifact[T any] struct {
	ok      bool
	version wclock.Version
	payload T
}

// Success builds a VersionedArtifact recording that stage T succeeded at
// version v with the given payload.
func Success[T any](v wclock.Version, payload T) VersionedArtifact[T] {
	return VersionedArtifact[T]{ok: true, version: v, payload: payload}
}

// Present reports whether this slot has ever recorded a success.
func (a VersionedArtifact[T]) Present() bool {
	return a.ok
}

// Version returns the version of the most recent success, and whether one
// exists at all.
func (a VersionedArtifact[T]) Version() (wclock.Version, bool) {
	return a.version, a.ok
}

// CurrentAt reports whether this slot's last success was produced exactly
// at version v, returning its payload if so. This is the single helper
// spec.md §9 calls for ("implementers should expose a single helper 'is
// this slot current at version v?' rather than re-deriving the predicate
// per call site").
func (a VersionedArtifact[T]) CurrentAt(v wclock.Version) (T, bool) {
	if a.ok && a.version == v {
		return a.payload, true
	}
	var zero T
	return zero, false
}

// Payload returns the most recent successful payload regardless of version,
// and whether one exists. Used where a caller wants "best available" data
// rather than a version-exact match (e.g. serving stale-but-useful results).
func (a VersionedArtifact[T]) Payload() (T, bool) {
	return a.payload, a.ok
}
