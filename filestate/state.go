// Package filestate holds the worker's file-state store: the per-file
// compilation state spec.md §3 describes as FileState, along with the
// versioned-artifact slots and WorkingMark used to drive and terminate a
// compile pass.
package filestate

import (
	"crypto/sha256"

	"chaiworker/diag"
	"chaiworker/names"
	"chaiworker/report"
	"chaiworker/wclock"
)

// Dependency is one edge recorded by the import adapter: the URI a file
// imports, and the span of the import expression that named it.
type Dependency struct {
	URI  string
	Span *report.TextSpan
}

// Base holds the fields every FileState variant shares (spec.md §3:
// "{name, workingMark, compileClock, checkClock, dependencies}").
type Base struct {
	Name names.Name

	// Mark records why this file is being (or was) visited this pass; see
	// mark.go. Updated at the start of each per-file visit, ahead of
	// recursing into imports, to break cycles (spec.md §4.4, §9).
	Mark WorkingMark

	// CompileClock is the baseClock of the pass that last actually
	// recompiled this file (as opposed to merely verifying it unchanged).
	CompileClock wclock.Clock

	// CheckClock is the baseClock of the pass that last visited this file
	// at all, whether or not it recompiled. Equal to the current pass's
	// baseClock once visited, preventing re-visits within one pass.
	CheckClock wclock.Clock

	Dependencies []Dependency
}

// State is the tagged FileState variant: OpenedState or DiskState.
type State interface {
	isState()

	// CommonBase returns the fields shared by every variant. Named
	// CommonBase rather than Base to avoid colliding with the embedded
	// Base field each variant promotes.
	CommonBase() *Base
}

// OpenedState is the FileState shape for a file currently open in the
// editor (spec.md §3). Artifact payloads are stored as `any`: the concrete
// ParseTree/ResolveResult/TypeResult types belong to package pipeline,
// which this package cannot import without creating an import cycle (it is
// pipeline that depends on filestate, not the reverse).
type OpenedState struct {
	Base

	// LastParsedVersion is the version at which parsing was last attempted,
	// whether or not it produced a tree — used by the Parsed request rule
	// to distinguish "not yet parsed this version" from "parsed this
	// version, but it produced no tree" (spec.md §4.6).
	LastParsedVersion *wclock.Version

	Parsed   VersionedArtifact[any]
	Resolved VersionedArtifact[any]
	Typed    VersionedArtifact[any]

	// Errors is the most recent error bundle published for this file.
	// Retained here (rather than only handed to the publisher) so the
	// Errors request stage can serve it directly (spec.md §4.6).
	Errors *diag.Bundle
}

func (*OpenedState) isState()             {}
func (s *OpenedState) CommonBase() *Base  { return &s.Base }

// DiskState is the FileState shape for a file tracked only because it sits
// on disk, possibly imported by an open file but never itself opened
// (spec.md §3). Unlike OpenedState, its artifacts are not version-tagged —
// a disk file has no editor version, only a content hash, so "is this
// artifact current" is answered by comparing LastHash against a fresh read
// rather than by VersionedArtifact.CurrentAt.
type DiskState struct {
	Base

	// LastHash is the SHA-256 of the byte stream last read from disk; it
	// short-circuits re-parsing when the file is not dirty and its content
	// is unchanged, and keeps a touchFile that left the content unchanged
	// from counting as a change (spec.md §4.4 "diskPHash").
	LastHash    [sha256.Size]byte
	HasLastHash bool

	// Parsed, Resolved, and Typed hold the most recent successful payload
	// for each stage, or nil if that stage has never succeeded. Because
	// DiskState is keyed by hash rather than version, "most recent
	// successful" and "current" coincide: LastHash already tells the
	// caller whether these are still valid for the bytes on disk now.
	Parsed   any
	Resolved any
	Typed    any
}

func (*DiskState) isState()            {}
func (s *DiskState) CommonBase() *Base { return &s.Base }
