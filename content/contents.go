// Package content holds the worker's content store: the mapping from a
// normalized file URI to what that file currently contains, either the
// editor's authoritative text or an on-disk sentinel (spec.md §3
// FileContents, §4.2).
package content

import (
	"chaiworker/wclock"
)

// Contents is a tagged variant: either Opened (editor text is authoritative,
// disk is ignored) or OnDisk (the file lives on disk; dirty records that a
// future read must bypass the content-hash short circuit). Modeled as a
// sealed interface with an unexported marker method, matching the teacher's
// own `ast.ASTNode`/`ASTBase` sum-type idiom.
type Contents interface {
	isContents()
}

// Opened is the Contents variant for a file currently open in the editor.
type Opened struct {
	Version wclock.Version
	Text    Rope
}

func (Opened) isContents() {}

// OnDisk is the Contents variant for a file that is not open in the editor.
// Dirty is set by touchFile to force the next compile pass to bypass the
// content-hash short circuit even if the bytes happen to hash the same as
// what was last read (e.g. the file was touched by an external tool that
// rewrote it with identical bytes, and the pass should still confirm that).
type OnDisk struct {
	Dirty bool
}

func (OnDisk) isContents() {}
