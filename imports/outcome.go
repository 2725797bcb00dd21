// Package imports implements the import adapter: resolution of relative and
// library import paths to file URIs, dependency-edge recording, and cycle
// detection against the file-state store's WorkingMark (spec.md §4.5).
package imports

import "chaiworker/report"

// Outcome is the tagged variant an import query returns (spec.md §4.5):
// Imported, Errored, NotFound, or ImportCycle.
type Outcome interface {
	isOutcome()
}

// Imported is the successful outcome: the dependency resolved to a URI
// whose FileState had already reached Done, together with whatever
// signature the resolve stage exported for it. Signature is `any`: package
// imports cannot name pipeline's concrete Signature type without an import
// cycle (pipeline depends on imports, not the reverse).
type Imported struct {
	URI       string
	Signature any
}

func (Imported) isOutcome() {}

// Errored is returned when the target resolved to a file, but that file's
// own resolve stage failed outright (distinct from NotFound/ImportCycle:
// the file exists and isn't a cycle, it just has no usable signature).
type Errored struct {
	URI string
}

func (Errored) isOutcome() {}

// NotFound is returned when originalPath could not be resolved to any URI
// via the relative-then-library search order.
type NotFound struct {
	OriginalPath string
}

func (NotFound) isOutcome() {}

// CycleLink is one (relativePath, span) pair in an import-cycle chain.
type CycleLink struct {
	RelativePath string
	Span         *report.TextSpan
}

// ImportCycle is returned when the target resolved to a URI that is
// currently being visited (WorkingMark ≠ Done) somewhere above this point
// in the current pass's descent. Chain holds at least one link: per
// DESIGN.md's Open Question decision, this module reports the minimal
// one-link chain (the edge that closed the loop), not a full multi-node
// reconstruction.
type ImportCycle struct {
	Chain []CycleLink
}

func (ImportCycle) isOutcome() {}
