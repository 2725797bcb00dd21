package filestate

import (
	"chaiworker/report"
	"chaiworker/wclock"
)

/*
Cycle detection via pre-marking
--------------------------------

WorkingMark plays the role of the three-color DFS node color used to find
cycles in a dependency graph, adapted from named-type recursion checking to
import recursion:

	Done(clock)  ~ black — this file (and everything under it) is finished
	               for the pass stamped by clock.
	WorkingRoot  ~ grey  — this file is being visited as the pass's root or
	               priority target.
	WorkingDep   ~ grey  — this file is being visited because some importer
	               is resolving it; carries the importer's URI and the
	               import span, so the cycle diagnostic can point at the
	               edge that closed the loop.

A FileState with no entry yet is implicitly white. loadFile MUST commit
WorkingRoot/WorkingDep before recursing into a file's own imports: a file
visited while its own importer's mark is still grey is a cycle.
*/

// WorkingMark is the tagged variant recording why a file is (or was) being
// visited during the current pass.
type WorkingMark interface {
	isWorkingMark()
}

// Done marks a file as fully visited for the pass stamped by Clock.
type Done struct {
	Clock wclock.Clock
}

func (Done) isWorkingMark() {}

// WorkingRoot marks a file being visited because it was a refresh pass's
// priority target or one of the snapshot of open files being swept.
type WorkingRoot struct{}

func (WorkingRoot) isWorkingMark() {}

// WorkingDep marks a file being visited because ImporterURI is resolving an
// import at Span that points at it.
type WorkingDep struct {
	ImporterURI string
	Span        *report.TextSpan
}

func (WorkingDep) isWorkingMark() {}

// IsDone reports whether mark is a Done mark, and if so, at which clock.
func IsDone(mark WorkingMark) (wclock.Clock, bool) {
	if d, ok := mark.(Done); ok {
		return d.Clock, true
	}
	return 0, false
}
