package filestate

import "chaiworker/wclock"

/*
Cycle detection via WorkingMark
--------------------------------

Every file visited during a pass is "colored" white (no entry, or Mark
left over from a previous pass and about to be overwritten), grey
(WorkingRoot/WorkingDep — currently being visited higher up the current
descent), or black (Done(baseClock) — fully visited this pass). This is the
same three-color DFS used for named-type recursion detection, specialized
to one rule: a file is only a color for the duration of the pass that set
it; a mark from an older pass reads as white until re-stamped.
*/

// IsCurrentlyWorking reports whether st's mark shows it is "grey" for the
// pass stamped by baseClock: currently being visited somewhere above this
// point in the descent, and not yet Done. The lookup the compile pass hands
// the import adapter calls this on every resolved import target after
// loadFile has returned it (loadFile returns a target already visited this
// pass without recursing); a true result means the edge closes a cycle.
func IsCurrentlyWorking(st State, baseClock wclock.Clock) bool {
	if st == nil {
		return false
	}

	mark := st.CommonBase().Mark
	if mark == nil {
		return false
	}

	if _, done := IsDone(mark); done {
		// A Done file is never "working", regardless of which clock it was
		// done at.
		return false
	}

	// WorkingRoot or WorkingDep: grey only if this pass actually put it
	// there, i.e. CheckClock matches baseClock. A WorkingDep/WorkingRoot
	// mark left over from a pass that was aborted mid-flight (killed by
	// kill-and-restart) must not be mistaken for a live cycle.
	return st.CommonBase().CheckClock == baseClock
}
