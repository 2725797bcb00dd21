// Package reqqueue implements the asynchronous request queue of spec.md
// §4.6: requests pending against a file become satisfiable only once that
// file's state reaches a matching version, at which point the dispatcher
// thread runs their success sink in request-id order.
package reqqueue

import (
	"chaiworker/content"
	"chaiworker/diag"
	"chaiworker/filestate"
	"chaiworker/names"
	"chaiworker/wclock"
)

// Stage names the FileState slot a Request wants (spec.md §4.6).
type Stage int

const (
	StageParsed Stage = iota
	StageResolved
	StageTyped
	StageErrors
)

// RequestID identifies one outstanding request; ordering by id is what
// gives the dispatcher its fairness property (spec.md §4.6).
type RequestID int64

// Request is spec.md §4.1's Request: a target file, a stage tag, and the
// two sinks the dispatcher invokes once the request is resolved one way or
// the other.
type Request struct {
	ID     RequestID
	URI    string
	Stage  Stage
	Extra  any // unused by any current stage; reserved for request-specific parameters.

	// OnSuccess receives the compiler-internal name, the version the
	// payload was produced at, and the stage-specific payload (absent as a
	// nil payload with ok=false).
	OnSuccess func(name names.Name, version wclock.Version, payload any, ok bool)

	// OnError receives a human-readable reason, e.g. "File is not open".
	OnError func(reason string)
}

// TrySatisfy implements spec.md §4.6's trySatisfy against a single
// (clock, FileState, FileContents) snapshot. handled is false if the
// request is not yet resolvable either way (still pending). When handled is
// true, a non-empty errMsg means the request failed (for OnError);
// otherwise name, version, payload and present are the values for
// OnSuccess, with present false for an absent payload. The caller still
// must invoke the sinks itself — TrySatisfy only decides, it does not call
// back.
func TrySatisfy(req *Request, clock wclock.Clock, st filestate.State, hasState bool, c content.Contents, hasContent bool) (handled bool, name names.Name, version wclock.Version, payload any, present bool, errMsg string) {
	opened, isOpened := c.(content.Opened)
	if !hasContent && !hasState {
		// A URI nobody has ever referenced is not yet known to be
		// anything — it may still be opened momentarily, so the request
		// stays pending rather than erroring (spec.md §8 S4: a request
		// filed before the file's first updateFile remains pending).
		return false, 0, 0, nil, false, ""
	}
	if !isOpened {
		return true, 0, 0, nil, false, "File is not open"
	}
	if !hasState {
		return true, 0, 0, nil, false, "File is not open"
	}

	os, isOpenedState := st.(*filestate.OpenedState)
	if !isOpenedState {
		return true, 0, 0, nil, false, "File is not open"
	}

	name = os.Name

	switch req.Stage {
	case StageParsed:
		if v, ok := os.Parsed.Version(); ok && v == opened.Version {
			payload, _ = os.Parsed.Payload()
			return true, name, v, payload, true, ""
		}
		if os.LastParsedVersion != nil && *os.LastParsedVersion == opened.Version {
			return true, name, opened.Version, nil, false, ""
		}
		return false, 0, 0, nil, false, ""

	case StageResolved:
		if doneClock, done := filestate.IsDone(os.Mark); !done || doneClock != clock {
			return false, 0, 0, nil, false, ""
		}
		if v, ok := os.Resolved.Version(); ok && v == opened.Version {
			payload, _ = os.Resolved.Payload()
			return true, name, v, payload, true, ""
		}
		return true, name, opened.Version, nil, false, ""

	case StageTyped:
		if doneClock, done := filestate.IsDone(os.Mark); !done || doneClock != clock {
			return false, 0, 0, nil, false, ""
		}
		rv, rok := os.Resolved.Version()
		tv, tok := os.Typed.Version()
		if rok && tok && rv == opened.Version && tv == opened.Version {
			resolvedPayload, _ := os.Resolved.Payload()
			typedPayload, _ := os.Typed.Payload()
			return true, name, tv, [2]any{resolvedPayload, typedPayload}, true, ""
		}
		return true, name, opened.Version, nil, false, ""

	case StageErrors:
		if doneClock, done := filestate.IsDone(os.Mark); !done || doneClock != clock {
			return false, 0, 0, nil, false, ""
		}
		var bundle *diag.Bundle
		if os.Errors != nil {
			bundle = os.Errors
		} else {
			bundle = &diag.Bundle{}
		}
		return true, name, opened.Version, bundle, true, ""
	}

	return true, 0, 0, nil, false, "unknown request stage"
}
