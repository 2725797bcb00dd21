package report

import "fmt"

// LocalError is an error local to a single source file: the caller already
// knows which file produced it and only needs the message and the span
// inside that file.
type LocalError struct {
	Message string
	Span    *TextSpan
}

func (le *LocalError) Error() string {
	return le.Message
}

// Raise builds a LocalError. Named after the teacher's `report.Raise`: the
// worker's stages return these as ordinary values (spec.md §6 has the
// frontend return diagnostics, not panic with them) — Raise is reserved for
// the handful of call sites that still use Go's panic/recover to unwind a
// single file visit, such as an ICE.
func Raise(span *TextSpan, msg string, args ...interface{}) *LocalError {
	return &LocalError{Message: fmt.Sprintf(msg, args...), Span: span}
}

// ICE is the payload of a panic raised for an internal invariant violation
// (spec.md §7: "Internal invariant violations panic the compile task").
// Unlike LocalError, an ICE is never expected and is never a normal
// diagnostic — it always indicates a bug in the worker itself.
type ICE struct {
	Message string
}

func (ice *ICE) Error() string {
	return ice.Message
}

// RaiseICE panics with an ICE. Call sites are invariant checks the worker
// relies on internally (e.g. the fileVars index going out of sync with the
// file-state store) — never user-facing compile errors.
func RaiseICE(msg string, args ...interface{}) {
	panic(&ICE{Message: fmt.Sprintf(msg, args...)})
}

// RecoverPass recovers a panic raised during one execution of the compile
// pass. It reports the panic through the global reporter and returns true
// if a panic was caught, so the refresh scheduler can log the abort and let
// the next trigger start a fresh pass (spec.md §7, §9 "kill-and-restart").
// NB: must be called from a deferred function.
func RecoverPass() bool {
	if x := recover(); x != nil {
		switch v := x.(type) {
		case *ICE:
			reportICE(v.Message)
		case *LocalError:
			reportICE("uncaught local error escaped a compile pass: " + v.Message)
		case error:
			reportICE(v.Error())
		default:
			reportICE(fmt.Sprintf("%v", v))
		}
		return true
	}
	return false
}
