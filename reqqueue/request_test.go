package reqqueue

import (
	"testing"

	"chaiworker/content"
	"chaiworker/diag"
	"chaiworker/filestate"
	"chaiworker/names"
	"chaiworker/wclock"
)

func TestTrySatisfyPendingWhenURIEntirelyUnknown(t *testing.T) {
	req := &Request{ID: 1, URI: "file:///unseen.chai", Stage: StageParsed}

	handled, _, _, _, _, _ := TrySatisfy(req, wclock.Clock(0), nil, false, nil, false)
	if handled {
		t.Fatal("a URI with neither FileState nor Contents must stay pending")
	}
}

func TestTrySatisfyErrorsWhenClosedAfterBeingOpened(t *testing.T) {
	req := &Request{ID: 1, URI: "file:///closed.chai", Stage: StageParsed}
	st := &filestate.DiskState{}

	handled, _, _, _, ok, msg := TrySatisfy(req, wclock.Clock(0), st, true, nil, false)
	if !handled {
		t.Fatal("a known FileState with no Opened content must be handled, not left pending")
	}
	if ok {
		t.Fatal("expected failure, got success")
	}
	if msg != "File is not open" {
		t.Fatalf("msg = %q, want %q", msg, "File is not open")
	}
}

func TestTrySatisfyParsedServesPayloadAtMatchingVersion(t *testing.T) {
	name := names.Name(7)
	st := &filestate.OpenedState{
		Base:   filestate.Base{Name: name},
		Parsed: filestate.Success[any](wclock.Version(3), "tree-at-3"),
	}
	c := content.Opened{Version: wclock.Version(3)}

	req := &Request{ID: 1, URI: "file:///a.chai", Stage: StageParsed}
	handled, gotName, version, payload, ok, msg := TrySatisfy(req, wclock.Clock(5), st, true, c, true)

	if !handled || !ok {
		t.Fatalf("handled=%v ok=%v msg=%q, want handled=true ok=true", handled, ok, msg)
	}
	if gotName != name {
		t.Fatalf("name = %v, want %v", gotName, name)
	}
	if version != wclock.Version(3) {
		t.Fatalf("version = %v, want 3", version)
	}
	if payload != "tree-at-3" {
		t.Fatalf("payload = %v, want %q", payload, "tree-at-3")
	}
}

func TestTrySatisfyParsedPendingWhenNeverAttemptedAtCurrentVersion(t *testing.T) {
	st := &filestate.OpenedState{Base: filestate.Base{Name: 1}}
	c := content.Opened{Version: wclock.Version(2)}

	req := &Request{ID: 1, URI: "file:///a.chai", Stage: StageParsed}
	handled, _, _, _, _, _ := TrySatisfy(req, wclock.Clock(5), st, true, c, true)
	if handled {
		t.Fatal("expected pending: version 2 has not been attempted yet")
	}
}

func TestTrySatisfyParsedFailurePresentWhenAttemptFailed(t *testing.T) {
	v := wclock.Version(2)
	st := &filestate.OpenedState{
		Base:              filestate.Base{Name: 1},
		LastParsedVersion: &v,
	}
	c := content.Opened{Version: wclock.Version(2)}

	req := &Request{ID: 1, URI: "file:///a.chai", Stage: StageParsed}
	handled, _, version, payload, ok, _ := TrySatisfy(req, wclock.Clock(5), st, true, c, true)
	if !handled {
		t.Fatal("a recorded failed attempt at the current version must be handled")
	}
	if ok {
		t.Fatal("expected ok=false: parsing at this version produced no tree")
	}
	if payload != nil {
		t.Fatalf("payload = %v, want nil", payload)
	}
	if version != wclock.Version(2) {
		t.Fatalf("version = %v, want 2", version)
	}
}

func TestTrySatisfyResolvedPendingUntilMarkDoneAtClock(t *testing.T) {
	st := &filestate.OpenedState{
		Base: filestate.Base{Name: 1, Mark: filestate.WorkingRoot{}},
	}
	c := content.Opened{Version: wclock.Version(1)}

	req := &Request{ID: 1, URI: "file:///a.chai", Stage: StageResolved}
	handled, _, _, _, _, _ := TrySatisfy(req, wclock.Clock(9), st, true, c, true)
	if handled {
		t.Fatal("expected pending while the pass hasn't marked this file Done")
	}
}

func TestTrySatisfyResolvedPendingWhenDoneAtDifferentClock(t *testing.T) {
	st := &filestate.OpenedState{
		Base: filestate.Base{Name: 1, Mark: filestate.Done{Clock: wclock.Clock(3)}},
	}
	c := content.Opened{Version: wclock.Version(1)}

	req := &Request{ID: 1, URI: "file:///a.chai", Stage: StageResolved}
	handled, _, _, _, _, _ := TrySatisfy(req, wclock.Clock(9), st, true, c, true)
	if handled {
		t.Fatal("a Done mark from a stale clock must not satisfy a request against the current pass")
	}
}

func TestTrySatisfyErrorsStageServesEmptyBundleWhenNoneRecorded(t *testing.T) {
	st := &filestate.OpenedState{
		Base: filestate.Base{Name: 1, Mark: filestate.Done{Clock: wclock.Clock(9)}},
	}
	c := content.Opened{Version: wclock.Version(1)}

	req := &Request{ID: 1, URI: "file:///a.chai", Stage: StageErrors}
	handled, _, _, payload, ok, _ := TrySatisfy(req, wclock.Clock(9), st, true, c, true)
	if !handled || !ok {
		t.Fatalf("handled=%v ok=%v, want true/true", handled, ok)
	}
	bundle, isBundle := payload.(*diag.Bundle)
	if !isBundle {
		t.Fatalf("payload = %T, want *diag.Bundle", payload)
	}
	if bundle.HasErrors() {
		t.Fatal("expected an empty bundle when no errors were ever recorded")
	}
}
