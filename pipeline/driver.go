package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"chaiworker/cache"
	"chaiworker/content"
	"chaiworker/diag"
	"chaiworker/filestate"
	"chaiworker/imports"
	"chaiworker/names"
	"chaiworker/report"
	"chaiworker/wclock"
)

// Importer identifies the file and span responsible for one recursive
// descent into a dependency, used to stamp filestate.WorkingDep.
type Importer struct {
	URI  string
	Span *report.TextSpan
}

// Driver runs one compile pass: the per-file loadFile algorithm of spec.md
// §4.4, recursing into dependencies as the import adapter discovers them.
// A Driver instance is reused across passes; RunPass resets nothing but the
// per-pass WorkingMark/CheckClock bookkeeping that already lives in the
// file-state store.
type Driver struct {
	Frontend   Frontend
	Contents   *content.Store
	FileStates *filestate.Store
	Names      *names.Index
	Cache      *cache.ParseCache
	Builtins   Signature

	// Publish is invoked once per changed Opened file with its freshly
	// computed bundle (spec.md §4.4, §6).
	Publish diag.Publisher

	// Notify is called after each file's FileState commits, including
	// deletions, so the request queue can re-evaluate pending requests
	// against that URI (spec.md §4.6's queueRequests). Left nil in tests
	// that don't care about request satisfaction.
	Notify func(uri string)
}

func (d *Driver) notify(uri string) {
	if d.Notify != nil {
		d.Notify(uri)
	}
}

// RunPass executes one compile pass stamped with baseClock. If priority is
// non-empty, it is loaded first; then every currently-Opened URI is swept
// (spec.md §4.4 steps 1–2). ctx carries the kill-and-restart cancellation:
// RunPass and everything it calls checks ctx.Err() at file-visit
// granularity and abandons the remainder of the pass cleanly if it fires.
func (d *Driver) RunPass(ctx context.Context, baseClock wclock.Clock, priority string, libs imports.PathSet) {
	if priority != "" {
		d.loadFile(ctx, priority, nil, baseClock, libs)
	}

	snap := d.Contents.Snapshot()
	for uri, c := range snap.Entries {
		if ctx.Err() != nil {
			return
		}
		if _, isOpened := c.(content.Opened); !isOpened {
			continue
		}
		if st, ok := d.FileStates.Get(uri); ok {
			if st.CommonBase().CheckClock == baseClock {
				continue
			}
		}
		d.loadFile(ctx, uri, nil, baseClock, libs)
	}
}

// loadFile is spec.md §4.4's per-file algorithm. It returns the file's
// resulting State (nil if the file was destroyed) and a bool that is false
// when the visit was cancelled before doing any work or the file was
// destroyed, and true otherwise.
func (d *Driver) loadFile(ctx context.Context, uri string, importer *Importer, baseClock wclock.Clock, libs imports.PathSet) (filestate.State, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	old, hadOld := d.FileStates.Get(uri)
	if hadOld && old.CommonBase().CheckClock == baseClock {
		// Already visited this pass — either finished (Done) or currently
		// being visited higher up the current descent (a live cycle, left
		// for the import adapter to report).
		return old, true
	}

	var (
		oldMarkNotDone bool
		oldCheckClock  wclock.Clock
		oldDeps        []filestate.Dependency
	)
	if hadOld {
		_, done := filestate.IsDone(old.CommonBase().Mark)
		oldMarkNotDone = !done
		oldCheckClock = old.CommonBase().CheckClock
		oldDeps = old.CommonBase().Dependencies
	}

	changed, tree, parseRan, parseDiags, shell, destroy := d.parseFile(uri, old, hadOld)

	if destroy {
		d.FileStates.Delete(uri)
		d.Names.Remove(uri)
		d.Cache.Invalidate(uri)
		d.notify(uri)
		return nil, false
	}

	base := shell.CommonBase()
	if importer == nil {
		base.Mark = filestate.WorkingRoot{}
	} else {
		base.Mark = filestate.WorkingDep{ImporterURI: importer.URI, Span: importer.Span}
	}
	base.CheckClock = baseClock

	// Commit the shell before descending into dependencies: this is the
	// pre-marking write that lets a cyclic import observe "currently being
	// visited" instead of racing ahead into infinite recursion (spec.md
	// §4.4, §9).
	d.FileStates.Set(uri, shell)

	if !changed {
		if oldMarkNotDone && oldCheckClock != baseClock {
			// The prior pass that was visiting this file never finished
			// (it was killed mid-flight); treat as changed so it gets a
			// clean recompute rather than silently inheriting a half-done
			// state.
			changed = true
		} else {
			for _, dep := range oldDeps {
				if ctx.Err() != nil {
					break
				}
				depState, _ := d.loadFile(ctx, dep.URI, &Importer{URI: uri, Span: dep.Span}, baseClock, libs)
				if depState == nil {
					changed = true
					continue
				}
				if depState.CommonBase().CompileClock > base.CompileClock {
					changed = true
				}
			}
		}
	}

	if changed {
		d.recompute(ctx, uri, shell, tree, parseRan, parseDiags, baseClock, libs)
	}

	base.Mark = filestate.Done{Clock: baseClock}
	if changed {
		base.CompileClock = baseClock
	}
	d.FileStates.Set(uri, shell)
	d.notify(uri)

	return shell, true
}

// recompute runs the external pipeline (resolve → desugar → infer →
// verify) for a file determined to have changed, and folds the resulting
// diagnostics into its error bundle. It mutates shell in place.
func (d *Driver) recompute(
	ctx context.Context,
	uri string,
	shell filestate.State,
	tree *ParseTree,
	parseRan bool,
	parseDiags []diag.Diagnostic,
	baseClock wclock.Clock,
	libs imports.PathSet,
) {
	if tree == nil {
		// Parse attempted (possibly) but produced no tree: leave
		// resolved/typed artifacts untouched, but still surface the fresh
		// parse diagnostics if a parse actually ran this visit.
		if parseRan {
			d.updateBundle(uri, shell, &diag.Bundle{Parse: parseDiags})
		}
		return
	}

	importerDir := filepath.Dir(uriToPath(uri))
	adapter := imports.NewAdapter(uri, importerDir, libs)
	lookup := d.lookupFor(ctx, uri, baseClock, libs)
	resolveCtx := &ResolveContext{Adapter: adapter, lookup: lookup}

	resolved, resolveDiags := d.Frontend.ResolveProgram(resolveCtx, d.Builtins, tree)
	shell.CommonBase().Dependencies = adapter.Dependencies()

	bundle := &diag.Bundle{Resolve: resolveDiags}
	if parseRan {
		bundle.Parse = parseDiags
	} else if prev := currentBundle(shell); prev != nil {
		bundle.Parse = prev.Parse
	}

	if resolved == nil {
		d.updateBundle(uri, shell, bundle)
		return
	}

	version := parsedVersion(shell)
	setResolved(shell, version, resolved)

	desugared := d.Frontend.DesugarProgram(resolved)
	var env Env
	typed, typeDiags := d.Frontend.InferProgram(env, desugared)
	bundle.Type = typeDiags

	hasTypeError := false
	for _, dd := range typeDiags {
		if dd.Severity == diag.SevError {
			hasTypeError = true
			break
		}
	}

	if typed != nil && !hasTypeError {
		setTyped(shell, version, typed)

		if _, opened := shell.(*filestate.OpenedState); opened {
			bundle.Verify = d.Frontend.VerifyProgram(typed)
		}
	}
	// If typed == nil or carries an error severity diagnostic, the typed
	// artifact is withheld (spec.md §7) — the resolved artifact set above
	// stands regardless.

	d.updateBundle(uri, shell, bundle)
}

// lookupFor builds the closure threaded into the import adapter: answering
// "is this dependency done, working, or unresolved" by recursively
// descending into it.
func (d *Driver) lookupFor(ctx context.Context, importerURI string, baseClock wclock.Clock, libs imports.PathSet) imports.Lookup {
	return func(depURI string, span *report.TextSpan) imports.LookupResult {
		depState, _ := d.loadFile(ctx, depURI, &Importer{URI: importerURI, Span: span}, baseClock, libs)
		if depState == nil {
			return imports.LookupResult{Resolved: false}
		}

		if filestate.IsCurrentlyWorking(depState, baseClock) {
			return imports.LookupResult{Working: true}
		}

		sig, ok := resolvedSignature(depState)
		return imports.LookupResult{Resolved: ok, Signature: sig}
	}
}

// updateBundle installs bundle as uri's current error bundle and publishes
// it if it differs from what was already there (spec.md §4.4: "publish
// errors ... only for Opened, only when changed"). Disk files have no
// Errors slot to update — they are never published to, only Opened files
// are (spec.md §6's diagnostic-push callback is scoped to editor-visible
// files).
func (d *Driver) updateBundle(uri string, shell filestate.State, bundle *diag.Bundle) {
	os, ok := shell.(*filestate.OpenedState)
	if !ok {
		return
	}

	if !bundle.Equal(os.Errors) && d.Publish != nil {
		d.Publish(uri, bundle)
	}
	os.Errors = bundle
}

func currentBundle(shell filestate.State) *diag.Bundle {
	if os, ok := shell.(*filestate.OpenedState); ok {
		return os.Errors
	}
	return nil
}

func parsedVersion(shell filestate.State) wclock.Version {
	if os, ok := shell.(*filestate.OpenedState); ok && os.LastParsedVersion != nil {
		return *os.LastParsedVersion
	}
	return 0
}

func setResolved(shell filestate.State, version wclock.Version, resolved *ResolveResult) {
	switch st := shell.(type) {
	case *filestate.OpenedState:
		st.Resolved = filestate.Success[any](version, resolved)
	case *filestate.DiskState:
		st.Resolved = resolved
	}
}

func setTyped(shell filestate.State, version wclock.Version, typed *TypeResult) {
	switch st := shell.(type) {
	case *filestate.OpenedState:
		st.Typed = filestate.Success[any](version, typed)
	case *filestate.DiskState:
		st.Typed = typed
	}
}

func resolvedSignature(state filestate.State) (any, bool) {
	switch st := state.(type) {
	case *filestate.OpenedState:
		payload, ok := st.Resolved.Payload()
		if !ok {
			return nil, false
		}
		if rr, ok := payload.(*ResolveResult); ok {
			return rr.Signature, true
		}
		return nil, false
	case *filestate.DiskState:
		if rr, ok := st.Resolved.(*ResolveResult); ok {
			return rr.Signature, true
		}
		return nil, false
	}
	return nil, false
}

// uriToPath converts a normalized "file://..." URI into an OS path. URIs
// without the file:// scheme are treated as already being OS paths, which
// keeps tests that construct bare-path URIs working without ceremony.
func uriToPath(uri string) string {
	const prefix = "file://"
	if strings.HasPrefix(uri, prefix) {
		return filepath.FromSlash(uri[len(prefix):])
	}
	return filepath.FromSlash(uri)
}

// parseFile implements spec.md §4.4's parseFile: read the authoritative
// text (editor rope if Opened, disk bytes otherwise), decide whether
// re-parsing is necessary, and return a fresh shell State carrying forward
// whatever the old state had to offer.
func (d *Driver) parseFile(uri string, old filestate.State, hadOld bool) (changed bool, tree *ParseTree, parseRan bool, parseDiags []diag.Diagnostic, shell filestate.State, destroy bool) {
	c, hasContent := d.Contents.Get(uri)

	if opened, isOpened := c.(content.Opened); hasContent && isOpened {
		ost := &filestate.OpenedState{}
		if prev, ok := old.(*filestate.OpenedState); hadOld && ok {
			*ost = *prev
		}
		ost.Name = d.allocateName(uri, old, hadOld)

		if ost.LastParsedVersion != nil && *ost.LastParsedVersion == opened.Version {
			if payload, ok := ost.Parsed.Payload(); ok {
				if t, ok2 := payload.(*ParseTree); ok2 {
					return false, t, false, nil, ost, false
				}
			}
			return false, nil, false, nil, ost, false
		}

		t, diags := d.Frontend.ParseTops(opened.Text)
		v := opened.Version
		ost.LastParsedVersion = &v
		if t != nil {
			ost.Parsed = filestate.Success[any](v, t)
		}

		return true, t, true, diags, ost, false
	}

	path := uriToPath(uri)
	bytes, err := os.ReadFile(path)
	if err != nil {
		return false, nil, false, nil, nil, true
	}

	hash := cache.Hash(bytes)

	dst := &filestate.DiskState{}
	if prev, ok := old.(*filestate.DiskState); hadOld && ok {
		*dst = *prev
	}
	dst.Name = d.allocateName(uri, old, hadOld)

	dirty := false
	if onDisk, ok := c.(content.OnDisk); hasContent && ok {
		dirty = onDisk.Dirty
	}

	sameHash := dst.HasLastHash && dst.LastHash == hash

	if !dirty && sameHash {
		if t, ok := dst.Parsed.(*ParseTree); ok {
			return false, t, false, nil, dst, false
		}
		return false, nil, false, nil, dst, false
	}

	// dirty forced a recheck even though the hash may turn out unchanged
	// (spec.md §9's open question: dirty is cleared on a successful parse,
	// not preemptively). changed reflects whether the content actually
	// differs from the last check, not merely whether a recheck happened —
	// a dirty re-verification that confirms identical bytes must not force
	// a fresh resolve/infer pass (spec.md §8's round-trip property).
	if cachedAny, ok := d.Cache.Get(uri, hash); ok {
		cached, _ := cachedAny.(*ParseTree)
		dst.LastHash = hash
		dst.HasLastHash = true
		dst.Parsed = cached
		d.Contents.ClearDirty(uri)
		return !sameHash, cached, false, nil, dst, false
	}

	t, diags := d.Frontend.ParseTops(string(bytes))
	dst.LastHash = hash
	dst.HasLastHash = true
	if t != nil {
		dst.Parsed = t
		d.Cache.Put(uri, hash, t)
		d.Contents.ClearDirty(uri)
	}

	return !sameHash, t, true, diags, dst, false
}

// allocateName returns uri's compiler-internal Name, reusing the one
// already recorded on its prior FileState rather than minting a fresh one.
// It checks the invariant the name index exists to uphold (spec.md §3: "the
// fileVars index is the inverse of name over all present FileStates") and
// raises an internal compiler error if a FileState's own Name has somehow
// drifted from what the index has on file for its URI — the two are meant
// to be updated together by every writer, so a mismatch here means some
// other writer broke that discipline.
func (d *Driver) allocateName(uri string, old filestate.State, hadOld bool) names.Name {
	if hadOld {
		name := old.CommonBase().Name
		if indexed, ok := d.Names.NameOf(uri); !ok || indexed != name {
			report.RaiseICE("name index out of sync with file-state store for %q: index has (%v, present=%v), file state has %v", uri, indexed, ok, name)
		}
		return name
	}
	return d.Names.Allocate(uri)
}
