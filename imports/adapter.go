package imports

import (
	"chaiworker/filestate"
	"chaiworker/report"
)

// LookupResult is what the caller's file-state lookup reports back to an
// Adapter about one resolved import target, so this package never needs to
// import filestate's WorkingMark or pipeline's Signature type directly.
type LookupResult struct {
	// Working is true if the target URI's FileState currently has a
	// non-Done WorkingMark stamped by the pass in progress — i.e. it is
	// being visited somewhere above this point in the descent.
	Working bool

	// Resolved is true if the target reached a usable resolve-stage
	// signature on some prior or current visit this pass.
	Resolved  bool
	Signature any
}

// Lookup answers "what is the state of this already-resolved URI", letting
// pipeline supply the glue between imports and filestate without this
// package depending on pipeline's concrete artifact types. span is the
// import expression's span in the importer, passed through so the callback
// can mark the target as WorkingDep(importerURI, span) before recursing.
type Lookup func(uri string, span *report.TextSpan) LookupResult

// Adapter is the monadic context threaded through one file's resolve call:
// it answers "import this path" queries and accumulates the dependency set
// that pipeline will store on the file's FileState once resolution
// finishes (spec.md §4.5). Composition is left-to-right: each Query call
// folds its edge into the accumulated set; set union on URIs means only
// the first span seen for a given URI survives.
type Adapter struct {
	ImporterURI string
	ImporterDir string
	Libs        PathSet

	spans map[string]*report.TextSpan
	order []string
}

// NewAdapter creates an Adapter for one file's resolve pass.
func NewAdapter(importerURI, importerDir string, libs PathSet) *Adapter {
	return &Adapter{
		ImporterURI: importerURI,
		ImporterDir: importerDir,
		Libs:        libs,
		spans:       make(map[string]*report.TextSpan),
	}
}

// Query resolves one import path written in the importer's source and
// reports the Outcome. A path that actually resolves to a URI is recorded
// as a dependency edge regardless of whether that URI then turns out to be
// errored or mid-cycle; a NotFound path never enters the dependency set —
// there is no URI to key it on.
func (a *Adapter) Query(importPath string, span *report.TextSpan, lookup Lookup) Outcome {
	uri, found := ResolvePath(importPath, a.ImporterDir, a.Libs)
	if !found {
		return NotFound{OriginalPath: importPath}
	}

	if _, seen := a.spans[uri]; !seen {
		a.spans[uri] = span
		a.order = append(a.order, uri)
	}

	result := lookup(uri, span)
	if result.Working {
		return ImportCycle{Chain: []CycleLink{{RelativePath: importPath, Span: span}}}
	}
	if !result.Resolved {
		return Errored{URI: uri}
	}

	return Imported{URI: uri, Signature: result.Signature}
}

// Dependencies returns the accumulated dependency set in first-seen order,
// ready to store on the importer's FileState.
func (a *Adapter) Dependencies() []filestate.Dependency {
	deps := make([]filestate.Dependency, 0, len(a.order))
	for _, uri := range a.order {
		deps = append(deps, filestate.Dependency{URI: uri, Span: a.spans[uri]})
	}
	return deps
}
