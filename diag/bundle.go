package diag

// Bundle is the aggregated set of diagnostics a single file carries after
// its most recent compile pass, grouped by the stage that produced them
// (spec.md §7: "the per-file ErrorBundle aggregates four kinds"). A Bundle
// is replaced wholesale on every pass that recompiles the file; stages that
// did not run (because an earlier stage failed) leave their slice nil,
// except Parse, which carries over the previous bundle's parse diagnostics
// when the parse tree was reused rather than re-parsed.
type Bundle struct {
	Parse   []Diagnostic
	Resolve []Diagnostic
	Type    []Diagnostic
	Verify  []Diagnostic
}

// Empty reports whether the bundle carries no diagnostics at all.
func (b *Bundle) Empty() bool {
	return b == nil || (len(b.Parse) == 0 && len(b.Resolve) == 0 && len(b.Type) == 0 && len(b.Verify) == 0)
}

// HasErrors reports whether any diagnostic in the bundle is of severity
// SevError, in any stage. cmd/chaiworker uses it to pick its exit code; the
// compile pass decides whether to withhold the typed artifact (spec.md §7)
// by scanning the type diagnostics itself, not through this method.
func (b *Bundle) HasErrors() bool {
	if b == nil {
		return false
	}
	for _, list := range [][]Diagnostic{b.Parse, b.Resolve, b.Type, b.Verify} {
		for _, d := range list {
			if d.Severity == SevError {
				return true
			}
		}
	}
	return false
}

// All returns every diagnostic in the bundle, in stage order.
func (b *Bundle) All() []Diagnostic {
	if b == nil {
		return nil
	}
	all := make([]Diagnostic, 0, len(b.Parse)+len(b.Resolve)+len(b.Type)+len(b.Verify))
	all = append(all, b.Parse...)
	all = append(all, b.Resolve...)
	all = append(all, b.Type...)
	all = append(all, b.Verify...)
	return all
}

// Equal reports whether two bundles carry the same diagnostics, field by
// field. The compile pass calls publish only when Equal returns false
// (spec.md §4.4: "publish errors ... only when changed"), so an editor that
// repeatedly triggers a no-op recompute (e.g. touchFile on an unmodified
// on-disk file) does not spam the client with redundant notifications.
func (b *Bundle) Equal(other *Bundle) bool {
	if b == nil || other == nil {
		return b.Empty() && other.Empty()
	}
	return diagSliceEqual(b.Parse, other.Parse) &&
		diagSliceEqual(b.Resolve, other.Resolve) &&
		diagSliceEqual(b.Type, other.Type) &&
		diagSliceEqual(b.Verify, other.Verify)
}

func diagSliceEqual(a, b []Diagnostic) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !diagEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func diagEqual(a, b Diagnostic) bool {
	if a.Stage != b.Stage || a.Severity != b.Severity || a.Message != b.Message ||
		a.Kind != b.Kind || a.ImportPath != b.ImportPath {
		return false
	}
	if (a.Span == nil) != (b.Span == nil) {
		return false
	}
	if a.Span == nil {
		return true
	}
	return *a.Span == *b.Span
}

// Publisher is the callback the worker facade invokes with a file's
// normalized URI and its freshly computed bundle, one call per pass per
// changed file (spec.md §6's diagnostic-push collaborator).
type Publisher func(uri string, b *Bundle)
