// Package diag holds the per-file diagnostic bundle published by the compile
// pipeline: the aggregated parse/resolve/type/verify errors and warnings a
// single file accumulated on its most recent pass (spec.md §7's ErrorBundle).
package diag

import "chaiworker/report"

// Severity distinguishes errors, which withhold downstream artifacts, from
// warnings, which do not. Mirrors the teacher's own error/warning split in
// report.Reporter's log-level handling.
type Severity int

const (
	SevWarning Severity = iota
	SevError
)

func (s Severity) String() string {
	if s == SevError {
		return "error"
	}
	return "warning"
}

// Stage identifies which compile stage produced a diagnostic.
type Stage int

const (
	StageParse Stage = iota
	StageResolve
	StageType
	StageVerify
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageResolve:
		return "resolve"
	case StageType:
		return "type"
	case StageVerify:
		return "verify"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported problem, tagged with the stage that
// produced it and a severity. Span may be nil for file-level diagnostics
// (e.g. "module not found" has no single span within the importer).
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Message  string
	Span     *report.TextSpan

	// Kind distinguishes resolve-stage sub-cases the worker must treat
	// specially (spec.md §4.2, §7): "import-error" for a missing
	// dependency, "import-cycle" for a cyclic import. Empty for every
	// other stage.
	Kind string

	// ImportPath is set only for Kind == KindImportError / KindImportCycle:
	// the literal import path as written by the importer, not the resolved
	// URI, so the message matches what the user typed (spec.md S2).
	ImportPath string
}

// Resolve-stage diagnostic kinds.
const (
	KindImportError = "import-error"
	KindImportCycle = "import-cycle"
)

// NewImportError builds the resolve-stage diagnostic for a dependency whose
// import path did not resolve to any file (spec.md §4.2 NotFound).
func NewImportError(span *report.TextSpan, importPath string) Diagnostic {
	return Diagnostic{
		Stage:      StageResolve,
		Severity:   SevError,
		Message:    "cannot find import \"" + importPath + "\"",
		Span:       span,
		Kind:       KindImportError,
		ImportPath: importPath,
	}
}

// NewImportCycle builds the resolve-stage diagnostic for an import that
// closes a dependency cycle (spec.md §4.2's pre-marked WorkingMark check).
func NewImportCycle(span *report.TextSpan, importPath string) Diagnostic {
	return Diagnostic{
		Stage:      StageResolve,
		Severity:   SevError,
		Message:    "import cycle detected through \"" + importPath + "\"",
		Span:       span,
		Kind:       KindImportCycle,
		ImportPath: importPath,
	}
}
