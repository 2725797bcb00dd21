package worker

import (
	"strings"

	"chaiworker/diag"
	"chaiworker/imports"
	"chaiworker/pipeline"
	"chaiworker/report"
)

// lineFrontend is a minimal pipeline.Frontend for exercising the worker
// against real import resolution without a real compiler: each "import
// PATH" line is a dependency, and each "let NAME = ..." line exports NAME.
// A line containing "PARSEFAIL" makes ParseTops fail outright.
type lineFrontend struct{}

type parsedLines struct {
	imports []importLine
	exports []string
}

type importLine struct {
	path string
	span *report.TextSpan
}

func (lineFrontend) ParseTops(text string) (*pipeline.ParseTree, []diag.Diagnostic) {
	if strings.Contains(text, "PARSEFAIL") {
		return nil, []diag.Diagnostic{{
			Stage:    diag.StageParse,
			Severity: diag.SevError,
			Message:  "simulated parse failure",
		}}
	}

	pl := &parsedLines{}
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "import "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "import "))
			pl.imports = append(pl.imports, importLine{
				path: path,
				span: &report.TextSpan{StartLine: i, StartCol: 0, EndLine: i, EndCol: len(line)},
			})
		case strings.HasPrefix(line, "let "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				pl.exports = append(pl.exports, fields[1])
			}
		}
	}
	return &pipeline.ParseTree{Payload: pl}, nil
}

func (lineFrontend) ResolveProgram(ctx *pipeline.ResolveContext, builtins pipeline.Signature, tree *pipeline.ParseTree) (*pipeline.ResolveResult, []diag.Diagnostic) {
	pl := tree.Payload.(*parsedLines)

	exports := make(map[string]bool)
	for _, e := range pl.exports {
		exports[e] = true
	}

	var diags []diag.Diagnostic
	for _, imp := range pl.imports {
		switch o := ctx.Import(imp.path, imp.span).(type) {
		case imports.Imported:
			if sig, ok := o.Signature.(pipeline.Signature); ok {
				if m, ok := sig.Payload.(map[string]bool); ok {
					for k := range m {
						exports[k] = true
					}
				}
			}
		case imports.NotFound:
			diags = append(diags, diag.NewImportError(imp.span, o.OriginalPath))
		case imports.Errored:
			diags = append(diags, diag.NewImportError(imp.span, imp.path))
		case imports.ImportCycle:
			link := o.Chain[0]
			diags = append(diags, diag.NewImportCycle(link.Span, link.RelativePath))
		}
	}

	for _, d := range diags {
		if d.Severity == diag.SevError {
			return nil, diags
		}
	}

	return &pipeline.ResolveResult{
		Tree:      pl,
		Signature: pipeline.Signature{Payload: exports},
	}, diags
}

func (lineFrontend) DesugarProgram(resolved *pipeline.ResolveResult) *pipeline.ResolveResult {
	return resolved
}

func (lineFrontend) InferProgram(env pipeline.Env, desugared *pipeline.ResolveResult) (*pipeline.TypeResult, []diag.Diagnostic) {
	return &pipeline.TypeResult{
		Tree: desugared.Tree,
		Env:  pipeline.Env{Payload: desugared.Signature.Payload},
	}, nil
}

func (lineFrontend) VerifyProgram(typed *pipeline.TypeResult) []diag.Diagnostic {
	return nil
}

var _ pipeline.Frontend = lineFrontend{}
