// Package pipeline formalizes the boundary with the external compiler
// front-end (spec.md §6) as the Frontend interface, and implements the
// per-file loadFile algorithm (spec.md §4.4) that drives it.
package pipeline

import (
	"chaiworker/diag"
	"chaiworker/imports"
	"chaiworker/report"
)

// ParseTree, Signature, Env, and TypeResult are opaque payload types from
// this module's point of view: it stores and forwards them, never inspects
// their internals (spec.md §1: "the parser, name resolver, desugarer, type
// inferencer, program verifier" are external collaborators). A real
// frontend substitutes its own concrete definitions; the worker only needs
// something with these names to plumb through VersionedArtifact slots.
type ParseTree struct {
	// Opaque to this module. A real frontend's parser fills this with
	// whatever internal AST representation it uses.
	Payload any
}

// Signature is what a file exports to its importers once resolved: a name
// table, opaque to this module.
type Signature struct {
	Payload any
}

// Env is the typing environment threaded into type inference.
type Env struct {
	Payload any
}

// ResolveResult is the output of name resolution: the resolved tree plus
// the file's own exported Signature.
type ResolveResult struct {
	Tree      any
	Signature Signature
}

// TypeResult is the output of type inference: the typed tree plus whatever
// Env it produced for downstream consumers.
type TypeResult struct {
	Tree any
	Env  Env
}

// ResolveContext is the concrete type threaded into ResolveProgram: the
// import adapter for the file currently resolving, formalizing spec.md
// §4.5's "monadic structure threaded through name resolution".
type ResolveContext struct {
	*imports.Adapter

	lookup imports.Lookup
}

// Import resolves one import path encountered while resolving this file,
// recursively loading the target (which is how cycle detection and
// transitive compilation both happen) before reporting the outcome.
func (rc *ResolveContext) Import(path string, span *report.TextSpan) imports.Outcome {
	return rc.Adapter.Query(path, span, rc.lookup)
}

// Frontend is the boundary interface described informally in spec.md §6,
// restated here as a first-class Go interface so every compile-pass
// operation in loadFile has a concrete signature to call. ParseTops takes
// only text, not a URI, matching spec.md's framing of parsing as a pure
// function of the file's bytes.
type Frontend interface {
	ParseTops(text string) (*ParseTree, []diag.Diagnostic)
	ResolveProgram(ctx *ResolveContext, builtins Signature, tree *ParseTree) (*ResolveResult, []diag.Diagnostic)
	DesugarProgram(resolved *ResolveResult) *ResolveResult
	InferProgram(env Env, desugared *ResolveResult) (*TypeResult, []diag.Diagnostic)
	VerifyProgram(typed *TypeResult) []diag.Diagnostic
}

// NullFrontend is a reference Frontend for tests: the whole text becomes
// the parse tree's payload and, after resolution, the signature's payload;
// it does not split the text or look for bindings or imports, and it never
// fails, so scheduler/cache tests can run without a real compiler attached.
type NullFrontend struct{}

func (NullFrontend) ParseTops(text string) (*ParseTree, []diag.Diagnostic) {
	return &ParseTree{Payload: text}, nil
}

func (NullFrontend) ResolveProgram(ctx *ResolveContext, builtins Signature, tree *ParseTree) (*ResolveResult, []diag.Diagnostic) {
	return &ResolveResult{
		Tree:      tree.Payload,
		Signature: Signature{Payload: tree.Payload},
	}, nil
}

func (NullFrontend) DesugarProgram(resolved *ResolveResult) *ResolveResult {
	return resolved
}

func (NullFrontend) InferProgram(env Env, desugared *ResolveResult) (*TypeResult, []diag.Diagnostic) {
	return &TypeResult{Tree: desugared.Tree, Env: env}, nil
}

func (NullFrontend) VerifyProgram(typed *TypeResult) []diag.Diagnostic {
	return nil
}

var _ Frontend = NullFrontend{}
