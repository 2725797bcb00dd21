// Package config loads the optional workspace configuration file and, if
// requested, watches disk for external changes to files the worker does not
// own (spec.md §4.9, §4.10).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"chaiworker/common"
	"chaiworker/imports"
	"chaiworker/report"
)

// tomlWorkspace is the on-disk shape of a workspace configuration file,
// grounded on the teacher's tomlModule.
type tomlWorkspace struct {
	LibraryPaths []string `toml:"library-paths"`
}

// Workspace is the resolved, in-memory configuration consulted by the import
// adapter (spec.md §4.9). Paths are absolute, in the order they should be
// tried.
type Workspace struct {
	Root  string
	Paths imports.PathSet

	// filePaths holds the library paths declared by the workspace file
	// alone, kept apart from Paths so Merge can rebuild Paths from scratch
	// on every call instead of compounding onto its own previous output.
	filePaths []string
}

// LoadWorkspace reads root's workspace file, if present, then merges its
// library-paths list with extra (paths supplied programmatically, e.g. by an
// editor's client-side settings) via Merge. A missing workspace file is not
// an error: it is equivalent to an empty one.
func LoadWorkspace(root string, extra []string, rep *report.Reporter) *Workspace {
	ws := &Workspace{Root: root}

	path := filepath.Join(root, common.WorkspaceFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && rep != nil {
			rep.ReportConfigError(path, fmt.Sprintf("unable to read workspace file: %s", err.Error()))
		}
		ws.Merge(extra)
		return ws
	}

	var tw tomlWorkspace
	if err := toml.Unmarshal(buf, &tw); err != nil {
		if rep != nil {
			rep.ReportConfigError(path, fmt.Sprintf("error parsing workspace file: %s", err.Error()))
		}
		ws.Merge(extra)
		return ws
	}

	for _, p := range tw.LibraryPaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		ws.filePaths = append(ws.filePaths, p)
	}

	ws.Merge(extra)
	return ws
}

// Merge recomputes the library-path list from extra (tried first) followed
// by the workspace file's own paths, and returns the resulting PathSet — the
// behavior backing the worker facade's updateConfig operation (spec.md
// §4.1, §4.9: "Recomputes library path list"). Rebuilding Paths.Paths fresh
// from filePaths on every call, rather than folding onto whatever Paths
// already held, is what makes a second UpdateConfig call replace the
// previous extras instead of piling up behind them.
func (w *Workspace) Merge(extra []string) imports.PathSet {
	merged := make([]string, 0, len(extra)+len(w.filePaths))
	merged = append(merged, extra...)
	merged = append(merged, w.filePaths...)
	w.Paths.Paths = merged
	return w.Paths
}
