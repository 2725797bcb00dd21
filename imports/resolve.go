package imports

import (
	"os"
	"path/filepath"
	"strings"

	"chaiworker/common"
)

// PathSet holds the ordered library paths consulted when an import path
// does not begin with "." (spec.md §4.4: "each library path is tried in
// order; the first hit wins"). Populated by config.Workspace and the
// worker facade's updateConfig operation.
type PathSet struct {
	Paths []string
}

// ResolvePath turns an import path as written by an importer into a
// candidate file URI, or reports that it could not be located. importerDir
// is the directory containing the importing file, used to resolve paths
// beginning with "." (spec.md §4.4).
func ResolvePath(importPath, importerDir string, libs PathSet) (uri string, found bool) {
	if strings.HasPrefix(importPath, ".") {
		candidate := filepath.Join(importerDir, filepath.FromSlash(importPath)) + common.SrcFileExt
		if fileExists(candidate) {
			return common.NormalizeURI(toFileURI(candidate)), true
		}
		return "", false
	}

	for _, lib := range libs.Paths {
		candidate := filepath.Join(lib, filepath.FromSlash(importPath)) + common.SrcFileExt
		if fileExists(candidate) {
			return common.NormalizeURI(toFileURI(candidate)), true
		}
	}

	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func toFileURI(absPath string) string {
	return "file://" + filepath.ToSlash(absPath)
}
