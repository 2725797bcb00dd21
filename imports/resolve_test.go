package imports

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePathRelativeHit(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sibling.chai"), []byte("let x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	uri, found := ResolvePath("./sibling", dir, PathSet{})
	if !found {
		t.Fatal("expected the relative import to resolve")
	}
	want := "file://" + filepath.ToSlash(filepath.Join(dir, "sibling.chai"))
	if uri != want {
		t.Fatalf("uri = %q, want %q", uri, want)
	}
}

func TestResolvePathRelativeMissNeverConsultsLibraries(t *testing.T) {
	dir := t.TempDir()
	libDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(libDir, "sibling.chai"), []byte("let x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, found := ResolvePath("./sibling", dir, PathSet{Paths: []string{libDir}})
	if found {
		t.Fatal("a relative import must never fall back to the library search path")
	}
}

func TestResolvePathLibraryFirstHitWins(t *testing.T) {
	dir := t.TempDir()
	lib1 := t.TempDir()
	lib2 := t.TempDir()
	if err := os.WriteFile(filepath.Join(lib1, "pkg.chai"), []byte("let a = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(lib2, "pkg.chai"), []byte("let a = 2"), 0o644); err != nil {
		t.Fatal(err)
	}

	uri, found := ResolvePath("pkg", dir, PathSet{Paths: []string{lib1, lib2}})
	if !found {
		t.Fatal("expected a library hit")
	}
	want := "file://" + filepath.ToSlash(filepath.Join(lib1, "pkg.chai"))
	if uri != want {
		t.Fatalf("uri = %q, want the first library path's file %q", uri, want)
	}
}

func TestResolvePathLibraryFallsThroughToSecondPath(t *testing.T) {
	dir := t.TempDir()
	lib1 := t.TempDir()
	lib2 := t.TempDir()
	if err := os.WriteFile(filepath.Join(lib2, "pkg.chai"), []byte("let a = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, found := ResolvePath("pkg", dir, PathSet{Paths: []string{lib1, lib2}})
	if !found {
		t.Fatal("expected the second library path to be consulted after the first misses")
	}
}

func TestResolvePathNotFound(t *testing.T) {
	dir := t.TempDir()
	_, found := ResolvePath("nope", dir, PathSet{Paths: []string{t.TempDir()}})
	if found {
		t.Fatal("expected no match for a path present nowhere")
	}
}
