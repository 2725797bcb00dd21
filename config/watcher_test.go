package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatcherEmitsTouchOnSourceFileWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.chai")
	if err := os.WriteFile(path, []byte("let x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	touched := make(chan string, 8)
	w, err := NewWatcher(dir, func(uri string) { touched <- uri })
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(path, []byte("let x = 2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case uri := <-touched:
		if !strings.HasSuffix(uri, "a.chai") {
			t.Fatalf("touched %q, want it to name a.chai", uri)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a touch callback after writing a watched source file")
	}
}

func TestWatcherIgnoresNonSourceFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	touched := make(chan string, 8)
	w, err := NewWatcher(dir, func(uri string) { touched <- uri })
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(path, []byte("hello again"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case uri := <-touched:
		t.Fatalf("unexpected touch for a non-source file: %q", uri)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopWaitsForLoopExit(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, func(uri string) {})
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	w.Stop()
}
