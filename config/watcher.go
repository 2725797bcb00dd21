package config

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"chaiworker/common"
)

// Watcher observes one directory (not its subdirectories) for changes to
// source files, so an externally-modified disk dependency (spec.md §4.10)
// gets the same touchFile treatment as an editor notification would give
// it. Every changed source file in the directory is reported, open ones
// included. Debounced the way the teacher's nebula
// watcher is, since editors and build tools alike tend to fire several
// filesystem events per logical save.
type Watcher struct {
	Touch func(uri string)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a Watcher rooted at dir. It does not start watching
// until Start is called.
func NewWatcher(dir string, touch func(uri string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		Touch:   touch,
		watcher: fw,
		done:    make(chan struct{}),
	}, nil
}

// Start begins the watch loop in its own goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop closes the underlying fsnotify watcher and waits for the loop to
// exit.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	const debounce = 100 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for name := range pending {
					w.emit(name)
				}
				return
			}

			if !isSourceFile(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) >= debounce {
					w.emit(name)
					delete(pending, name)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal: a watch error on one path doesn't invalidate the rest.
		}
	}
}

func (w *Watcher) emit(path string) {
	if w.Touch != nil {
		w.Touch(common.NormalizeURI("file://" + path))
	}
}

func isSourceFile(name string) bool {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i:] == common.SrcFileExt
		}
		if name[i] == '/' || name[i] == '\\' {
			return false
		}
	}
	return false
}
