// Package worker exposes the public operations of spec.md §4.1, wiring
// together the content store, file-state store, name index, import
// resolver, compile pipeline, cache, refresh scheduler, and request queue
// built by the other packages in this module.
package worker

import (
	"context"
	"sync"

	"chaiworker/cache"
	"chaiworker/config"
	"chaiworker/content"
	"chaiworker/diag"
	"chaiworker/filestate"
	"chaiworker/imports"
	"chaiworker/names"
	"chaiworker/pipeline"
	"chaiworker/reqqueue"
	"chaiworker/refresh"
	"chaiworker/report"
	"chaiworker/wclock"
)

// Worker is the facade spec.md §4.1 describes. Its own state — the mutable
// library-path list — lives behind a single mutex (m), matching spec.md §5's "software transactional primitives ... no
// fine-grained locks"; everything else it wires together (content,
// filestate, names, reqqueue) already owns its own such primitive.
type Worker struct {
	Contents   *content.Store
	FileStates *filestate.Store
	Names      *names.Index
	Cache      *cache.ParseCache
	Driver     *pipeline.Driver
	Queue      *reqqueue.Queue
	Trigger    *refresh.Trigger
	Scheduler  *refresh.Scheduler
	Reporter   *report.Reporter
	Watcher    *config.Watcher

	m         sync.Mutex
	workspace *config.Workspace

	runCtx    context.Context
	runCancel context.CancelFunc
}

// Config bundles the construction-time parameters for New.
type Config struct {
	Frontend  pipeline.Frontend
	Builtins  pipeline.Signature
	Root      string
	ExtraLibs []string
	CacheSize int
	Publish   diag.Publisher
	LogLevel  int

	// WatchRoot, if non-empty, starts a config.Watcher rooted there
	// alongside the scheduler and dispatcher loops (spec.md §4.10),
	// treating any externally-modified source file directly in that
	// directory (subdirectories are not watched) the same as an
	// editor's touchFile notification. Left empty, no watcher is built.
	WatchRoot string
}

// New builds a fully wired Worker: it does not start the scheduler or
// dispatcher goroutines — call Start for that, so tests can drive RunPass
// synchronously without any background loop racing them.
func New(cfg Config) *Worker {
	rep := report.NewReporter(cfg.LogLevel)
	ws := config.LoadWorkspace(cfg.Root, cfg.ExtraLibs, rep)

	size := cfg.CacheSize
	if size <= 0 {
		size = 256
	}
	pc, err := cache.New(size)
	if err != nil {
		rep.ReportFatal("unable to construct parse cache: %s", err.Error())
		pc, _ = cache.New(1)
	}

	w := &Worker{
		Contents:   content.NewStore(),
		FileStates: filestate.NewStore(),
		Names:      names.NewIndex(),
		Cache:      pc,
		Trigger:    refresh.NewTrigger(),
		Reporter:   rep,
		workspace:  ws,
	}

	w.Queue = reqqueue.NewQueue(w.snapshot)

	w.Driver = &pipeline.Driver{
		Frontend:   cfg.Frontend,
		Contents:   w.Contents,
		FileStates: w.FileStates,
		Names:      w.Names,
		Cache:      w.Cache,
		Builtins:   cfg.Builtins,
		Publish:    cfg.Publish,
		Notify:     w.Queue.QueueRequests,
	}

	w.Scheduler = refresh.NewScheduler(w.Trigger, w.Driver.RunPass, w.libs, w.Contents.Clock)

	if cfg.WatchRoot != "" {
		watcher, err := config.NewWatcher(cfg.WatchRoot, w.TouchFile)
		if err != nil {
			rep.ReportFatal("unable to start file watcher on %s: %s", cfg.WatchRoot, err.Error())
		} else {
			w.Watcher = watcher
		}
	}

	return w
}

func (w *Worker) snapshot() reqqueue.Snapshot {
	return reqqueue.Snapshot{
		Clock:      w.Contents.Clock(),
		FileStates: w.FileStates,
		Contents:   w.Contents,
	}
}

func (w *Worker) libs() imports.PathSet {
	w.m.Lock()
	defer w.m.Unlock()
	return w.workspace.Paths
}

// Start launches the scheduler and dispatcher background loops. ctx governs
// both loops' lifetimes.
func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.runCancel = context.WithCancel(ctx)
	w.Scheduler.Start(w.runCtx)

	stop := make(chan struct{})
	go func() {
		<-w.runCtx.Done()
		close(stop)
	}()
	go w.Queue.Dispatch(stop)

	if w.Watcher != nil {
		w.Watcher.Start()
	}
}

// Stop halts both background loops, waiting for the scheduler's in-flight
// compile task (if any) to unwind, and stops the file watcher if one was
// started.
func (w *Worker) Stop() {
	if w.runCancel != nil {
		w.runCancel()
	}
	w.Scheduler.Stop()

	if w.Watcher != nil {
		w.Watcher.Stop()
	}
}

// UpdateFile implements spec.md §4.1's updateFile.
func (w *Worker) UpdateFile(uri string, version wclock.Version, text content.Rope) {
	w.Contents.UpdateFile(uri, version, text)
}

// TouchFile implements spec.md §4.1's touchFile.
func (w *Worker) TouchFile(uri string) {
	w.Contents.TouchFile(uri)
}

// CloseFile implements spec.md §4.1's closeFile. The corresponding
// FileState is not touched here: the next pass that visits uri demotes it
// from OpenedState to DiskState on its own (spec.md §3's lifecycle).
func (w *Worker) CloseFile(uri string) {
	w.Contents.CloseFile(uri)
}

// FindFile implements spec.md §4.1's findFile.
func (w *Worker) FindFile(name names.Name) (string, bool) {
	return w.Names.Lookup(name)
}

// Refresh implements spec.md §4.1's refresh: signal the scheduler, keeping
// the latest non-empty priority if one is already pending.
func (w *Worker) Refresh(priority string) {
	w.Trigger.Fire(priority)
}

// UpdateConfig implements spec.md §4.1's updateConfig: recompute the
// library-path list from newly supplied extra paths merged with the
// workspace file's own (spec.md §4.9).
func (w *Worker) UpdateConfig(extraLibs []string) {
	w.m.Lock()
	w.workspace.Merge(extraLibs)
	w.m.Unlock()
}

// StartRequest implements spec.md §4.1's startRequest.
func (w *Worker) StartRequest(req *reqqueue.Request) {
	w.Queue.StartRequest(req)
}

// CancelRequest implements spec.md §4.1's cancelRequest.
func (w *Worker) CancelRequest(id reqqueue.RequestID) {
	w.Queue.CancelRequest(id)
}
