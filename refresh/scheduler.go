// Package refresh runs the scheduler thread described in spec.md §4.3: a
// trigger cell, and a single compile task running at a time that is
// killed-and-restarted rather than queued whenever a new trigger fires.
package refresh

import (
	"context"
	"sync"

	"chaiworker/imports"
	"chaiworker/report"
	"chaiworker/wclock"
)

// Trigger is the "needs-refresh" cell: atomically takeable, coalescing
// bursts of edits into the single latest priority URI (spec.md §4.3
// "only the latest priority survives").
type Trigger struct {
	m        sync.Mutex
	pending  bool
	priority string
	signal   chan struct{}
}

// NewTrigger creates an empty Trigger.
func NewTrigger() *Trigger {
	return &Trigger{signal: make(chan struct{}, 1)}
}

// Fire marks the cell non-empty, recording priority if non-empty — a
// later Fire with an empty priority does not erase an earlier non-empty one
// (spec.md §4.1 "refresh": "If a prior priority is pending, keep the latest
// non-null priority").
func (t *Trigger) Fire(priority string) {
	t.m.Lock()
	t.pending = true
	if priority != "" {
		t.priority = priority
	}
	t.m.Unlock()

	select {
	case t.signal <- struct{}{}:
	default:
	}
}

// take atomically empties the cell and returns the priority URI that had
// accumulated, if any.
func (t *Trigger) take() string {
	t.m.Lock()
	defer t.m.Unlock()
	t.pending = false
	p := t.priority
	t.priority = ""
	return p
}

// RunPassFunc is the compile-pass entry point the scheduler drives — bound
// to a *pipeline.Driver by the worker facade. Taking a closure here, rather
// than a *pipeline.Driver directly, keeps this package from depending on
// pipeline, filestate, content, or names at all.
type RunPassFunc func(ctx context.Context, baseClock wclock.Clock, priority string, libs imports.PathSet)

// LibsFunc supplies the current library-path search order at the moment a
// pass starts, so a config change between triggers is picked up without the
// scheduler needing to know about config.Workspace.
type LibsFunc func() imports.PathSet

// ClockFunc reads the current world clock at the moment a pass starts.
type ClockFunc func() wclock.Clock

// Scheduler is the long-lived goroutine loop of spec.md §4.3. Exactly one
// compile task runs at a time; a new trigger kills the previous task's
// context before starting the next (spec.md §4.3 step 2, §9 "kill-and-
// restart compile loop").
type Scheduler struct {
	Trigger *Trigger
	RunPass RunPassFunc
	Libs    LibsFunc
	Clock   ClockFunc

	m      sync.Mutex
	cancel context.CancelFunc
	stop   context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a Scheduler wired to the given callbacks. Panics
// during a compile task are reported through the package-level reporter
// installed by report.InitReporter, not through a reporter owned by the
// scheduler itself.
func NewScheduler(trigger *Trigger, runPass RunPassFunc, libs LibsFunc, clock ClockFunc) *Scheduler {
	return &Scheduler{Trigger: trigger, RunPass: runPass, Libs: libs, Clock: clock}
}

// Start launches the scheduler loop in its own goroutine. ctx governs the
// scheduler's own lifetime (cancelling it, or calling Stop, also cancels the
// in-flight task and stops the loop once that task has returned); it is not
// the per-task context, which the scheduler derives fresh on every trigger.
func (s *Scheduler) Start(ctx context.Context) {
	s.done = make(chan struct{})
	ctx, s.stop = context.WithCancel(ctx)
	go s.loop(ctx)
}

// Stop cancels any in-flight compile task and waits for the loop goroutine
// to exit.
func (s *Scheduler) Stop() {
	s.m.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.stop != nil {
		s.stop()
	}
	s.m.Unlock()

	if s.done != nil {
		<-s.done
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Trigger.signal:
		}

		priority := s.Trigger.take()
		if s.runUntilQuiescent(ctx, priority) {
			return
		}
	}
}

// runUntilQuiescent runs compile passes for priority, restarting from
// scratch at the latest accumulated priority any time a new trigger fires
// before the in-flight pass finishes (spec.md §4.3 step 2: "a new trigger
// kills the previous task's context before starting the next"). It returns
// true once the scheduler's own context is done, signalling loop to stop.
func (s *Scheduler) runUntilQuiescent(ctx context.Context, priority string) bool {
	for {
		baseClock := s.Clock()

		taskCtx, cancel := context.WithCancel(ctx)
		s.m.Lock()
		s.cancel = cancel
		s.m.Unlock()

		taskDone := make(chan struct{})
		go func() {
			defer close(taskDone)
			s.runOne(taskCtx, baseClock, priority)
		}()

		select {
		case <-taskDone:
			cancel()
			return ctx.Err() != nil
		case <-s.Trigger.signal:
			cancel()
			<-taskDone
			priority = s.Trigger.take()
		case <-ctx.Done():
			cancel()
			<-taskDone
			return true
		}
	}
}

// runOne executes a single compile task, recovering a panic the way
// spec.md §9 requires ("internal invariant violations panic the compile
// task; the refresh loop catches abort and restarts on the next trigger").
func (s *Scheduler) runOne(ctx context.Context, baseClock wclock.Clock, priority string) {
	defer report.RecoverPass()

	libs := imports.PathSet{}
	if s.Libs != nil {
		libs = s.Libs()
	}

	s.RunPass(ctx, baseClock, priority, libs)
}
