package refresh

import (
	"context"
	"testing"
	"time"

	"chaiworker/imports"
	"chaiworker/wclock"
)

func TestTriggerTakeEmptiesTheCell(t *testing.T) {
	tr := NewTrigger()
	tr.Fire("file:///a.chai")

	if p := tr.take(); p != "file:///a.chai" {
		t.Fatalf("take() = %q, want %q", p, "file:///a.chai")
	}
	if p := tr.take(); p != "" {
		t.Fatalf("take() after an empty cell = %q, want \"\"", p)
	}
}

func TestTriggerLaterEmptyPriorityDoesNotEraseEarlier(t *testing.T) {
	tr := NewTrigger()
	tr.Fire("file:///a.chai")
	tr.Fire("")

	if p := tr.take(); p != "file:///a.chai" {
		t.Fatalf("take() = %q, want the earlier non-empty priority to survive", p)
	}
}

func TestTriggerLaterNonEmptyPriorityWins(t *testing.T) {
	tr := NewTrigger()
	tr.Fire("file:///a.chai")
	tr.Fire("file:///b.chai")

	if p := tr.take(); p != "file:///b.chai" {
		t.Fatalf("take() = %q, want the most recent non-empty priority", p)
	}
}

func TestSchedulerRunsPassOnTrigger(t *testing.T) {
	trigger := NewTrigger()
	ran := make(chan string, 1)
	s := NewScheduler(trigger,
		func(ctx context.Context, baseClock wclock.Clock, priority string, libs imports.PathSet) {
			ran <- priority
		},
		func() imports.PathSet { return imports.PathSet{} },
		func() wclock.Clock { return wclock.Clock(1) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	trigger.Fire("file:///a.chai")

	select {
	case got := <-ran:
		if got != "file:///a.chai" {
			t.Fatalf("priority = %q, want %q", got, "file:///a.chai")
		}
	case <-time.After(time.Second):
		t.Fatal("expected RunPass to fire after Trigger.Fire")
	}
}

func TestSchedulerKillsInFlightTaskOnNewTrigger(t *testing.T) {
	trigger := NewTrigger()
	started := make(chan struct{})
	cancelled := make(chan struct{}, 1)

	s := NewScheduler(trigger,
		func(ctx context.Context, baseClock wclock.Clock, priority string, libs imports.PathSet) {
			if priority == "first" {
				close(started)
				<-ctx.Done()
				cancelled <- struct{}{}
				return
			}
		},
		func() imports.PathSet { return imports.PathSet{} },
		func() wclock.Clock { return wclock.Clock(1) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	trigger.Fire("first")
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first task never started")
	}

	trigger.Fire("second")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("expected the first task's context to be cancelled once a new trigger fired")
	}
}

func TestSchedulerRecoversPanicAndKeepsRunning(t *testing.T) {
	trigger := NewTrigger()
	calls := make(chan string, 2)

	s := NewScheduler(trigger,
		func(ctx context.Context, baseClock wclock.Clock, priority string, libs imports.PathSet) {
			calls <- priority
			if priority == "boom" {
				panic("simulated invariant violation")
			}
		},
		func() imports.PathSet { return imports.PathSet{} },
		func() wclock.Clock { return wclock.Clock(1) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	trigger.Fire("boom")
	select {
	case p := <-calls:
		if p != "boom" {
			t.Fatalf("got %q", p)
		}
	case <-time.After(time.Second):
		t.Fatal("panicking task never ran")
	}

	trigger.Fire("after")
	select {
	case p := <-calls:
		if p != "after" {
			t.Fatalf("got %q, want the scheduler to keep running after a recovered panic", p)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not process a trigger after recovering a panic")
	}
}

func TestSchedulerStopWaitsForLoopExit(t *testing.T) {
	trigger := NewTrigger()
	s := NewScheduler(trigger,
		func(ctx context.Context, baseClock wclock.Clock, priority string, libs imports.PathSet) {},
		func() imports.PathSet { return imports.PathSet{} },
		func() wclock.Clock { return wclock.Clock(1) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()
}
