package thread

import (
	"ksync"
	"sync/atomic"
	"testing"
)

func TestSpawnRuns(t *testing.T) {
	var ran atomic.Bool
	done := make(chan struct{})
	Spawn(NewBuilder("t1", func() {
		ran.Store(true)
		close(done)
	}))

	for i := 0; i < 1000 && !ran.Load(); i++ {
		mgr.Schedule()
		select {
		case <-done:
		default:
		}
	}
	if !ran.Load() {
		t.Fatal("spawned thread never ran")
	}
}

func TestSemaphoreWakesBlockedThread(t *testing.T) {
	sem := ksync.MkSema(0)
	woke := make(chan struct{})
	Spawn(NewBuilder("waiter", func() {
		sem.Down()
		close(woke)
	}))

	for i := 0; i < 10; i++ {
		mgr.Schedule()
	}
	select {
	case <-woke:
		t.Fatal("waiter ran before Up")
	default:
	}

	sem.Up()
	for i := 0; i < 1000; i++ {
		mgr.Schedule()
		select {
		case <-woke:
			return
		default:
		}
	}
	t.Fatal("waiter never woke")
}

func TestSemaphoreWakeOrderIsFIFO(t *testing.T) {
	sem := ksync.MkSema(0)
	order := make(chan string, 2)

	Spawn(NewBuilder("first", func() {
		sem.Down()
		order <- "first"
	}))
	for i := 0; i < 10; i++ {
		mgr.Schedule()
	}
	Spawn(NewBuilder("second", func() {
		sem.Down()
		order <- "second"
	}))
	for i := 0; i < 10; i++ {
		mgr.Schedule()
	}

	sem.Up()
	sem.Up()

	got := make([]string, 0, 2)
	for i := 0; i < 1000 && len(got) < 2; i++ {
		mgr.Schedule()
		select {
		case s := <-order:
			got = append(got, s)
		default:
		}
	}

	if len(got) != 2 {
		t.Fatalf("not both waiters woke: %v", got)
	}
	if got[0] != "first" || got[1] != "second" {
		t.Fatalf("wake order was %v, want [first second]", got)
	}
}

func TestPriorityBoundsEnforced(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range priority")
		}
	}()
	NewBuilder("bad", func() {}).Priority(999)
}
