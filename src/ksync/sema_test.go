package ksync

import "testing"

func TestSemaTryDownWithoutUnits(t *testing.T) {
	s := MkSema(0)
	if s.TryDown() {
		t.Fatalf("TryDown succeeded on an empty semaphore")
	}
}

func TestSemaUpThenTryDown(t *testing.T) {
	s := MkSema(0)
	s.Up()
	if !s.TryDown() {
		t.Fatalf("TryDown failed after Up")
	}
	if s.TryDown() {
		t.Fatalf("TryDown succeeded twice for a single Up")
	}
}

func TestSemaInitialCount(t *testing.T) {
	s := MkSema(3)
	for i := 0; i < 3; i++ {
		if !s.TryDown() {
			t.Fatalf("TryDown %d failed on a semaphore initialized to 3", i)
		}
	}
	if s.TryDown() {
		t.Fatalf("TryDown succeeded after draining the initial count")
	}
}

func TestIntrNestedAcquirePanics(t *testing.T) {
	savedPlatform := Platform
	Platform = &fakePlatform{enabled: true}
	defer func() { Platform = savedPlatform }()

	var l Intr
	l.Acquire()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on nested Intr.Acquire")
		}
	}()
	l.Acquire()
}

func TestIntrRestoresPriorEnabledState(t *testing.T) {
	savedPlatform := Platform
	fp := &fakePlatform{enabled: false}
	Platform = fp
	defer func() { Platform = savedPlatform }()

	var l Intr
	l.Acquire()
	if fp.enabled {
		t.Fatalf("Acquire did not disable interrupts")
	}
	l.Release()
	if fp.enabled {
		t.Fatalf("Release restored the wrong prior state: interrupts were off before Acquire")
	}
}

func TestSpinReleaseWithoutAcquirePanics(t *testing.T) {
	savedPlatform := Platform
	Platform = &fakePlatform{enabled: true}
	defer func() { Platform = savedPlatform }()

	var l Spin
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on Release without Acquire")
		}
	}()
	l.Release()
}

type fakePlatform struct {
	enabled bool
}

func (p *fakePlatform) Enabled() bool { return p.enabled }

func (p *fakePlatform) SetEnabled(v bool) bool {
	prev := p.enabled
	p.enabled = v
	return prev
}
