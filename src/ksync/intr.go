package ksync

// Intr is the interrupt-off lock. Acquire disables interrupts and
// remembers whether they were already off; Release restores the saved
// state rather than unconditionally re-enabling, so nested
// acquire/release pairs on the same kernel thread compose correctly.
//
// Used wherever a critical section must not be preempted: scheduler
// internals, semaphore counters, per-hart bookkeeping.
type Intr struct {
	saved bool
	held  bool
}

func (l *Intr) Acquire() {
	prev := Platform.SetEnabled(false)
	if l.held {
		panic("Intr: reacquired while held")
	}
	l.saved = prev
	l.held = true
}

func (l *Intr) Release() {
	if !l.held {
		panic("Intr: release without acquire")
	}
	l.held = false
	Platform.SetEnabled(l.saved)
}
