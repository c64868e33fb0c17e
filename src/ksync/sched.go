package ksync

// ThreadHandle is an opaque reference to a kernel thread, as seen from
// this package. The thread package supplies the concrete type; ksync
// never looks inside it.
type ThreadHandle interface{}

// Scheduler is the seam between the blocking primitives in this package
// (Sema, Sleep, Condvar) and the thread manager. It is deliberately
// narrow: enough to push a thread onto a waiter queue and hand control
// back to it later. The thread package installs the concrete
// implementation in Sched during its own package init, avoiding an
// import cycle between ksync and thread (thread's Mutex/Condvar usage
// is built on ksync, so ksync cannot import thread directly).
type Scheduler interface {
	// Current returns the handle of the presently running thread.
	Current() ThreadHandle
	// Block marks h Blocked and switches away from it. Must be called
	// with interrupts off; returns after h has been rescheduled Ready
	// and chosen to run again.
	Block(h ThreadHandle)
	// WakeOne marks h Ready and registers it with the scheduler. Safe
	// to call from an interrupt handler.
	WakeOne(h ThreadHandle)
}

// Sched is the process-wide scheduler seam. It is nil until the thread
// package's init() runs; package-level tests that exercise Sema/Sleep
// directly install a fake.
var Sched Scheduler
