package ksync

import "sync/atomic"

// Spin is a single atomic-boolean spin lock. It asserts that interrupts
// are enabled while busy-waiting, since a spin lock held with
// interrupts off on a single hart would deadlock the timer that is
// supposed to eventually hand the lock to someone else. Only suitable
// for very short critical sections where blocking is forbidden.
type Spin struct {
	held atomic.Bool
}

func (l *Spin) Acquire() {
	for !l.held.CompareAndSwap(false, true) {
		if !Platform.Enabled() {
			panic("Spin: busy-wait with interrupts off")
		}
	}
}

func (l *Spin) Release() {
	if !l.held.CompareAndSwap(true, false) {
		panic("Spin: release without acquire")
	}
}
