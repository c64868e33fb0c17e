package ksync

// Sleep is a binary semaphore with a recorded holder. Acquire blocks
// until available, then records the calling thread; Release asserts
// the releaser is the thread that holds it.
type Sleep struct {
	sema   Sema
	holder ThreadHandle
}

// MkSleepLock constructs an unheld sleep lock.
func MkSleepLock() *Sleep {
	return &Sleep{sema: Sema{count: 1}}
}

func (l *Sleep) Acquire() {
	l.sema.Down()
	l.holder = Sched.Current()
}

func (l *Sleep) Release() {
	if l.holder != Sched.Current() {
		panic("Sleep: release by non-holder")
	}
	l.holder = nil
	l.sema.Up()
}
