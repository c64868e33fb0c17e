package ksync

// Condvar owns a queue of one-shot semaphores, one handed out per
// waiter. Coalescing these into a single shared semaphore would make
// it impossible to wake exactly one specific waiter, so each Wait call
// gets its own.
type Condvar struct {
	intr    Intr
	waiters []*Sema
}

// Wait atomically releases guard's lock, blocks until notified, then
// reacquires the lock before returning. The mutex must be held by the
// caller on entry, exactly as with the standard pthread discipline.
func Wait[T any, L Lock](c *Condvar, g Guard[T, L]) {
	c.intr.Acquire()
	my := MkSema(0)
	c.waiters = append(c.waiters, my)
	c.intr.Release()

	g.release()
	my.Down()
	g.acquire()
}

// NotifyOne wakes the longest-waiting thread, if any. Caller must hold
// the associated mutex.
func (c *Condvar) NotifyOne() {
	c.intr.Acquire()
	if len(c.waiters) > 0 {
		w := c.waiters[0]
		c.waiters = c.waiters[1:]
		c.intr.Release()
		w.Up()
		return
	}
	c.intr.Release()
}

// NotifyAll wakes every waiting thread. Caller must hold the associated
// mutex.
func (c *Condvar) NotifyAll() {
	c.intr.Acquire()
	ws := c.waiters
	c.waiters = nil
	c.intr.Release()
	for _, w := range ws {
		w.Up()
	}
}
