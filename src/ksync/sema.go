package ksync

// Sema is a counting semaphore with a FIFO waiter queue. Waiters are
// pushed to the front and popped from the back, so the first thread to
// block is the first one woken — this is the ordering §8's testable
// property on balanced Up/Down sequences depends on.
type Sema struct {
	intr    Intr
	count   int
	waiters []ThreadHandle
}

// MkSema constructs a semaphore with the given initial count.
func MkSema(count int) *Sema {
	return &Sema{count: count}
}

// Down blocks until the count is positive, then consumes one unit.
// Interrupts stay off for the whole push-wait-resume sequence:
// re-enabling them early would let an interrupt-context Up mark us
// Ready before setStatus(Blocked) has actually run, losing the wakeup.
// The prior interrupt state is saved and restored through Platform
// directly rather than through s.intr, since this thread stays parked
// inside Down while other threads call Up, and s.intr admits only one
// holder at a time.
func (s *Sema) Down() {
	prev := Platform.SetEnabled(false)
	for s.count == 0 {
		me := Sched.Current()
		s.waiters = append([]ThreadHandle{me}, s.waiters...)
		Sched.Block(me)
	}
	s.count--
	Platform.SetEnabled(prev)
}

// Up increments the count and, if anyone is waiting, wakes the
// longest-waiting thread.
func (s *Sema) Up() {
	s.intr.Acquire()
	s.count++
	if n := len(s.waiters); n > 0 {
		w := s.waiters[n-1]
		s.waiters = s.waiters[:n-1]
		Sched.WakeOne(w)
	}
	s.intr.Release()
}

// TryDown attempts to consume a unit without blocking. Reports whether
// it succeeded.
func (s *Sema) TryDown() bool {
	s.intr.Acquire()
	defer s.intr.Release()
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}
