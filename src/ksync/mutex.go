package ksync

// Mutex is a data-holding wrapper parameterized by which Lock flavor
// guards the payload. The page and heap allocators (Palloc, UserPool,
// Heap) wrap their state in a Mutex over *Intr; the filesystem's free
// map uses *Sleep. The thread scheduler's own state is not in a Mutex:
// it is guarded by a plain sync.Mutex inside thread.Manager.
type Mutex[T any, L Lock] struct {
	lock  L
	value T
}

// NewMutex pairs v with an already-constructed lock. L is instantiated
// as a pointer type (*Intr, *Spin, *Sleep) since Acquire/Release have
// pointer receivers, so the caller must build the lock itself rather
// than rely on a zero value: a nil *Intr would panic the first time
// Acquire dereferenced it.
func NewMutex[T any, L Lock](lock L, v T) *Mutex[T, L] {
	return &Mutex[T, L]{lock: lock, value: v}
}

// Guard is a held lock plus access to the protected value. Callers must
// call Unlock exactly once, typically via defer.
type Guard[T any, L Lock] struct {
	m *Mutex[T, L]
}

// Lock acquires the mutex and returns a guard granting access to the
// protected value.
func (m *Mutex[T, L]) Lock() Guard[T, L] {
	m.lock.Acquire()
	return Guard[T, L]{m: m}
}

// Get returns a pointer to the protected value. Valid only while the
// guard is held.
func (g Guard[T, L]) Get() *T {
	return &g.m.value
}

// Unlock releases the mutex.
func (g Guard[T, L]) Unlock() {
	g.m.lock.Release()
}

// acquire/release are exposed only for Condvar.Wait, which must
// atomically drop the mutex around a semaphore wait and retake it
// before returning.
func (g Guard[T, L]) acquire() { g.m.lock.Acquire() }
func (g Guard[T, L]) release() { g.m.lock.Release() }
