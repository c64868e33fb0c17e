package ksync

// Once runs its function exactly once across however many threads
// observe it, blocking later callers until the first completes. Used
// for the global allocator, VirtIO, and file-system singletons, which
// are "first access initializes, never torn down until system reset".
type Once[T any] struct {
	intr  Intr
	value T
	done  bool
}

// Init returns the cached value, computing it with f on the first call.
// Concurrent callers during the first call block until it finishes.
func (o *Once[T]) Init(f func() T) T {
	o.intr.Acquire()
	defer o.intr.Release()
	if !o.done {
		o.value = f()
		o.done = true
	}
	return o.value
}

// Get returns the cached value. Panics if Init has not run yet.
func (o *Once[T]) Get() T {
	o.intr.Acquire()
	defer o.intr.Release()
	if !o.done {
		panic("Once: Get before Init")
	}
	return o.value
}

// Lazy is Once specialized for the common "construct on first use"
// pattern, where the constructor takes no arguments and is provided at
// declaration time.
type Lazy[T any] struct {
	once Once[T]
	new  func() T
}

// NewLazy wraps a constructor for later one-time evaluation.
func NewLazy[T any](ctor func() T) *Lazy[T] {
	return &Lazy[T]{new: ctor}
}

// Get returns the value, constructing it on the first call.
func (l *Lazy[T]) Get() T {
	return l.once.Init(l.new)
}
