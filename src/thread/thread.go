package thread

import (
	"accnt"
	"config"
	"sync/atomic"
	"vm"
)

// Status is where a thread sits in its lifecycle. At most one thread is
// Running at any instant on this single-hart kernel.
type Status int

const (
	Ready Status = iota
	Running
	Blocked
	Dying
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Blocked:
		return "Blocked"
	case Dying:
		return "Dying"
	default:
		return "?"
	}
}

var nextID uint64

// Thread is one preemptible kernel thread of control.
type Thread struct {
	// ctx must stay the first field: switch_riscv64.s addresses the
	// saved registers at fixed offsets from the Thread pointer itself.
	ctx    Context
	ID     uint64
	Name   string
	stack  *Stack
	status atomic.Int32
	pri    atomic.Int32

	// UserTable is the thread's own address space, present only for
	// threads that host a user process. Nil means "run with the
	// kernel table", which scheduleTailWrapper checks for on every
	// switch-in.
	UserTable *vm.PageTable

	// Owner is an opaque handle a caller stashes on a thread it spawned
	// to host a user process (the proc package's *Process, concretely).
	// Kept as interface{} here to avoid thread importing proc.
	Owner interface{}

	// Accnt tracks the wall time this thread has spent scheduled in,
	// all of it charged to system time: this kernel does not yet
	// split a switch-in span between U-mode and S-mode execution.
	Accnt     accnt.Accnt_t
	scheduled int64

	entry func()

	// rt backs switchCtx's goroutine-based simulation on build
	// targets other than riscv64 (see switch_generic.go). It is
	// unused, and never allocated, on the real target.
	rt *goRuntime
}

func (t *Thread) Status() Status    { return Status(t.status.Load()) }
func (t *Thread) setStatus(s Status) { t.status.Store(int32(s)) }

func (t *Thread) Priority() int     { return int(t.pri.Load()) }
func (t *Thread) SetPriority(p int) { t.pri.Store(int32(p)) }

// Builder constructs a Thread step by step: a small value-returning
// constructor rather than one large option struct.
type Builder struct {
	name  string
	pri   int
	fn    func()
	table *vm.PageTable
	owner interface{}
}

func NewBuilder(name string, fn func()) *Builder {
	return &Builder{name: name, pri: config.PriDefault, fn: fn}
}

func (b *Builder) Priority(p int) *Builder {
	if p < config.PriMin || p > config.PriMax {
		panic("thread: priority out of range")
	}
	b.pri = p
	return b
}

// Pagetable attaches a user address space the new thread will activate
// on every switch-in and that Manager will tear down when it dies.
func (b *Builder) Pagetable(t *vm.PageTable) *Builder {
	b.table = t
	return b
}

// Owner attaches an opaque caller-supplied handle (the proc package's
// *Process) the new thread carries for its whole lifetime.
func (b *Builder) Owner(o interface{}) *Builder {
	b.owner = o
	return b
}

// Build allocates the thread's stack and context. The new thread does
// not run until it is registered with the Manager.
func (b *Builder) Build() *Thread {
	t := &Thread{
		ID:        atomic.AddUint64(&nextID, 1),
		Name:      b.name,
		stack:     newStack(),
		entry:     b.fn,
		UserTable: b.table,
		Owner:     b.owner,
	}
	t.setStatus(Ready)
	t.SetPriority(b.pri)

	// The context is primed so switching into this thread for the
	// first time lands at threadTrampolineStub with s0 holding the
	// Thread pointer; threadTrampolineStub moves s0 into a0 and tail
	// calls threadEntryShim, which recovers the closure and runs it
	// with interrupts enabled.
	t.ctx.Sp = uint64(t.stack.top)
	t.ctx.Ra = uint64(threadTrampolineAddr())
	t.ctx.S0 = uint64(ptrToUint(t))
	return t
}
