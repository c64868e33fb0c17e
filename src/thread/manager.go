package thread

import (
	"config"
	"ksync"
	"sync"
)

// Manager owns the one thread that is Running, the policy that picks
// the next one, and the roster of every thread that has ever been
// registered. There is exactly one Manager; init wires it in as
// ksync.Sched so the sync primitives in package ksync can block and
// wake threads without importing this package.
//
// mu protects current/all/sched and is held only for the bookkeeping
// around a switch, never across switchCtx itself: on real hardware a
// switch is a single uninterruptible flow of control and there is
// nothing else to race with, but the goroutine-per-thread simulation
// switch_generic.go uses to stand in for that on non-riscv64 builds
// genuinely runs multiple goroutines, so the lock has to be scoped to
// the part that touches shared state rather than the whole handoff.
type Manager struct {
	mu      sync.Mutex
	sched   Scheduler
	current *Thread
	idle    *Thread
	all     []*Thread
}

var mgr *Manager

func init() {
	mgr = &Manager{sched: NewFcfs()}
	idle := NewBuilder("idle", func() {
		for {
			mgr.Schedule()
		}
	}).Priority(config.PriMin).Build()
	idle.setStatus(Running)
	mgr.idle = idle
	mgr.current = idle
	mgr.all = append(mgr.all, idle)
	ksync.Sched = mgr
}

// Current satisfies ksync.Scheduler.
func (m *Manager) Current() ksync.ThreadHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Block satisfies ksync.Scheduler: the calling thread (which must be
// the current one) marks itself Blocked and yields.
func (m *Manager) Block(h ksync.ThreadHandle) {
	t := h.(*Thread)
	m.mu.Lock()
	if t != m.current {
		m.mu.Unlock()
		panic("thread: Block called on a thread that is not current")
	}
	t.setStatus(Blocked)
	m.mu.Unlock()
	m.Schedule()
}

// WakeOne satisfies ksync.Scheduler: a Blocked thread becomes Ready
// again and is handed back to the policy.
func (m *Manager) WakeOne(h ksync.ThreadHandle) {
	t := h.(*Thread)
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Status() != Blocked {
		return
	}
	t.setStatus(Ready)
	m.sched.Register(t)
}

// Register adds a freshly built thread to the roster and makes it
// eligible to run.
func (m *Manager) Register(t *Thread) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.all = append(m.all, t)
	m.sched.Register(t)
}

// Schedule gives up the hart: if the current thread is still Running
// it is re-registered as Ready first, then the policy's next pick (or
// idle, if it has none) becomes current. Schedule only returns to its
// caller once that caller's thread is chosen again.
func (m *Manager) Schedule() {
	m.mu.Lock()
	prev := m.current
	if prev.Status() == Running {
		prev.setStatus(Ready)
		m.sched.Register(prev)
	}
	next := m.sched.Schedule()
	if next == nil {
		next = m.idle
	}
	next.setStatus(Running)
	m.current = next
	m.mu.Unlock()

	now := prev.Accnt.Now()
	if prev.scheduled != 0 {
		prev.Accnt.Systadd(now - int(prev.scheduled))
	}
	next.scheduled = int64(now)

	if next != prev {
		switchCtx(prev, next)
	}
}

// scheduleTailWrapper runs on the incoming thread's stack immediately
// after every switch, before that thread resumes wherever it left off
// (or, for a brand new thread, before the trampoline runs its entry
// closure for the first time). On real hardware every switch happens
// with interrupts disabled by construction, since switching is not
// itself an interruptible operation; it reaps a Dying outgoing
// thread's stack and checks the incoming thread's stack-overflow
// guard word.
func scheduleTailWrapper(prev *Thread) {
	if prev.Status() == Dying {
		if prev.UserTable != nil {
			prev.UserTable.Destroy()
			prev.UserTable = nil
		}
		prev.stack.free()
	}
	mgr.mu.Lock()
	cur := mgr.current
	mgr.mu.Unlock()
	cur.stack.checkMagic()
	if cur.UserTable != nil {
		cur.UserTable.Activate()
	}
}

// exit marks the calling thread Dying and schedules away from it for
// the last time; it never returns.
func (m *Manager) exit() {
	m.mu.Lock()
	m.current.setStatus(Dying)
	m.mu.Unlock()
	m.Schedule()
	panic("thread: exited thread resumed")
}

func Exit() { mgr.exit() }

func Schedule() { mgr.Schedule() }

func Spawn(b *Builder) *Thread {
	t := b.Build()
	mgr.Register(t)
	return t
}
