package thread

import "ksync"

// switchCtx and threadTrampolineAddr are declared in switch_riscv64.go
// (assembly-backed) and switch_generic.go (goroutine-per-thread
// simulation for host-architecture tests). Their contract: switchCtx
// saves the calling thread's (from's) register context, loads to's,
// and does not return to its caller until some later switchCtx call
// switches back to from. Every switch, including the very first into
// a brand new thread, runs scheduleTailWrapper(from) before the
// incoming thread resumes whatever it was doing (or, for a new
// thread, before its trampoline runs the entry closure for the first
// time). threadTrampolineAddr returns the PC a brand new thread's
// context is primed to resume at: a stub that moves s0 (the Thread
// pointer Builder.Build stashed there) into a0 and tail calls
// threadEntryShim.

// threadEntryShim is reached the first and only time a thread runs.
// It enables interrupts before handing off to the
// thread's closure, and tears the thread down when the closure
// returns.
func threadEntryShim(t *Thread) {
	ksync.Platform.SetEnabled(true)
	t.entry()
	Exit()
}
