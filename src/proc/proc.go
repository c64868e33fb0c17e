// Package proc is the thin seam between a loaded ELF object and the
// thread that runs it: build a user address space, install its
// segments, forge a trap frame pointing at its entry point, and hand
// both to a new kernel thread. Everything past the initial jump into
// U-mode -- syscalls, process exit codes, signals -- belongs to a
// userland this kernel does not ship, so Process stays deliberately
// thin.
package proc

import (
	"defs"
	"fs"
	"klog"
	"thread"
	"trap"
	"vm"
)

// init wires the process layer into trap's kill seam: a U-mode fault
// on a bad pointer brings down only the thread that caused it, not
// the kernel. thread.Exit never returns, matching the seam's contract.
func init() {
	trap.KillFaultingThread = func(addr uint64) {
		klog.Debugf(klog.Trap, "killing faulting thread at addr=%#x", addr)
		thread.Exit()
	}
}

// Process is the handle a thread.Thread.Owner holds for a thread that
// hosts user code, mirroring userproc.rs's UserProc.
type Process struct {
	bin *fs.Inode
}

// Exec loads bin as an ELF executable into a fresh copy of the kernel
// page table and spawns a thread to run it. It returns the new
// thread's id, or an error if bin could not be parsed as this
// kernel's expected ELF flavor.
func Exec(bin *fs.Inode) (uint64, defs.Err_t) {
	pt := vm.CloneKernel()

	info, err := loadELF(bin, pt)
	if err != defs.EOK {
		pt.Destroy()
		return 0, err
	}

	bin.DenyWrite()
	proc := &Process{bin: bin}

	var frame trap.Frame
	frame.Sepc = info.entryPoint
	frame.X[2] = info.initSP

	t := thread.Spawn(thread.NewBuilder("user", func() {
		start(frame)
	}).Pagetable(&pt).Owner(proc))

	return t.ID, defs.EOK
}

// start runs once, on a freshly spawned thread: mark the forged frame
// as returning to U-mode and jump straight to the trap-exit path, the
// same trampoline a real trap uses to resume a thread it interrupted.
// It never returns.
func start(frame trap.Frame) {
	frame.Sstatus = frame.Sstatus &^ (1 << 8) // SPP = User
	trap.InstallUserVector()
	trap.ExitU(&frame)
	panic("proc: ExitU returned")
}
