package trap

import (
	"device"
	"klog"

	"golang.org/x/arch/riscv64/riscv64asm"
)

// Handle is the single dispatch point frameHandle calls once either
// trampoline in entry_riscv64.s has built a Frame on the current
// stack. scause/stval come straight from the CSRs; everything else a
// handler needs lives in f.
func Handle(f *Frame, scause, stval uint64) {
	cause := Cause(scause)

	if cause.IsInterrupt() {
		switch cause {
		case CauseSupervisorTimer:
			handleTimer(f)
		case CauseSupervisorExternal:
			handleExternal(f)
		default:
			klog.Fatalf("trap: unhandled interrupt cause %#x", scause)
		}
		return
	}

	switch cause {
	case CauseUserEnvCall:
		handleSyscall(f)
	case CauseLoadPageFault, CauseStorePageFault, CauseInstructionPageFault:
		handlePageFault(f, stval)
	case CauseInstructionFault, CauseIllegalInstruction:
		dumpFault(f)
		if wasUserMode(f) {
			KillFaultingThread(f.Sepc)
			return
		}
		klog.Fatalf("trap: illegal instruction at pc=%#x", f.Sepc)
	default:
		dumpFault(f)
		klog.Fatalf("trap: unhandled exception cause %#x", scause)
	}
}

// handleSyscall is the seam a user-process supervisor hooks to service
// ecalls from U-mode; this kernel carries no syscall table of its own.
var handleSyscall = func(f *Frame) {
	panic("trap: user ecall with no syscall table installed")
}

func handleTimer(f *Frame) {
	klog.Debugf(klog.Trap, "timer tick at pc=%#x", f.Sepc)
	TimerTick()
}

// TimerTick is called on every timer interrupt. It is a no-op by
// default; cmd/kernel's Boot sets it to thread.Schedule.
var TimerTick = func() {}

func handleExternal(f *Frame) {
	id := device.Claim()
	if id == 0 {
		return
	}
	if id == device.Virtio0ID {
		VirtioInterrupt()
	} else {
		klog.Debugf(klog.Trap, "external interrupt for unknown source %d", id)
	}
	device.Complete(id)
}

// VirtioInterrupt is the seam the virtio package installs its
// completion-semaphore Up on.
var VirtioInterrupt = func() {}

// dumpFault disassembles the one instruction at sepc so an
// unexpected fault's log line says what actually ran, not just the
// address it happened at.
func dumpFault(f *Frame) {
	code := instructionBytesAt(f.Sepc)
	if code == nil {
		return
	}
	inst, err := riscv64asm.Decode(code)
	if err != nil {
		klog.Debugf(klog.Trap, "could not decode instruction at %#x: %v", f.Sepc, err)
		return
	}
	klog.Debugf(klog.Trap, "faulting instruction: %s", inst.String())
}

// instructionBytesAt is overridden on riscv64 to read real memory at
// pc; the generic build has no executable kernel image to read from.
var instructionBytesAt = func(pc uint64) []byte { return nil }
