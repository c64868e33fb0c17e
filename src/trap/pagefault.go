package trap

import (
	"klog"
	"vm"
)

// handlePageFault is reached for load/store/instruction page faults.
// A fault taken while the kernel was inside one of vm's user-pointer
// helpers is not a bug: it is how CopyIn/CopyOut/ReadUserByte/
// WriteUserByte learn that the user address they were handed does not
// map to anything. Redirecting sepc to the helper's exit label and
// setting a1 (x[11]) to a nonzero status makes the helper return an
// error to its caller instead of the kernel dying here. Any other
// supervisor-mode fault is a genuine kernel bug.
func handlePageFault(f *Frame, addr uint64) {
	klog.Debugf(klog.Trap, "page fault at pc=%#x addr=%#x", f.Sepc, addr)

	switch f.Sepc {
	case uint64(vm.KnrlReadUsrByteLabel):
		f.X[11] = 1
		f.Sepc = uint64(vm.KnrlReadUsrExitLabel)
		return
	case uint64(vm.KnrlWriteUsrByteLabel):
		f.X[11] = 1
		f.Sepc = uint64(vm.KnrlWriteUsrExitLabel)
		return
	}

	if wasUserMode(f) {
		KillFaultingThread(addr)
		return
	}

	panic("trap: unrecovered page fault in supervisor mode")
}

// wasUserMode reports whether the trapped context was executing in
// U-mode, from the SPP bit of sstatus saved in the frame.
func wasUserMode(f *Frame) bool {
	const sppBit = 1 << 8
	return f.Sstatus&sppBit == 0
}

// KillFaultingThread is the seam a user-process supervisor hooks to
// tear down a thread that faulted on its own bad pointer; proc.init
// installs the real implementation once this kernel's process layer
// is linked in. The default just panics loudly rather than silently
// continuing, in case something calls it before that init has run.
var KillFaultingThread = func(addr uint64) {
	panic("trap: user-mode fault with no process layer installed")
}
