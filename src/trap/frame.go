// Package trap dispatches supervisor-mode traps: syscalls, the timer,
// the external-interrupt line PLIC claims land on, and the page faults
// vm's user-pointer helpers escape out of instead of crashing the
// kernel. Entry and exit for both the kernel's own traps and traps
// taken from U-mode are small assembly trampolines that save and
// restore a Frame on the current stack.
package trap

// Frame is the trap entry trampoline's save area: the 31 general
// registers other than x0, plus the two CSRs a handler needs to make a
// decision or resume execution. Field order matches the store/load
// sequence in entry_riscv64.s.
type Frame struct {
	X       [32]uint64 // x[0] unused, x[1]=ra ... x[31]=t6
	Sstatus uint64
	Sepc    uint64
}

// Cause enumerates the scause values this kernel knows how to handle.
// Anything else panics: there is no recovery path for a trap this
// kernel was not built to expect.
type Cause uint64

const (
	CauseUserEnvCall        Cause = 8
	CauseInstructionFault   Cause = 1
	CauseIllegalInstruction Cause = 2
	CauseLoadPageFault      Cause = 13
	CauseStorePageFault     Cause = 15
	CauseInstructionPageFault Cause = 12

	// Interrupt causes have the top bit of scause set; Go has no
	// 64-bit unsigned literal shift shorthand here so it is spelled
	// out rather than computed.
	interruptBit            Cause = 1 << 63
	CauseSupervisorTimer    Cause = interruptBit | 5
	CauseSupervisorExternal Cause = interruptBit | 9
)

func (c Cause) IsInterrupt() bool { return c&interruptBit != 0 }
func (c Cause) Code() Cause       { return c &^ interruptBit }
