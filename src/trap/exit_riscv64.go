//go:build riscv64

package trap

// ExitU loads f onto the stack in place of a trapEntryU-built frame and
// replays that trampoline's restore half, finishing in SRET. It never
// returns. The proc package's start uses this to launch a brand-new process: the
// frame it builds was never saved by an actual trap, but the restore
// code does not know or care -- it only reads back what Frame holds.
func ExitU(f *Frame)
