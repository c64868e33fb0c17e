//go:build riscv64

package trap

// trapEntryK is installed as stvec while running kernel code: it has
// no user sscratch to swap with, so it only needs to save the 31
// general registers plus sepc/sstatus before calling Handle and
// restore them on the way out. trapEntryU is installed as stvec right
// before entering U-mode: it swaps sscratch (which holds the kernel
// stack pointer while in U-mode) in on entry and back out on exit.
// Both live in entry_riscv64.s.
func trapEntryK()
func trapEntryU()

// InstallKernelVector and InstallUserVector point stvec at the
// corresponding trampoline; called once at boot and once per switch
// into/out of a user thread, respectively.
func InstallKernelVector()
func InstallUserVector()

func readScause() uint64
func readStval() uint64

// frameHandle is what both trampolines call once the Frame is built on
// the stack; it reads the two CSRs Handle needs and are not already
// part of the saved frame, then dispatches.
func frameHandle(f *Frame) {
	Handle(f, readScause(), readStval())
}
