//go:build riscv64

package trap

import "unsafe"

// Real hardware traps always land with sepc pointing into a mapped
// instruction stream -- either the kernel image itself (a synchronous
// kernel-mode fault) or a user text page the kernel's own Sv39 table
// also maps, via the direct map, at some aliasing address. Reading up
// to 4 bytes is always safe here: riscv64asm.Decode only consumes as
// many bytes as the instruction's own encoding says it needs.
func init() {
	instructionBytesAt = func(pc uint64) []byte {
		p := (*[4]byte)(unsafe.Pointer(uintptr(pc)))
		return p[:]
	}
}
