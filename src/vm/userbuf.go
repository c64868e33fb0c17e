package vm

import (
	"config"
	"defs"
)

// InKernelSpace is the sole criterion for "this pointer is already
// directly addressable": any address at or above the fixed high-half
// offset belongs to the kernel's own mappings.
func InKernelSpace(addr uintptr) bool {
	return addr >= config.VMOffset
}

// ReadUserByte reads one byte from a user-supplied address without
// risking a kernel panic on a bad pointer. It runs a single labeled
// load (knrlReadUsrByte, defined in userbuf_riscv64.s); if that load
// faults, the page-fault handler recognizes sepc as that exact label,
// sets a1 non-zero, and redirects sepc to the sibling exit label, so
// the routine returns an error instead of crashing the kernel. Any
// other kernel-mode page fault is fatal — see trap's handlePageFault.
func ReadUserByte(userSrc uintptr) (uint8, defs.Err_t) {
	if InKernelSpace(userSrc) {
		return 0, defs.EBadPtr
	}
	b, status := knrlReadUsrByte(userSrc)
	if status != 0 {
		return 0, defs.EBadPtr
	}
	return b, defs.EOK
}

// WriteUserByte writes one byte to a user-supplied address, with the
// same fault-escape protection as ReadUserByte.
func WriteUserByte(userDst uintptr, value uint8) defs.Err_t {
	if InKernelSpace(userDst) {
		return defs.EBadPtr
	}
	if knrlWriteUsrByte(userDst, value) != 0 {
		return defs.EBadPtr
	}
	return defs.EOK
}

// CopyIn reads len(dst) bytes starting at userSrc into dst, byte by
// byte through ReadUserByte, so a target that straddles a page
// boundary or is only partially mapped fails with EBadPtr at the first
// unmapped byte instead of crashing the kernel.
func CopyIn(dst []uint8, userSrc uintptr) defs.Err_t {
	for i := range dst {
		b, err := ReadUserByte(userSrc + uintptr(i))
		if err != defs.EOK {
			return err
		}
		dst[i] = b
	}
	return defs.EOK
}

// CopyOut writes src to consecutive user addresses starting at
// userDst.
func CopyOut(userDst uintptr, src []uint8) defs.Err_t {
	for i, b := range src {
		if err := WriteUserByte(userDst+uintptr(i), b); err != defs.EOK {
			return err
		}
	}
	return defs.EOK
}
