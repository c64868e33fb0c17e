// Package mem implements the kernel's physical memory subsystem: the
// buddy page allocator (kernel pool and a carved-out user pool) and the
// slab-style byte heap layered over it.
//
// Pa_t/Bytepg_t naming keeps a physical address as a distinct integer
// type from a virtual address so the two are never silently
// interchanged.
package mem

import "config"

// Pa_t is a physical address.
type Pa_t uintptr

// Bytepg_t is one page frame viewed as raw bytes.
type Bytepg_t [config.PgSize]uint8

// Va_t is a kernel virtual address: physical + the fixed high-half
// offset, per SPEC_FULL.md's memory map.
type Va_t uintptr

// P2V converts a physical address to its kernel-virtual alias. vmOffset
// is config.VMOffset on riscv64; on other build targets there is no
// real direct map to alias into, so it is 0 and P2V/V2P are the
// identity, letting this package's tests allocate real Go memory and
// dereference the "physical" addresses PallocAlloc hands back.
func P2V(pa Pa_t) Va_t {
	return Va_t(uintptr(pa) + vmOffset)
}

// V2P converts a kernel virtual address back to physical. Panics if v
// is not in the direct-mapped kernel range.
func V2P(v Va_t) Pa_t {
	if uintptr(v) < vmOffset {
		panic("V2P: not a kernel virtual address")
	}
	return Pa_t(uintptr(v) - vmOffset)
}
