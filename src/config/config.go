// Package config centralizes the kernel's compiled-in tuning constants
// and memory-map layout in this one file, one const block per family
// of related constants, rather than scattering magic numbers across
// subsystems.
package config

const (
	// PgSize is the size in bytes of one physical page frame.
	PgSize = 4096
	// PgShift is log2(PgSize).
	PgShift = 12

	// MaxOrder bounds the buddy allocator: a single alloc call may
	// request at most 1<<MaxOrder pages.
	MaxOrder = 8
	// UserPoolPages is how many pages are carved out of the kernel
	// pool at boot to seed the dedicated user pool.
	UserPoolPages = 256

	// MaxBlockSize is the largest block size the slab heap serves
	// directly; larger requests spill to the page allocator.
	MaxBlockSize = 1024
	// ArenaMagic tags the header written at the start of every
	// heap arena page, letting dealloc recover the owning
	// descriptor by masking any block address down to its page.
	ArenaMagic = 0x9a548eed

	// StackPages is the number of pages in a kernel thread's stack.
	StackPages = 4
	// StackMagic is written at the base of a new kernel stack and
	// checked on every context switch as a stack-overflow canary.
	StackMagic = 0xdeadbeef

	// PriDefault, PriMax, PriMin bound thread priority, used by
	// priority-aware Scheduler implementations even though the default
	// FCFS policy ignores it.
	PriDefault = 31
	PriMax     = 63
	PriMin     = 0
)

// Memory layout, reproduced from the reference firmware's fixed map
// (see SPEC_FULL.md §6): one high-half offset separates physical and
// kernel-virtual addresses everywhere.
const (
	VMBase   = 0xFFFFFFC080000000
	PMBase   = 0x0000000080000000
	KernBase = 0x0000000080200000
	VMOffset = VMBase - PMBase

	PLICBase = 0x0C000000 + VMOffset
	MMIOBase = 0x10001000 + VMOffset
)

// VirtIO MMIO constants (device-class block device, split virtqueue of
// fixed size 4).
const (
	VirtioMagic    = 0x74726976
	VirtioVersion  = 2
	VirtioBlockDev = 2
	VirtioQueueLen = 4

	VirtioSectorSize = 512
)

// PLIC interrupt source IDs.
const (
	Virtio0ID = 1
)

// User-process layout: the initial stack top a freshly loaded process
// starts with (one page, installed immediately below).
const (
	UserStackTop = 0x80500000
)

// Disk file-system layout.
const (
	FreeMapSector    = 0
	RootDirSector    = 1
	RootDirSectorLen = 8

	DiskInodeMagic = 0x494e4f44

	DirEntrySize    = 32
	DirNameFieldLen = 28
)
