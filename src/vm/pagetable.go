package vm

import (
	"config"
	"ksync"
	"mem"
	"unsafe"
)

const nEntry = 512 // 4KiB page / 8-byte entry

// PageTable is a reference to one level of an in-memory Sv39 page
// table: exactly one page frame, viewed as 512 entries.
type PageTable struct {
	entries *[nEntry]Entry
}

func newTable() PageTable {
	va := mem.Kalloc(config.PgSize, config.PgSize)
	p := (*[nEntry]Entry)(unsafe.Pointer(va))
	for i := range p {
		p[i] = 0
	}
	return PageTable{entries: p}
}

func fromPa(pa mem.Pa_t) PageTable {
	va := uintptr(mem.P2V(pa))
	return PageTable{entries: (*[nEntry]Entry)(unsafe.Pointer(va))}
}

func px(level uint, va uintptr) uintptr {
	shift := uintptr(config.PgShift + 9*level)
	return (va >> shift) & (nEntry - 1)
}

// Map installs leaf translations for [va, va+size) to [pa, pa+size),
// creating levels 2 and 1 intermediate tables on demand. pa and va must
// both be page-aligned.
func (t PageTable) Map(pa mem.Pa_t, va uintptr, size uintptr, flags PTEFlags) {
	if uintptr(pa)%config.PgSize != 0 || va%config.PgSize != 0 {
		panic("vm: Map requires page-aligned addresses")
	}
	end := va + size
	for va < end {
		l1 := t.walkOrCreate(px(2, va), flags&PTE_G != 0)
		l0 := l1.walkOrCreate(px(1, va), flags&PTE_G != 0)
		l0.entries[px(0, va)] = NewEntry(pa, flags|PTE_V)
		pa += mem.Pa_t(config.PgSize)
		va += config.PgSize
	}
}

// GetPTE walks without creating intermediate tables, returning the leaf
// entry for va and whether the walk succeeded.
func (t PageTable) GetPTE(va uintptr) (Entry, bool) {
	l1, ok := t.walk(px(2, va))
	if !ok {
		return 0, false
	}
	l0, ok := l1.walk(px(1, va))
	if !ok {
		return 0, false
	}
	return l0.entries[px(0, va)], true
}

func (t PageTable) walk(idx uintptr) (PageTable, bool) {
	e := t.entries[idx]
	if !e.IsValid() {
		return PageTable{}, false
	}
	return fromPa(e.Pa()), true
}

func (t PageTable) walkOrCreate(idx uintptr, global bool) PageTable {
	if pt, ok := t.walk(idx); ok {
		return pt
	}
	nt := newTable()
	flags := PTE_V
	if global {
		flags |= PTE_G
	}
	t.entries[idx] = NewEntry(tablePa(nt), flags)
	return nt
}

func tablePa(t PageTable) mem.Pa_t {
	return mem.V2P(mem.Va_t(uintptr(unsafe.Pointer(t.entries))))
}

// Destroy frees every frame owned by this table: user-pool pages for
// non-global leaves, and the interior table pages themselves (returned
// to the kernel heap, since that's where newTable allocated them from).
// Entries with G=1 are never followed, which alone keeps kernel
// mappings shared across every address space intact.
func (t PageTable) Destroy() {
	destroyLevel(t, 2)
}

func destroyLevel(t PageTable, level int) {
	if level < 0 || level > 2 {
		panic("vm: Destroy bad level")
	}
	for _, e := range t.entries {
		if !e.IsValid() || e.IsGlobal() {
			continue
		}
		if e.IsLeaf() {
			mem.UserPoolDealloc(e.Pa(), 1<<uint(9*level))
		} else {
			destroyLevel(fromPa(e.Pa()), level-1)
		}
	}
	mem.Kfree(uintptr(unsafe.Pointer(t.entries)), config.PgSize, config.PgSize)
}

// kernelTable is the process-wide kernel page table, built once at
// boot. User tables always start life as a byte-for-byte copy of it.
var kernelTable ksync.Once[PageTable]

// InitKernelTable builds the kernel page table covering ramSize bytes
// of RAM and activates it. Must run exactly once, at boot, before any
// user table is cloned.
func InitKernelTable(ramSize uintptr, kernBase, kernEnd uintptr) PageTable {
	return kernelTable.Init(func() PageTable {
		root := newTable()

		rx := PTE_R | PTE_X | PTE_G
		rw := PTE_R | PTE_W | PTE_G

		krEnd := config.VMBase + ramSize

		root.Map(mem.V2P(mem.Va_t(kernBase)), kernBase, kernEnd-kernBase, rx)
		root.Map(mem.V2P(mem.Va_t(kernEnd)), kernEnd, krEnd-kernEnd, rw)
		root.Map(mem.Pa_t(config.PLICBase-config.VMOffset), config.PLICBase, 0x400000, rw)
		root.Map(mem.Pa_t(config.MMIOBase-config.VMOffset), config.MMIOBase, config.PgSize, rw)

		root.Activate()
		return root
	})
}

// KernelTable returns the previously-built kernel page table.
func KernelTable() PageTable {
	return kernelTable.Get()
}

// CloneKernel allocates a fresh root and copies the kernel table's
// entries into it verbatim, so every kernel G=1 mapping exists in the
// new address space with no TLB shootdown required on syscall entry.
func CloneKernel() PageTable {
	nt := newTable()
	copy(nt.entries[:], KernelTable().entries[:])
	return nt
}
