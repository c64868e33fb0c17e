package mem

import (
	"config"
	"ksync"
	"util"
)

// buddy allocates and frees memory page-wise. free[i] is in charge of
// memory chunks of 2^i pages: orders 0..=MaxOrder, single-call max 256
// pages, a buddy scheme rather than a bare free-frame stack. Pages
// carry no reference counts.
type buddy struct {
	free      [config.MaxOrder + 1]freeList
	total     int
	allocated int
}

func (b *buddy) insertRange(start, end uintptr) {
	start = util.Roundup(start, uintptr(config.PgSize))
	end = util.Rounddown(end, uintptr(config.PgSize))
	b.total += int(end-start) / config.PgSize

	cur := start
	for cur < end {
		size := minU(lowestSetPower(cur), prevPowerOfTwo(end-cur))
		order := trailingZeros(size) - config.PgShift
		if order > config.MaxOrder {
			order = config.MaxOrder
		}
		b.free[order].push(cur)
		cur += uintptr(1<<uint(order)) * config.PgSize
	}
}

// alloc returns the physical address of n contiguous pages.
func (b *buddy) alloc(n int) Pa_t {
	if n > 1<<config.MaxOrder {
		panic("buddy: request exceeds MaxOrder")
	}
	order := orderFor(n)
	for i := order; i < len(b.free); i++ {
		if b.free[i].empty() {
			continue
		}
		for j := i; j > order; j-- {
			block := b.free[j].pop()
			half := block + uintptr(1<<uint(j-1))*config.PgSize
			b.free[j-1].push(half)
			b.free[j-1].push(block)
		}
		b.allocated += 1 << uint(order)
		return Pa_t(b.free[order].pop())
	}
	panic("buddy: memory exhausted")
}

// dealloc returns n pages starting at pa, merging with the buddy chain
// where possible.
func (b *buddy) dealloc(pa Pa_t, n int) {
	order := orderFor(n)
	addr := uintptr(pa)
	b.free[order].push(addr)

	for order < config.MaxOrder {
		buddyAddr := addr ^ (uintptr(1<<uint(order)) * config.PgSize)
		if !b.free[order].remove(buddyAddr) {
			break
		}
		b.free[order].remove(addr)
		if buddyAddr < addr {
			addr = buddyAddr
		}
		order++
		b.free[order].push(addr)
	}
	b.allocated -= 1 << uint(orderFor(n))
}

func orderFor(n int) int {
	return trailingZeros(nextPowerOfTwo(uintptr(n)))
}

func nextPowerOfTwo(n uintptr) uintptr {
	if n <= 1 {
		return 1
	}
	p := uintptr(1)
	for p < n {
		p <<= 1
	}
	return p
}

func prevPowerOfTwo(n uintptr) uintptr {
	if n == 0 {
		return 0
	}
	p := uintptr(1)
	for p<<1 <= n {
		p <<= 1
	}
	return p
}

func lowestSetPower(n uintptr) uintptr {
	if n == 0 {
		// Caller guarantees n is page-aligned and nonzero for any
		// real range; treat an aligned-to-zero address as maximally
		// aligned.
		return 1 << 62
	}
	return n & (-n)
}

func trailingZeros(n uintptr) int {
	if n == 0 {
		panic("trailingZeros of zero")
	}
	c := 0
	for n&1 == 0 {
		n >>= 1
		c++
	}
	return c
}

func minU(a, b uintptr) uintptr {
	return util.Min(a, b)
}

// Palloc is the kernel page pool: the allocator of first resort for
// page tables, heap arenas, VirtIO queue memory, and kernel stacks.
var Palloc = ksync.NewLazy(func() *ksync.Mutex[*buddy, *ksync.Intr] {
	return ksync.NewMutex[*buddy, *ksync.Intr](&ksync.Intr{}, &buddy{})
})

// PallocInit records [start, end) as available physical memory,
// typically the RAM range reported by the device tree minus whatever
// the boot firmware and kernel image already occupy.
func PallocInit(start, end uintptr) {
	g := Palloc.Get().Lock()
	defer g.Unlock()
	(*g.Get()).insertRange(start, end)
}

// PallocAlloc allocates n contiguous pages from the kernel pool.
func PallocAlloc(n int) Pa_t {
	g := Palloc.Get().Lock()
	defer g.Unlock()
	return (*g.Get()).alloc(n)
}

// PallocDealloc returns n pages starting at pa to the kernel pool.
func PallocDealloc(pa Pa_t, n int) {
	g := Palloc.Get().Lock()
	defer g.Unlock()
	(*g.Get()).dealloc(pa, n)
}

// UserPool is a second buddy instance seeded once, at first use, with
// config.UserPoolPages pages taken from Palloc. All user page-table
// leaves come from here so tearing down an address space returns pages
// directly to a pool sized for user memory instead of competing with
// kernel allocations.
var UserPool = ksync.NewLazy(func() *ksync.Mutex[*buddy, *ksync.Intr] {
	b := &buddy{}
	const chunk = 1 << config.MaxOrder
	for got := 0; got < config.UserPoolPages; got += chunk {
		start := PallocAlloc(chunk)
		b.insertRange(uintptr(start), uintptr(start)+chunk*config.PgSize)
	}
	return ksync.NewMutex[*buddy, *ksync.Intr](&ksync.Intr{}, b)
})

// UserPoolAlloc allocates n contiguous pages from the user pool.
func UserPoolAlloc(n int) Pa_t {
	g := UserPool.Get().Lock()
	defer g.Unlock()
	return (*g.Get()).alloc(n)
}

// UserPoolDealloc returns n pages starting at pa to the user pool.
func UserPoolDealloc(pa Pa_t, n int) {
	g := UserPool.Get().Lock()
	defer g.Unlock()
	(*g.Get()).dealloc(pa, n)
}
