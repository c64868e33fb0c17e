package mem

import (
	"config"
	"ksync"
)

// descSizes lists the eight block sizes the heap serves directly: each
// power of two from 8 to config.MaxBlockSize inclusive.
var descSizes = [...]uintptr{8, 16, 32, 64, 128, 256, 512, 1024}

// arenaHeader sits at the start of every heap arena page. Any in-use
// block's address, masked down to its page, recovers this header and
// therefore the owning descriptor.
type arenaHeader struct {
	magic uint32
	desc  int // index into heap.desc
}

type descriptor struct {
	blockSize uintptr
	free      freeList
}

// heap is the kernel's byte-granular allocator: eight slab descriptors
// over page.-backed arenas, with large or odd-alignment requests
// spilling straight to the page allocator.
type heap struct {
	desc [len(descSizes)]descriptor
}

func newHeap() *heap {
	h := &heap{}
	for i, s := range descSizes {
		h.desc[i].blockSize = s
	}
	return h
}

// Heap is the process-wide kernel heap singleton.
var Heap = ksync.NewLazy(func() *ksync.Mutex[*heap, *ksync.Intr] {
	return ksync.NewMutex[*heap, *ksync.Intr](&ksync.Intr{}, newHeap())
})

func pow2GE(v uintptr) uintptr {
	p := uintptr(1)
	for p < v {
		p <<= 1
	}
	return p
}

func descIndex(blockSize uintptr) int {
	for i, s := range descSizes {
		if s == blockSize {
			return i
		}
	}
	panic("heap: no descriptor for block size")
}

// Alloc returns size bytes aligned to align (align must be a power of
// two, at most config.PgSize). Zero-sized requests return a non-nil,
// well-aligned pointer that must never be dereferenced and is ignored
// by Dealloc.
func (h *heap) Alloc(size, align uintptr) uintptr {
	need := pow2GE(size)
	if need < align {
		need = align
	}
	if size == 0 {
		need = align
		if need == 0 {
			need = 8
		}
	}

	if need > config.MaxBlockSize {
		npages := (size + config.PgSize - 1) / config.PgSize
		if npages == 0 {
			npages = 1
		}
		pa := PallocAlloc(int(npages))
		return uintptr(P2V(pa))
	}

	idx := descIndex(need)
	d := &h.desc[idx]
	if d.free.empty() {
		h.grow(idx)
	}
	return d.free.pop()
}

// grow allocates one fresh page, writes its arena header, and slices
// the remainder into blocks for descriptor idx.
func (h *heap) grow(idx int) {
	pa := PallocAlloc(1)
	page := uintptr(P2V(pa))

	hdr := (*arenaHeader)(ptrOf(page))
	hdr.magic = config.ArenaMagic
	hdr.desc = idx

	blockSize := h.desc[idx].blockSize
	headerSpace := alignUp(unsafeSizeofHeader(), blockSize)
	for off := headerSpace; off+blockSize <= config.PgSize; off += blockSize {
		h.desc[idx].free.push(page + off)
	}
}

// Dealloc returns a block previously handed out by Alloc. Blocks larger
// than config.MaxBlockSize were spilled straight to the page allocator
// and are returned the same way; size must match the original request.
func (h *heap) Dealloc(addr, size, align uintptr) {
	if addr == 0 {
		return
	}
	need := pow2GE(size)
	if need < align {
		need = align
	}
	if size == 0 {
		return
	}

	if need > config.MaxBlockSize {
		npages := (size + config.PgSize - 1) / config.PgSize
		if npages == 0 {
			npages = 1
		}
		pa := V2P(Va_t(addr))
		PallocDealloc(pa, int(npages))
		return
	}

	pageStart := addr &^ (config.PgSize - 1)
	hdr := (*arenaHeader)(ptrOf(pageStart))
	if hdr.magic != config.ArenaMagic {
		panic("heap: dealloc of corrupt or foreign block")
	}
	h.desc[hdr.desc].free.push(addr)
}
