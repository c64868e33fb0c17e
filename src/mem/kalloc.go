package mem

// Kalloc allocates size bytes aligned to align from the kernel heap,
// returning a kernel-virtual address.
func Kalloc(size, align uintptr) uintptr {
	g := Heap.Get().Lock()
	defer g.Unlock()
	return (*g.Get()).Alloc(size, align)
}

// Kfree returns a block previously obtained from Kalloc with the same
// size and align.
func Kfree(addr, size, align uintptr) {
	g := Heap.Get().Lock()
	defer g.Unlock()
	(*g.Get()).Dealloc(addr, size, align)
}
