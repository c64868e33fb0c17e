package mem

import (
	"testing"
	"unsafe"
)

func TestHeapAllocAlignment(t *testing.T) {
	g := Heap.Get().Lock()
	addr := (*g.Get()).Alloc(24, 8)
	g.Unlock()
	if addr%8 != 0 {
		t.Fatalf("Alloc(24, 8) returned unaligned address %#x", addr)
	}

	g = Heap.Get().Lock()
	(*g.Get()).Dealloc(addr, 24, 8)
	g.Unlock()
}

func TestHeapAllocWriteRoundTrip(t *testing.T) {
	g := Heap.Get().Lock()
	addr := (*g.Get()).Alloc(64, 8)
	g.Unlock()

	buf := (*[64]byte)(unsafe.Pointer(addr))
	for i := range buf {
		buf[i] = byte(i)
	}
	for i := range buf {
		if buf[i] != byte(i) {
			t.Fatalf("byte %d corrupted", i)
		}
	}

	g = Heap.Get().Lock()
	(*g.Get()).Dealloc(addr, 64, 8)
	g.Unlock()
}

func TestHeapAllocReusesFreedBlock(t *testing.T) {
	g := Heap.Get().Lock()
	a := (*g.Get()).Alloc(32, 8)
	(*g.Get()).Dealloc(a, 32, 8)
	b := (*g.Get()).Alloc(32, 8)
	g.Unlock()

	if a != b {
		t.Fatalf("freed block was not reused: a=%#x b=%#x", a, b)
	}
}

func TestHeapLargeRequestSpillsToPalloc(t *testing.T) {
	g := Heap.Get().Lock()
	addr := (*g.Get()).Alloc(8192, 8)
	g.Unlock()

	if addr%4096 != 0 {
		t.Fatalf("page-spill allocation not page-aligned: %#x", addr)
	}

	g = Heap.Get().Lock()
	(*g.Get()).Dealloc(addr, 8192, 8)
	g.Unlock()
}

func TestHeapDeallocOfCorruptBlockPanics(t *testing.T) {
	g := Heap.Get().Lock()
	addr := (*g.Get()).Alloc(16, 8)
	g.Unlock()

	pageStart := addr &^ (4096 - 1)
	hdr := (*uint32)(unsafe.Pointer(pageStart))
	*hdr = 0

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on corrupt arena header")
		}
	}()
	g = Heap.Get().Lock()
	defer g.Unlock()
	(*g.Get()).Dealloc(addr, 16, 8)
}
