package proc

import (
	"bytes"
	"config"
	"debug/elf"
	"defs"
	"fs"
	"mem"
	"unsafe"
	"vm"
)

// execInfo is what loadELF returns to Exec: where the new process
// should start running and what its initial stack pointer is.
type execInfo struct {
	entryPoint uint64
	initSP     uint64
}

// readWholeFile copies bin's entire contents into one buffer. Object
// files loaded by this kernel are small enough that reading the whole
// thing up front, the way userproc.rs's load_elf does, is simpler than
// threading a seekable reader through debug/elf.
func readWholeFile(bin *fs.Inode) []byte {
	buf := make([]byte, bin.Size())
	bin.ReadAt(buf, 0)
	return buf
}

// loadELF parses bin as an ELF64 executable (debug/elf, the same
// package cmd/chentry reads ELF headers with) and installs every
// PT_LOAD segment into pt.
func loadELF(bin *fs.Inode, pt vm.PageTable) (execInfo, defs.Err_t) {
	raw := readWholeFile(bin)

	ef, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return execInfo{}, defs.EUnknownFormat
	}
	if ef.Class != elf.ELFCLASS64 || ef.Machine != elf.EM_RISCV {
		return execInfo{}, defs.EUnknownFormat
	}

	for _, p := range ef.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		loadSegment(raw, p, pt)
	}

	initUserStack(pt)

	return execInfo{entryPoint: ef.Entry, initSP: config.UserStackTop}, defs.EOK
}

// loadSegment installs one PT_LOAD segment's pages, zero-filling the
// tail past Filesz up to Memsz (.bss).
func loadSegment(raw []byte, p *elf.Prog, pt vm.PageTable) {
	flags := vm.PTE_V | vm.PTE_U | vm.PTE_R
	if p.Flags&elf.PF_X != 0 {
		flags |= vm.PTE_X
	}
	if p.Flags&elf.PF_W != 0 {
		flags |= vm.PTE_W
	}

	const pgSize = config.PgSize
	pageMask := uintptr(pgSize - 1)
	ubase := uintptr(p.Vaddr) &^ pageMask
	pageoff := uintptr(p.Vaddr) & pageMask
	fileoff := uintptr(p.Off) &^ pageMask

	pages := (pageoff + uintptr(p.Memsz) + pageMask) / pgSize
	remaining := int64(p.Filesz) + int64(pageoff)

	for i := uintptr(0); i < pages; i++ {
		pa := mem.UserPoolAlloc(1)
		page := (*[pgSize]byte)(unsafe.Pointer(uintptr(mem.P2V(pa))))

		readsz := remaining
		if readsz > pgSize {
			readsz = pgSize
		}
		if readsz < 0 {
			readsz = 0
		}
		readpos := fileoff + i*pgSize
		if readsz > 0 {
			copy(page[:readsz], raw[readpos:readpos+uintptr(readsz)])
		}
		for j := readsz; j < pgSize; j++ {
			page[j] = 0
		}
		remaining -= pgSize

		uaddr := ubase + i*pgSize
		pt.Map(pa, uaddr, pgSize, flags)
	}
}

// initUserStack maps one fresh page as the new process's stack, its
// top landing exactly at config.UserStackTop.
func initUserStack(pt vm.PageTable) {
	pa := mem.UserPoolAlloc(1)
	stackBase := uintptr(config.UserStackTop) - config.PgSize
	pt.Map(pa, stackBase, config.PgSize, vm.PTE_V|vm.PTE_U|vm.PTE_R|vm.PTE_W)
}
