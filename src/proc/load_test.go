package proc

import (
	"config"
	"defs"
	"fs"
	"mem"
	"testing"
	"unsafe"
	"vm"
)

var backing [4096 * 4096]byte

func init() {
	start := uintptr(unsafe.Pointer(&backing[0]))
	start = (start + 4095) &^ 4095
	mem.PallocInit(start, start+uintptr(len(backing))-8192)

	// kernBase==kernEnd-one-page and ramSize chosen so krEnd==kernEnd:
	// this exercises InitKernelTable's real mapping logic without
	// asking the host to walk the astronomical virtual range a real
	// boot would cover between the kernel image and the end of RAM.
	const kernBase = config.VMBase
	const kernEnd = kernBase + config.PgSize
	vm.InitKernelTable(config.PgSize, kernBase, kernEnd)
}

type memDisk struct {
	sectors [][512]byte
}

func newMemDisk(n int) *memDisk { return &memDisk{sectors: make([][512]byte, n)} }

func (d *memDisk) ReadSector(n uint64, buf []byte)  { copy(buf, d.sectors[n][:]) }
func (d *memDisk) WriteSector(n uint64, buf []byte) { copy(d.sectors[n][:], buf) }

func TestExecRejectsNonELF(t *testing.T) {
	disk := newMemDisk(64)
	fs.MkFS(disk, 64)
	fsys := fs.Mount(disk, 64)

	bin, err := fsys.Create("notanelf")
	if err != defs.EOK {
		t.Fatalf("Create: %v", err)
	}
	if err := bin.WriteAt([]byte("not an elf file"), 0); err != defs.EOK {
		t.Fatalf("WriteAt: %v", err)
	}

	if _, err := Exec(bin); err != defs.EUnknownFormat {
		t.Fatalf("Exec on garbage returned %v, want EUnknownFormat", err)
	}
}
