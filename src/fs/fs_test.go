package fs

import (
	"bytes"
	"defs"
	"ksync"
	"testing"
)

// fakeSched stands in for the thread package's scheduler, which these
// tests do not link: ksync.Sleep needs a current thread to record as
// holder. Every call here runs on one goroutine and never contends a
// lock, so Block is never reached.
type fakeSched struct{}

func (fakeSched) Current() ksync.ThreadHandle  { return 1 }
func (fakeSched) Block(h ksync.ThreadHandle)   { panic("fs test: Block called") }
func (fakeSched) WakeOne(h ksync.ThreadHandle) {}

func init() {
	if ksync.Sched == nil {
		ksync.Sched = fakeSched{}
	}
}

// memDisk is a byte-slice-backed Disk for tests, so none of this
// package's tests depend on virtio or a real block device.
type memDisk struct {
	sectors [][sectorSize]byte
}

func newMemDisk(n int) *memDisk {
	return &memDisk{sectors: make([][sectorSize]byte, n)}
}

func (d *memDisk) ReadSector(n uint64, buf []byte) {
	copy(buf, d.sectors[n][:])
}

func (d *memDisk) WriteSector(n uint64, buf []byte) {
	copy(d.sectors[n][:], buf)
}

func mkTestFS(t *testing.T, totalSectors uint64) (*FileSys, *memDisk) {
	t.Helper()
	disk := newMemDisk(int(totalSectors))
	MkFS(disk, totalSectors)
	return Mount(disk, totalSectors), disk
}

func TestCreateAndLookupRoundTrip(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	i, err := fsys.Create("hello")
	if err != defs.EOK {
		t.Fatalf("Create: %v", err)
	}
	if i.Size() != 0 {
		t.Fatalf("new file has size %d, want 0", i.Size())
	}

	got, err := fsys.Lookup("hello")
	if err != defs.EOK {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Inum != i.Inum {
		t.Fatalf("Lookup returned inum %d, want %d", got.Inum, i.Inum)
	}
}

func TestCreateDuplicateNameFails(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	if _, err := fsys.Create("dup"); err != defs.EOK {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := fsys.Create("dup"); err != defs.ECreateExistInode {
		t.Fatalf("second Create returned %v, want ECreateExistInode", err)
	}
}

func TestOpenDedupesInMemoryHandle(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	created, err := fsys.Create("same")
	if err != defs.EOK {
		t.Fatalf("Create: %v", err)
	}

	a, err := fsys.Open(created.Inum)
	if err != defs.EOK {
		t.Fatalf("Open a: %v", err)
	}
	b, err := fsys.Open(created.Inum)
	if err != defs.EOK {
		t.Fatalf("Open b: %v", err)
	}
	if a != b {
		t.Fatalf("Open returned distinct handles for the same inum")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	i, err := fsys.Create("data")
	if err != defs.EOK {
		t.Fatalf("Create: %v", err)
	}

	payload := bytes.Repeat([]byte("xy"), 1000) // 2000 bytes, spans multiple sectors
	if err := i.WriteAt(payload, 0); err != defs.EOK {
		t.Fatalf("WriteAt: %v", err)
	}
	if i.Size() != uint32(len(payload)) {
		t.Fatalf("Size() = %d, want %d", i.Size(), len(payload))
	}

	out := make([]byte, len(payload))
	n := i.ReadAt(out, 0)
	if n != uint32(len(payload)) {
		t.Fatalf("ReadAt returned %d bytes, want %d", n, len(payload))
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("round-tripped data does not match")
	}
}

func TestWriteAtOffsetGrowsInode(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	i, err := fsys.Create("grow")
	if err != defs.EOK {
		t.Fatalf("Create: %v", err)
	}

	first := bytes.Repeat([]byte{0xaa}, 512)
	if err := i.WriteAt(first, 0); err != defs.EOK {
		t.Fatalf("WriteAt first: %v", err)
	}
	second := bytes.Repeat([]byte{0xbb}, 4096)
	if err := i.WriteAt(second, 512); err != defs.EOK {
		t.Fatalf("WriteAt second: %v", err)
	}

	if i.Size() != 512+4096 {
		t.Fatalf("Size() = %d, want %d", i.Size(), 512+4096)
	}

	out := make([]byte, 4096)
	i.ReadAt(out, 512)
	if !bytes.Equal(out, second) {
		t.Fatalf("grown region does not read back correctly")
	}
}

func TestRemoveFreesInodeAndDirEntry(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	i, err := fsys.Create("gone")
	if err != defs.EOK {
		t.Fatalf("Create: %v", err)
	}
	if err := i.WriteAt([]byte("payload"), 0); err != defs.EOK {
		t.Fatalf("WriteAt: %v", err)
	}

	if err := fsys.Remove("gone"); err != defs.EOK {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := fsys.Lookup("gone"); err != defs.ENoSuchFile {
		t.Fatalf("Lookup after Remove returned %v, want ENoSuchFile", err)
	}

	// The freed inode sector and data extent must be reusable.
	j, err := fsys.Create("again")
	if err != defs.EOK {
		t.Fatalf("Create after Remove: %v", err)
	}
	if j.Inum != i.Inum {
		t.Fatalf("Create after Remove got inum %d, want reused inum %d", j.Inum, i.Inum)
	}
}

func TestDenyWriteBlocksWrite(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	i, err := fsys.Create("exe")
	if err != defs.EOK {
		t.Fatalf("Create: %v", err)
	}

	i.DenyWrite()
	if err := i.WriteAt([]byte("x"), 0); err != defs.EInvalidFileMode {
		t.Fatalf("WriteAt while denied returned %v, want EInvalidFileMode", err)
	}
	i.AllowWrite()
	if err := i.WriteAt([]byte("x"), 0); err != defs.EOK {
		t.Fatalf("WriteAt after AllowWrite returned %v", err)
	}
}

func TestRemoveNonexistentFails(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)
	if err := fsys.Remove("nope"); err != defs.ENoSuchFile {
		t.Fatalf("Remove returned %v, want ENoSuchFile", err)
	}
}

func TestCreateRejectsOversizedName(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	long := bytes.Repeat([]byte("n"), maxNameLen+1)
	if _, err := fsys.Create(string(long)); err != defs.EArgumentTooLong {
		t.Fatalf("Create with oversized name returned %v, want EArgumentTooLong", err)
	}
}

func TestFreeMapAllocDeallocReuse(t *testing.T) {
	disk := newMemDisk(32)
	MkFS(disk, 32)
	fsys := Mount(disk, 32)

	fm := fsys.freeMap.Lock()
	start, ok := (*fm.Get()).alloc(3)
	if !ok {
		fm.Unlock()
		t.Fatalf("alloc(3) failed")
	}
	(*fm.Get()).dealloc(start, 3)
	again, ok := (*fm.Get()).alloc(3)
	fm.Unlock()
	if !ok || again != start {
		t.Fatalf("alloc after dealloc returned %d,%v want %d,true", again, ok, start)
	}
}

func TestDirEntryReuseAfterRemove(t *testing.T) {
	fsys, _ := mkTestFS(t, 64)

	if _, err := fsys.Create("a"); err != defs.EOK {
		t.Fatalf("Create a: %v", err)
	}
	sizeBefore := fsys.root.Size()

	if err := fsys.Remove("a"); err != defs.EOK {
		t.Fatalf("Remove a: %v", err)
	}
	if _, err := fsys.Create("b"); err != defs.EOK {
		t.Fatalf("Create b: %v", err)
	}

	if fsys.root.Size() != sizeBefore {
		t.Fatalf("root directory grew instead of reusing the tombstoned slot: %d != %d", fsys.root.Size(), sizeBefore)
	}
}
