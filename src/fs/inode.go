package fs

import (
	"config"
	"defs"
	"encoding/binary"
	"ksync"
	"stat"
)

// diskInode is the one-sector on-disk structure found at a file's own
// inode sector: a magic number, the starting sector and sector count
// of its data extent, and the file's actual byte size (<= len
// sectors worth). Accessors read/write directly through Data, indexing
// straight into the backing sector rather than unmarshaling into a Go
// struct, so there is exactly one copy of the bytes that ever touches
// disk.
type diskInode struct {
	Data *[sectorSize]byte
}

const (
	offMagic = 0
	offStart = 4
	offLen   = 8
	offSize  = 12
)

func (d diskInode) fieldr(off int) uint32 {
	return binary.LittleEndian.Uint32(d.Data[off : off+4])
}

func (d diskInode) fieldw(off int, v uint32) {
	binary.LittleEndian.PutUint32(d.Data[off:off+4], v)
}

func (d diskInode) Magic() uint32    { return d.fieldr(offMagic) }
func (d diskInode) SetMagic(v uint32) { d.fieldw(offMagic, v) }
func (d diskInode) Start() uint32    { return d.fieldr(offStart) }
func (d diskInode) SetStart(v uint32) { d.fieldw(offStart, v) }
func (d diskInode) Len() uint32      { return d.fieldr(offLen) }
func (d diskInode) SetLen(v uint32)  { d.fieldw(offLen, v) }
func (d diskInode) Size() uint32     { return d.fieldr(offSize) }
func (d diskInode) SetSize(v uint32) { d.fieldw(offSize, v) }

func (d diskInode) valid() bool { return d.Magic() == config.DiskInodeMagic }

// Inode is the in-memory handle a caller reads and writes through.
// inum is this inode's own sector number; disk is a separate diskInode
// read from that sector, since Inode also tracks the sector its data
// extent currently lives at, which can move on Resize.
type Inode struct {
	fs   *FileSys
	Inum uint32
	disk diskInode

	// mu guards {disk, denyWrite} and is held across the whole of
	// ReadAt/WriteAt/resize, not just the field accesses: disk I/O
	// inside that span is a preemption point, so without it two
	// threads sharing this Inode (handed out by the same open-inode
	// table entry) could interleave mid-resize and corrupt the
	// extent they're both relocating.
	mu *ksync.Sleep

	// denyWrite counts outstanding reasons this inode must not be
	// written to (a live process executing it). Not persisted: it is
	// meaningless across a reboot, since nothing can still be running.
	denyWrite int
}

func (i *Inode) Size() uint32 {
	i.mu.Acquire()
	defer i.mu.Release()
	return i.disk.Size()
}

// Stat fills in the subset of Stat_t this flat filesystem actually
// has an answer for: there is one device, no permission bits, and no
// modification time beyond what a caller already tracks itself.
func (i *Inode) Stat() stat.Stat_t {
	i.mu.Acquire()
	defer i.mu.Release()
	var st stat.Stat_t
	st.Wino(uint(i.Inum))
	st.Wsize(uint(i.disk.Size()))
	return st
}

// DenyWrite and AllowWrite bracket a reader's need for this file's
// bytes to stay fixed, the way a running executable must not be
// rewritten out from under it.
func (i *Inode) DenyWrite() {
	i.mu.Acquire()
	i.denyWrite++
	i.mu.Release()
}

func (i *Inode) AllowWrite() {
	i.mu.Acquire()
	i.denyWrite--
	i.mu.Release()
}

// ReadAt copies min(len(dst), Size()-off) bytes starting at byte
// offset off into dst, returning the number of bytes actually copied.
// Reads never cross a sector boundary mid-copy without chunking,
// since the disk only ever moves whole sectors.
func (i *Inode) ReadAt(dst []byte, off uint32) uint32 {
	i.mu.Acquire()
	defer i.mu.Release()

	size := i.disk.Size()
	if off >= size {
		return 0
	}
	n := uint32(len(dst))
	if off+n > size {
		n = size - off
	}
	return i.fs.readExtent(i.disk.Start(), dst[:n], off)
}

// WriteAt writes src at byte offset off, growing the inode (via
// Resize) first if the write extends past the current size. Held
// across the whole call, mu's single acquisition covers both the
// resize and the extent write it guards against racing.
func (i *Inode) WriteAt(src []byte, off uint32) defs.Err_t {
	i.mu.Acquire()
	defer i.mu.Release()

	if i.denyWrite > 0 {
		return defs.EInvalidFileMode
	}
	need := off + uint32(len(src))
	if need > i.disk.Len()*sectorSize {
		if err := i.resize(need); err != defs.EOK {
			return err
		}
	}
	i.fs.writeExtent(i.disk.Start(), src, off)
	if need > i.disk.Size() {
		i.disk.SetSize(need)
		i.fs.writeInodeSector(i.Inum, i.disk)
	}
	return defs.EOK
}

// resize grows or shrinks the inode's sector extent to cover newSize
// bytes. Shrinking is always in place and lazy: it just updates Len
// and Size; the sectors past the new Len are neither zeroed nor
// returned to the free map. Growing tries to extend in
// place first (the sectors immediately after the current extent are
// free) and only relocates the whole extent, copying live data over,
// when that fails, keeping a file's common growth and truncation
// paths cheap.
func (i *Inode) resize(newSize uint32) defs.Err_t {
	newLen := (newSize + sectorSize - 1) / sectorSize
	oldLen := i.disk.Len()

	if newLen <= oldLen {
		i.disk.SetLen(newLen)
		if newSize < i.disk.Size() {
			i.disk.SetSize(newSize)
		}
		i.fs.writeInodeSector(i.Inum, i.disk)
		return defs.EOK
	}

	grow := uint64(newLen - oldLen)
	fm := i.fs.freeMap.Lock()
	if (*fm.Get()).extendInPlace(uint64(i.disk.Start()), uint64(oldLen), grow) {
		fm.Unlock()
		i.disk.SetLen(newLen)
		i.fs.writeInodeSector(i.Inum, i.disk)
		return defs.EOK
	}
	newStart, ok := (*fm.Get()).alloc(uint64(newLen))
	fm.Unlock()
	if !ok {
		return defs.EDiskSectorAllocFail
	}

	i.fs.relocateExtent(uint64(i.disk.Start()), oldLen, uint32(newStart))

	fm = i.fs.freeMap.Lock()
	(*fm.Get()).dealloc(uint64(i.disk.Start()), uint64(oldLen))
	fm.Unlock()

	i.disk.SetStart(newStart32(newStart))
	i.disk.SetLen(newLen)
	i.fs.writeInodeSector(i.Inum, i.disk)
	return defs.EOK
}

func newStart32(v uint64) uint32 { return uint32(v) }

// extendInPlace reports whether the grow sectors immediately following
// [start, start+curLen) are all free, and if so marks them allocated.
func (m *freeMap) extendInPlace(start, curLen, grow uint64) bool {
	first := start + curLen
	for i := uint64(0); i < grow; i++ {
		if first+i >= m.totalBits || m.testBit(first+i) {
			return false
		}
	}
	for i := uint64(0); i < grow; i++ {
		m.setBit(first+i, true)
	}
	m.flush()
	return true
}
