package fs

import (
	"config"
	"defs"
	"ksync"
)

// FileSys is the mounted filesystem: a free-sector bitmap, the flat
// root directory, and the table of currently-open inodes, all backed
// by one Disk. There is exactly one of these per kernel, created by
// Mount at boot.
type FileSys struct {
	disk Disk

	freeMap *freeMapHandle
	root    *Inode

	// dirLock serializes the scan-then-mutate sequence in
	// lookupDir/insertDirEntry/removeDirEntry: the root directory's
	// slot layout is shared mutable state, and disk I/O inside that
	// scan is a preemption point, so two callers racing a Create
	// against a Remove could otherwise interleave mid-scan and pick
	// the same slot or miss a tombstone. Separate from root's own
	// mu, which guards root's {descriptor, on-disk copy} rather than
	// the directory contents living in its data extent.
	dirLock *ksync.Sleep

	open *openTable
}

// Mount reads the free-sector bitmap and root directory inode off
// disk and returns a ready-to-use FileSys. totalSectors is the whole
// disk's size; it is not discoverable from the disk itself since this
// driver has no partition table to read it from.
func Mount(disk Disk, totalSectors uint64) *FileSys {
	bitmapSectors := (totalSectors + 8*sectorSize - 1) / (8 * sectorSize)
	fm := loadFreeMap(disk, config.FreeMapSector, bitmapSectors, totalSectors)

	fsys := &FileSys{
		disk:    disk,
		freeMap: newFreeMapHandle(fm),
		dirLock: ksync.MkSleepLock(),
		open:    newOpenTable(),
	}

	rootSectorBuf := fsys.readInodeSector(config.RootDirSector)
	if !rootSectorBuf.valid() {
		panic("fs: root directory inode is corrupt")
	}
	fsys.root = &Inode{fs: fsys, Inum: config.RootDirSector, disk: rootSectorBuf, mu: ksync.MkSleepLock()}
	return fsys
}

// MkFS formats disk from scratch: zeroes the bitmap, marks the bitmap
// sectors, the root-directory inode sector and the root directory's
// data sectors in use, and writes an empty root directory inode. It is
// the same operation cmd/mkfs performs offline against a disk image.
func MkFS(disk Disk, totalSectors uint64) {
	bitmapSectors := (totalSectors + 8*sectorSize - 1) / (8 * sectorSize)
	fm := &freeMap{disk: disk, startSector: config.FreeMapSector, lenSectors: bitmapSectors, bits: make([]byte, bitmapSectors*sectorSize), totalBits: totalSectors}

	for i := uint64(0); i < bitmapSectors; i++ {
		fm.setBit(config.FreeMapSector+i, true)
	}
	fm.setBit(config.RootDirSector, true)
	dataStart := uint64(config.RootDirSector) + 1
	for i := uint64(0); i < config.RootDirSectorLen; i++ {
		fm.setBit(dataStart+i, true)
	}
	fm.flush()

	buf := make([]byte, sectorSize)
	rootDisk := diskInode{Data: (*[sectorSize]byte)(buf)}
	rootDisk.SetMagic(config.DiskInodeMagic)
	rootDisk.SetStart(uint32(dataStart))
	rootDisk.SetLen(config.RootDirSectorLen)
	rootDisk.SetSize(0)
	disk.WriteSector(config.RootDirSector, buf)

	zero := make([]byte, sectorSize)
	for i := uint64(0); i < config.RootDirSectorLen; i++ {
		disk.WriteSector(dataStart+i, zero)
	}
}

func (f *FileSys) readInodeSector(sector uint32) diskInode {
	buf := make([]byte, sectorSize)
	f.disk.ReadSector(uint64(sector), buf)
	return diskInode{Data: (*[sectorSize]byte)(buf)}
}

func (f *FileSys) writeInodeSector(sector uint32, d diskInode) {
	f.disk.WriteSector(uint64(sector), d.Data[:])
}

// readExtent/writeExtent copy bytes starting at byte offset off within
// the sector run [startSector, startSector+N), chunking one sector at
// a time since Disk only moves whole sectors.
func (f *FileSys) readExtent(startSector uint32, dst []byte, off uint32) uint32 {
	buf := make([]byte, sectorSize)
	total := uint32(0)
	for total < uint32(len(dst)) {
		abs := off + total
		sec := uint64(startSector) + uint64(abs/sectorSize)
		within := abs % sectorSize
		f.disk.ReadSector(sec, buf)
		n := copy(dst[total:], buf[within:])
		total += uint32(n)
	}
	return total
}

func (f *FileSys) writeExtent(startSector uint32, src []byte, off uint32) {
	buf := make([]byte, sectorSize)
	total := uint32(0)
	for total < uint32(len(src)) {
		abs := off + total
		sec := uint64(startSector) + uint64(abs/sectorSize)
		within := abs % sectorSize
		if within != 0 || uint32(len(src))-total < sectorSize {
			f.disk.ReadSector(sec, buf)
		}
		n := copy(buf[within:], src[total:])
		f.disk.WriteSector(sec, buf)
		total += uint32(n)
	}
}

// relocateExtent copies oldLen sectors from oldStart to newStart,
// preserving order; used by Inode.resize's grow-by-relocation path.
func (f *FileSys) relocateExtent(oldStart uint64, oldLen uint32, newStart uint32) {
	buf := make([]byte, sectorSize)
	for i := uint32(0); i < oldLen; i++ {
		f.disk.ReadSector(oldStart+uint64(i), buf)
		f.disk.WriteSector(uint64(newStart)+uint64(i), buf)
	}
}

// Create makes a new, empty file named name and returns its open
// handle. Fails with ECreateExistInode if name is already taken.
func (f *FileSys) Create(name string) (*Inode, defs.Err_t) {
	root := f.root

	if _, ok := root.fs.lookupDir(root, name); ok {
		return nil, defs.ECreateExistInode
	}

	fm := f.freeMap.Lock()
	inodeSector, ok := (*fm.Get()).alloc(1)
	fm.Unlock()
	if !ok {
		return nil, defs.EDiskSectorAllocFail
	}

	buf := make([]byte, sectorSize)
	d := diskInode{Data: (*[sectorSize]byte)(buf)}
	d.SetMagic(config.DiskInodeMagic)
	f.writeInodeSector(uint32(inodeSector), d)

	if err := f.insertDirEntry(root, name, uint32(inodeSector)); err != defs.EOK {
		fm = f.freeMap.Lock()
		(*fm.Get()).dealloc(inodeSector, 1)
		fm.Unlock()
		return nil, err
	}

	return f.Open(uint32(inodeSector))
}

// Open returns the shared in-memory Inode for inum, reading it from
// disk only if no other caller currently has it open.
func (f *FileSys) Open(inum uint32) (*Inode, defs.Err_t) {
	if i := f.open.get(inum); i != nil {
		return i, defs.EOK
	}
	d := f.readInodeSector(inum)
	if !d.valid() {
		return nil, defs.EOpenInvalidInode
	}
	i := &Inode{fs: f, Inum: inum, disk: d, mu: ksync.MkSleepLock()}
	f.open.put(inum, i)
	return i, defs.EOK
}

// Lookup resolves name to an open inode handle via the flat root
// directory.
func (f *FileSys) Lookup(name string) (*Inode, defs.Err_t) {
	inum, ok := f.lookupDir(f.root, name)
	if !ok {
		return nil, defs.ENoSuchFile
	}
	return f.Open(inum)
}

// Remove deletes name from the root directory and frees its inode and
// data extent. It does not check whether the inode is still open
// elsewhere: this filesystem has no link count, so by design the last
// Remove wins and any other holder's next read sees a freed inode.
func (f *FileSys) Remove(name string) defs.Err_t {
	inum, ok := f.lookupDir(f.root, name)
	if !ok {
		return defs.ENoSuchFile
	}
	d := f.readInodeSector(inum)

	fm := f.freeMap.Lock()
	if d.Len() > 0 {
		(*fm.Get()).dealloc(uint64(d.Start()), uint64(d.Len()))
	}
	(*fm.Get()).dealloc(uint64(inum), 1)
	fm.Unlock()

	return f.removeDirEntry(f.root, name)
}
