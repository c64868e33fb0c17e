// Package fs implements the on-disk filesystem: a flat, single-
// directory namespace over a free-sector bitmap and fixed-size disk
// inodes, with an in-memory table deduplicating concurrently open
// inodes. It talks to whatever backs sectors through the Disk
// interface rather than importing package virtio directly, the same
// seam fs/blk.go's Disk_i drew between the block cache and the device.
package fs

import "config"

// Disk is the minimum a block device must provide: synchronous,
// whole-sector reads and writes. virtio.Block satisfies it without
// fs ever importing package virtio.
type Disk interface {
	ReadSector(sector uint64, dst []byte)
	WriteSector(sector uint64, src []byte)
}

const sectorSize = config.VirtioSectorSize
