// Command mkfs builds a disk image for the flat, single-directory
// filesystem package fs implements: format N sectors, then copy each
// host file named on the command line into the image's root directory.
// This filesystem's flat namespace has no nested directories or boot
// sector to lay out, unlike a richer on-disk tree.
package main

import (
	"fmt"
	"io"
	"os"

	"config"
	"defs"
	"fs"
)

const defaultSectors = 65536 // 32MiB image at the 512-byte sector size

// hostDisk backs fs.Disk with a single host file, growing it to exactly
// totalSectors*sectorSize bytes up front so every sector in range is
// always a valid, zero-filled read before anything is written to it.
type hostDisk struct {
	f *os.File
}

func (d *hostDisk) ReadSector(sector uint64, dst []byte) {
	if _, err := d.f.ReadAt(dst, int64(sector)*int64(len(dst))); err != nil && err != io.EOF {
		panic(err)
	}
}

func (d *hostDisk) WriteSector(sector uint64, src []byte) {
	if _, err := d.f.WriteAt(src, int64(sector)*int64(len(src))); err != nil {
		panic(err)
	}
}

func openImage(path string, sectors uint64) *hostDisk {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		panic(err)
	}
	if err := f.Truncate(int64(sectors) * config.VirtioSectorSize); err != nil {
		panic(err)
	}
	return &hostDisk{f: f}
}

func copyFile(fsys *fs.FileSys, name, hostPath string) {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		panic(err)
	}
	inode, cerr := fsys.Create(name)
	if cerr != defs.EOK {
		fmt.Fprintf(os.Stderr, "mkfs: create %q: %v\n", name, cerr)
		os.Exit(1)
	}
	if werr := inode.WriteAt(data, 0); werr != defs.EOK {
		fmt.Fprintf(os.Stderr, "mkfs: write %q: %v\n", name, werr)
		os.Exit(1)
	}
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: mkfs <image> <file>...\n")
		os.Exit(1)
	}

	disk := openImage(os.Args[1], defaultSectors)
	fs.MkFS(disk, defaultSectors)
	fsys := fs.Mount(disk, defaultSectors)

	for _, hostPath := range os.Args[2:] {
		copyFile(fsys, filepathBase(hostPath), hostPath)
	}

	if err := disk.f.Close(); err != nil {
		panic(err)
	}
}

func filepathBase(p string) string {
	i := len(p) - 1
	for i >= 0 && p[i] != '/' {
		i--
	}
	return p[i+1:]
}
