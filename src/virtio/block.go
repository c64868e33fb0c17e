package virtio

import (
	"config"
	"fmt"
	"ksync"
	"mem"
	"stats"
	"unsafe"
)

const (
	deviceIDBlock = config.VirtioBlockDev

	blkReqIn  = 0 // read from the device
	blkReqOut = 1 // write to the device
)

// blkReqHeader is struct virtio_blk_req's fixed 16-byte header: a
// request type, a reserved field, and the starting sector.
type blkReqHeader struct {
	typ      uint32
	reserved uint32
	sector   uint64
}

// Block is the single VirtIO block device this kernel drives.
// Completion is interrupt-driven: request blocks the calling thread on
// a per-request semaphore that the PLIC external-interrupt handler
// wakes once the device's used ring advances.
type Block struct {
	q    *queue
	lock ksync.Spin // protects q and waiters; never held across a wait

	// reqLock serializes whole requests end to end, including the
	// blocking wait for completion. A 4-descriptor queue only ever
	// fits one 3-descriptor request at a time, so this driver is
	// synchronous by construction; reqLock just makes that explicit
	// instead of letting a second caller corrupt the shared
	// header/status scratch pages.
	reqLock *ksync.Sleep

	waiters map[uint16]*ksync.Sema

	hdrPage mem.Pa_t
	stsPage mem.Pa_t
	sectorSize uint32

	reqs stats.Counter_t
}

var dev *Block

// Init runs the MMIO handshake: ACKNOWLEDGE, DRIVER, feature
// negotiation, FEATURES_OK, set up queue 0, DRIVER_OK. It does not
// read the device's config space, so the disk's capacity is not known
// to this driver. Panics on any mismatch; there is no fallback device
// to degrade to.
func Init() *Block {
	if readReg(regMagicValue) != config.VirtioMagic {
		panic("virtio: bad magic value")
	}
	if readReg(regVersion) != config.VirtioVersion {
		panic("virtio: unsupported version")
	}
	if readReg(regDeviceID) != deviceIDBlock {
		panic(fmt.Sprintf("virtio: device id %d is not a block device", readReg(regDeviceID)))
	}

	writeReg(regStatus, 0)
	writeReg(regStatus, statusAcknowledge)
	writeReg(regStatus, statusAcknowledge|statusDriver)

	// This kernel negotiates no optional features: no indirect
	// descriptors, no multi-queue, nothing beyond the baseline 1.2
	// transport this block driver is written against.
	writeReg(regDriverFeatSel, 0)
	writeReg(regDriverFeatures, 0)
	writeReg(regStatus, statusAcknowledge|statusDriver|statusFeaturesOK)
	if readReg(regStatus)&statusFeaturesOK == 0 {
		panic("virtio: device rejected feature negotiation")
	}

	if max := readReg(regQueueNumMax); max < qsize {
		panic("virtio: device queue too small")
	}
	writeReg(regQueueSel, 0)
	writeReg(regQueueNum, qsize)

	q := newQueue()
	writeReg(regQueueDescLow, uint32(q.descPa))
	writeReg(regQueueDescHigh, uint32(q.descPa>>32))
	writeReg(regQueueDriverLow, uint32(q.availPa))
	writeReg(regQueueDriverHigh, uint32(q.availPa>>32))
	writeReg(regQueueDeviceLow, uint32(q.usedPa))
	writeReg(regQueueDeviceHigh, uint32(q.usedPa>>32))
	writeReg(regQueueReady, 1)

	writeReg(regStatus, statusAcknowledge|statusDriver|statusFeaturesOK|statusDriverOK)

	hdrPage := mem.PallocAlloc(1)
	stsPage := mem.PallocAlloc(1)

	dev = &Block{
		q:          q,
		reqLock:    ksync.MkSleepLock(),
		waiters:    make(map[uint16]*ksync.Sema),
		hdrPage:    hdrPage,
		stsPage:    stsPage,
		sectorSize: config.VirtioSectorSize,
	}
	return dev
}

// Interrupt is installed on trap.VirtioInterrupt; it wakes every
// request the used ring has advanced past since the last poll.
func Interrupt() {
	writeReg(regInterruptACK, readReg(regInterruptStatus))

	dev.lock.Acquire()
	dev.q.pollUsed(func(head uint16) {
		if sema, ok := dev.waiters[head]; ok {
			delete(dev.waiters, head)
			sema.Up()
		}
	})
	dev.lock.Release()
}

// ReadSector reads one config.VirtioSectorSize-byte sector into dst,
// blocking the calling thread until the device completes it.
func (b *Block) ReadSector(sector uint64, dst []byte) {
	b.request(sector, dst, blkReqIn)
}

// WriteSector writes src (exactly one sector) to the device.
func (b *Block) WriteSector(sector uint64, src []byte) {
	b.request(sector, src, blkReqOut)
}

func (b *Block) request(sector uint64, buf []byte, typ uint32) {
	if uint32(len(buf)) != b.sectorSize {
		panic("virtio: request buffer is not one sector")
	}

	b.reqLock.Acquire()
	defer b.reqLock.Release()
	b.reqs.Inc()

	hdr := (*blkReqHeader)(unsafe.Pointer(uintptr(mem.P2V(b.hdrPage))))
	*hdr = blkReqHeader{typ: typ, sector: sector}

	dataPa := mem.V2P(mem.Va_t(uintptr(unsafe.Pointer(&buf[0]))))
	status := (*byte)(unsafe.Pointer(uintptr(mem.P2V(b.stsPage))))
	*status = 0xff

	sema := ksync.MkSema(0)

	b.lock.Acquire()
	head := b.q.submit(b.hdrPage, dataPa, b.stsPage, b.sectorSize, typ == blkReqIn)
	b.waiters[head] = sema
	writeReg(regQueueNotify, 0)
	b.lock.Release()

	sema.Down()

	if *status != 0 {
		panic(fmt.Sprintf("virtio: device reported request failure (status=%d)", *status))
	}
}
