package virtio

import (
	"config"
	"mem"
	"unsafe"
)

const (
	qsize      = config.VirtioQueueLen
	descNext   = 1 << 0
	descWrite  = 1 << 1
)

// desc mirrors struct virtq_desc: a 64-bit guest-physical address, a
// 32-bit length, flags, and the next-descriptor index used to chain a
// request's three buffers together.
type desc struct {
	addr  uint64
	len   uint32
	flags uint16
	next  uint16
}

type availRing struct {
	flags uint16
	idx   uint16
	ring  [qsize]uint16
}

type usedElem struct {
	id  uint32
	len uint32
}

type usedRing struct {
	flags uint16
	idx   uint16
	ring  [qsize]usedElem
}

// queue owns the three regions a split virtqueue needs, each
// individually page-contiguous so its physical address can be handed
// straight to the device: the descriptor table, the driver-owned
// avail ring, and the device-owned used ring. Each is allocated as
// its own page.
type queue struct {
	desc  *[qsize]desc
	avail *availRing
	used  *usedRing

	free     [qsize]bool
	lastUsed uint16

	descPa, availPa, usedPa uint64
}

func newQueue() *queue {
	descPa := mem.PallocAlloc(1)
	availPa := mem.PallocAlloc(1)
	usedPa := mem.PallocAlloc(1)

	q := &queue{
		desc:  (*[qsize]desc)(unsafe.Pointer(uintptr(mem.P2V(descPa)))),
		avail: (*availRing)(unsafe.Pointer(uintptr(mem.P2V(availPa)))),
		used:  (*usedRing)(unsafe.Pointer(uintptr(mem.P2V(usedPa)))),
	}
	// PallocAlloc hands back pages with stale contents; the device
	// must see an empty descriptor table and zero ring indices.
	*q.desc = [qsize]desc{}
	*q.avail = availRing{}
	*q.used = usedRing{}
	for i := range q.free {
		q.free[i] = true
	}
	return q.descPhysAddrs(descPa, availPa, usedPa)
}

// descPhysAddrs stashes the physical addresses newQueue allocated so
// Init can hand them to the device; it is split out only to keep
// newQueue's happy path readable.
func (q *queue) descPhysAddrs(d, a, u mem.Pa_t) *queue {
	q.descPa, q.availPa, q.usedPa = uint64(d), uint64(a), uint64(u)
	return q
}

// allocThree reserves three chained descriptors for one request,
// panicking if the fixed-size-4 queue is exhausted: this kernel only
// ever issues synchronous one-at-a-time requests, so that should never
// happen, and a silent wraparound would corrupt an in-flight request.
func (q *queue) allocThree() [3]uint16 {
	var out [3]uint16
	n := 0
	for i := range q.free {
		if q.free[i] {
			q.free[i] = false
			out[n] = uint16(i)
			n++
			if n == 3 {
				return out
			}
		}
	}
	panic("virtio: request queue exhausted")
}

func (q *queue) freeDescs(ids [3]uint16) {
	for _, id := range ids {
		q.free[id] = true
	}
}

// submit writes the three descriptors for one request (header
// read-only, data read-or-write, status write-only), chains them, then
// publishes the request by appending to the avail ring and bumping
// avail.idx behind a fence.
func (q *queue) submit(hdrPa, dataPa, statusPa mem.Pa_t, dataLen uint32, dataWrite bool) uint16 {
	ids := q.allocThree()
	hdr, data, status := ids[0], ids[1], ids[2]

	q.desc[hdr] = desc{addr: uint64(hdrPa), len: 16, flags: descNext, next: data}

	dataFlags := uint16(descNext)
	if dataWrite {
		dataFlags |= descWrite
	}
	q.desc[data] = desc{addr: uint64(dataPa), len: dataLen, flags: dataFlags, next: status}

	q.desc[status] = desc{addr: uint64(statusPa), len: 1, flags: descWrite}

	slot := q.avail.idx % qsize
	q.avail.ring[slot] = hdr
	fenceWW()
	q.avail.idx++
	return hdr
}

// pollUsed drains every newly completed entry from the used ring,
// freeing its three descriptors and invoking done with the request's
// head descriptor index so the caller can match it back to a waiter.
func (q *queue) pollUsed(done func(head uint16)) {
	for q.lastUsed != q.used.idx {
		e := q.used.ring[q.lastUsed%qsize]
		hdr := uint16(e.id)
		data := q.desc[hdr].next
		status := q.desc[data].next
		q.freeDescs([3]uint16{hdr, data, status})
		done(hdr)
		q.lastUsed++
	}
}
