package device

import (
	"config"
	"ksync"
	"unsafe"
)

// Plic drives the platform-level interrupt controller for the one
// hart this kernel ever runs on: priority/enable/threshold setup at
// init, then claim/complete around each external-interrupt trap.
// Virtio0 is the only source this kernel ever registers.
const Virtio0ID = config.Virtio0ID

var hartID ksync.Once[uint64]

// Init brings up virtio0 on hart: priority 1 (any nonzero value is
// "interrupting" once the threshold below is 0), threshold 0 so
// nothing is masked, and the source bit set in the enable word.
func Init(hart uint64) {
	hartID.Init(func() uint64 { return hart })
	writePriority(Virtio0ID, 1)
	writeThreshold(0)
	setEnable(Virtio0ID)
}

// Claim blocks (from the PLIC's perspective, not the hart's) until it
// has an interrupt ID to hand back; 0 means none pending right now.
func Claim() uint32 {
	return load32(claimPtr())
}

// Complete tells the PLIC this kernel is done servicing id, allowing
// it to be claimed again once it reasserts.
func Complete(id uint32) {
	store32(claimPtr(), id)
}

func writePriority(id, pri uint32) { store32(priorityPtr(id), pri) }
func readPriority(id uint32) uint32 { return load32(priorityPtr(id)) }

func readPending(id uint32) bool {
	return load32(pendingPtr(id))&(1<<(id%32)) != 0
}

func setEnable(id uint32) {
	p := enablePtr(id)
	store32(p, load32(p)|(1<<(id%32)))
}

func clearEnable(id uint32) {
	p := enablePtr(id)
	store32(p, load32(p)&^(1<<(id%32)))
}

func writeThreshold(v uint32) { store32(thresholdPtr(), v) }
func readThreshold() uint32   { return load32(thresholdPtr()) }

func priorityPtr(id uint32) uintptr {
	return config.PLICBase + 0x4*uintptr(id)
}

func pendingPtr(id uint32) uintptr {
	return config.PLICBase + 0x1000 + 0x4*uintptr(id/32)
}

// context picks the supervisor-mode interrupt context for this hart;
// context 2*hartID is machine mode, 2*hartID+1 is supervisor mode,
// matching the SBI's hart layout this kernel boots under.
func context() uintptr {
	return 2*uintptr(hartID.Get()) + 1
}

func enablePtr(id uint32) uintptr {
	return config.PLICBase + 0x2000 + 0x80*context() + 0x4*uintptr(id/32)
}

func thresholdPtr() uintptr {
	return config.PLICBase + 0x200000 + 0x1000*context()
}

func claimPtr() uintptr {
	return thresholdPtr() + 0x4
}

func load32(addr uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr))
}

func store32(addr uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(addr)) = v
}
