// Command kernel is the supervisor-mode image's entry point: the one
// place every subsystem this repository builds gets wired together.
// boot_riscv64.s hands off to Boot with the hart id and devicetree
// pointer OpenSBI left in a0/a1; everything after that is ordinary Go.
package main

import (
	"config"
	"defs"
	"device"
	"fs"
	"klog"
	"mem"
	"proc"
	"thread"
	"trap"
	"virtio"
	"vm"
)

// diskfs is the one mounted filesystem, set once Boot reaches it and
// read by the init process lookup and by Shutdown on the way out.
var diskfs *fs.FileSys

// Boot brings every subsystem up in dependency order, then schedules;
// once the boot thread is picked to run again it calls Shutdown. hartID
// and dtb are whatever the firmware handed this hart at reset; kernEnd
// is the address of the ekernel symbol boot_riscv64.s loads into a2
// before the call (a zero-size stand-in declared there, not a
// linker-script-placed symbol), since Go has no portable way to name a
// linker symbol from inside the language itself.
func Boot(hartID uint64, dtb uintptr, kernEnd uintptr) {
	klog.Enable(klog.Trap)
	klog.Enable(klog.Fs)

	tree := device.Open(dtb)
	pmBase, pmLen := tree.Memory()

	ramTail := uintptr(pmBase) + uintptr(pmLen)

	mem.PallocInit(kernEnd, ramTail)
	vm.InitKernelTable(uintptr(pmLen), config.KernBase, kernEnd)

	trap.InstallKernelVector()
	device.Init(hartID)

	blk := virtioInit()
	diskfs = fs.Mount(blk, uint64(pmLen)/config.VirtioSectorSize)

	trap.TimerTick = thread.Schedule
	klog.Debugf(klog.Trap, "boot complete on hart %d", hartID)

	if initBin, err := diskfs.Lookup("init"); err == defs.EOK {
		if _, err := proc.Exec(initBin); err != defs.EOK {
			klog.Fatalf("kernel: exec of init failed: %v", err)
		}
	} else {
		klog.Debugf(klog.Fs, "no init binary found, idling with no user process")
	}

	thread.Schedule()
	Shutdown()
}

// virtioInit runs the MMIO handshake and wires the device's completion
// interrupt into the trap dispatcher's seam: Init brings the device up,
// then Interrupt is installed as the completion callback.
func virtioInit() *virtio.Block {
	blk := virtio.Init()
	trap.VirtioInterrupt = virtio.Interrupt
	return blk
}

// Shutdown asks firmware to power the hart off. It does not touch the
// mounted filesystem: nothing is buffered past a WriteAt, so there is
// nothing to flush.
func Shutdown() {
	device.Reset()
}

// main exists so this package builds as an ordinary Go program under
// the host toolchain; boot_riscv64.s is the real entry point on
// target hardware and never calls it.
func main() {
	klog.Fatalf("kernel: main() is not a valid entry point; boot via boot_riscv64.s")
}
