package vm

// sv39Mode is the 4-bit MODE field value for Sv39, shifted into place
// within satp (bits 63-60).
const sv39Mode = 0x8 << 60

// Activate installs t as the effective page table via satp, bracketed
// by sfence.vma per the RISC-V privileged spec.
func (t PageTable) Activate() {
	ppn := tablePa(t) >> 12
	satpWrite(uint64(sv39Mode) | uint64(ppn))
}
