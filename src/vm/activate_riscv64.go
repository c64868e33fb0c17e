//go:build riscv64

package vm

// satpWrite is implemented in activate_riscv64.s: it issues
// sfence.vma, writes satp, and issues sfence.vma again.
func satpWrite(satp uint64)
