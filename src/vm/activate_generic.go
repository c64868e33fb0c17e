//go:build !riscv64

package vm

// LastSatp records the value the most recent Activate call would have
// written, so package tests running on the host architecture can
// assert on it without real CSR access.
var LastSatp uint64

func satpWrite(satp uint64) {
	LastSatp = satp
}
