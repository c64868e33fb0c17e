//go:build !riscv64

package trap

// On a host build there is no stvec to install and no hardware trap to
// take; tests drive Handle directly with a hand-built Frame instead.
func InstallKernelVector() {}
func InstallUserVector()   {}
