//go:build !riscv64

package mem

const vmOffset = 0
