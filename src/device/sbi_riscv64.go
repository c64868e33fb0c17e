//go:build riscv64

package device

// Each of these is a single ecall with the SBI extension/function ID
// in a7/a6 and arguments in a0-a2, implemented in sbi_riscv64.s.
func SetTimer(deadline uint64)
func ConsolePutchar(c byte)
func ConsoleGetchar() int64
func Reset()
