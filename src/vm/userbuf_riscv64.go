//go:build riscv64

package vm

// knrlReadUsrByte and knrlWriteUsrByte are implemented in
// userbuf_riscv64.s as the two-label fault-escape routines described
// in package doc. knrlReadUsrByteLabel/knrlWriteUsrByteLabel expose the
// PC of the labeled load/store instruction itself, which the trap
// package's page-fault handler compares sepc against; the *ExitLabel
// variants are where it redirects sepc to on a caught fault.
func knrlReadUsrByte(addr uintptr) (b uint8, status int64)
func knrlWriteUsrByte(addr uintptr, value uint8) (status int64)

func knrlReadUsrByteLabel() uintptr
func knrlReadUsrExitLabel() uintptr
func knrlWriteUsrByteLabel() uintptr
func knrlWriteUsrExitLabel() uintptr

// KnrlReadUsrByteLabel is the PC of the instruction trap's page-fault
// handler must match against a faulting sepc to recognize a caught
// user-byte read.
var KnrlReadUsrByteLabel = knrlReadUsrByteLabel
var KnrlReadUsrExitLabel = knrlReadUsrExitLabel
var KnrlWriteUsrByteLabel = knrlWriteUsrByteLabel
var KnrlWriteUsrExitLabel = knrlWriteUsrExitLabel
