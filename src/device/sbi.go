package device

// SBI wraps the handful of firmware calls this kernel needs: arming
// the next timer interrupt, raw console I/O before a real console
// driver exists, and asking firmware to reset the machine. Each is an
// ecall into whatever runs below supervisor mode (OpenSBI, typically).
// sbi_riscv64.s carries the real ecall sequence; sbi_generic.go fakes
// it for host-architecture tests.
