// Package ksync provides the kernel's synchronization primitives: an
// interrupt-off lock, a spin lock, a sleep lock, a generic mutex built
// over any of the three, a counting semaphore, a condition variable,
// and one-time initialization helpers (Once, Lazy).
//
// Every higher-level primitive bottoms out in one of the Lock
// implementations (Intr in intr.go, Spin in spin.go, Sleep in
// sleep.go), each a single small interface wherever
// a subsystem needs a narrow seam.
package ksync

// Lock is the common interface satisfied by every locking primitive in
// this package. Acquire/Release must always be called in matched pairs
// from the same goroutine that represents a kernel thread.
type Lock interface {
	Acquire()
	Release()
}

// IntrState is a hook into the platform's interrupt-enable control. The
// only implementation in this tree is a software stand-in, which lets
// the primitives run under go test without real CSRs.
type IntrState interface {
	// Enabled reports whether interrupts are currently on.
	Enabled() bool
	// SetEnabled turns interrupts on or off and returns the prior state.
	SetEnabled(on bool) bool
}

// Platform is the process-wide IntrState implementation. Nothing in
// this tree replaces it, so on every build, the kernel included, it is
// the software simulation below: turning interrupts off through it
// records a flag and does not touch sstatus.SIE or the timer and
// external interrupt-enable bits.
var Platform IntrState = &softIntr{enabled: true}

type softIntr struct {
	enabled bool
}

func (s *softIntr) Enabled() bool { return s.enabled }

func (s *softIntr) SetEnabled(on bool) bool {
	prev := s.enabled
	s.enabled = on
	return prev
}
