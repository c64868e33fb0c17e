// Package klog centralizes the kernel's debug-print switches, one
// bool per subsystem, the same way fs/blk.go gates its own tracing
// behind a package-level bdev_debug.
package klog

import (
	"fmt"
	"os"

	"caller"

	"golang.org/x/text/message"
)

type Subsystem int

const (
	Mem Subsystem = iota
	Vm
	Thread
	Trap
	Virtio
	Fs
	Device
)

func (s Subsystem) String() string {
	switch s {
	case Mem:
		return "mem"
	case Vm:
		return "vm"
	case Thread:
		return "thread"
	case Trap:
		return "trap"
	case Virtio:
		return "virtio"
	case Fs:
		return "fs"
	case Device:
		return "device"
	default:
		return "?"
	}
}

// enabled holds one switch per subsystem. All are off by default;
// cmd/kernel's Boot turns Trap and Fs on unconditionally.
var enabled = map[Subsystem]bool{}

func Enable(s Subsystem)  { enabled[s] = true }
func Disable(s Subsystem) { enabled[s] = false }
func Enabled(s Subsystem) bool { return enabled[s] }

var printer = message.NewPrinter(message.MatchLanguage("en"))

// Debugf prints only if s is enabled, with numbers rendered through
// x/text/message so large counters and addresses get the thousands
// grouping and locale-aware formatting the stats dumps rely on too.
func Debugf(s Subsystem, format string, args ...interface{}) {
	if !enabled[s] {
		return
	}
	printer.Fprintf(os.Stderr, "["+s.String()+"] "+format+"\n", args...)
}

// Fatalf always prints, then panics; used at points the kernel cannot
// continue past regardless of which subsystems are being traced.
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, msg)
	caller.Callerdump(2)
	panic(msg)
}
