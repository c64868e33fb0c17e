//go:build !riscv64

package device

import "fmt"

// LastTimerDeadline and ConsoleOutput let tests observe what the real
// ecalls would have done without a hart to make them on.
var (
	LastTimerDeadline uint64
	ConsoleOutput     []byte
	ResetCalled       bool
)

func SetTimer(deadline uint64) { LastTimerDeadline = deadline }

func ConsolePutchar(c byte) { ConsoleOutput = append(ConsoleOutput, c) }

func ConsoleGetchar() int64 { return -1 }

func Reset() { ResetCalled = true; fmt.Println("device: reset requested") }
