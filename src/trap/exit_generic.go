//go:build !riscv64

package trap

// LastExitFrame records the most recent ExitU argument for host tests,
// since there is no real U-mode to actually jump into.
var LastExitFrame *Frame

func ExitU(f *Frame) {
	LastExitFrame = f
	panic("trap: ExitU reached on a build with no real U-mode")
}
