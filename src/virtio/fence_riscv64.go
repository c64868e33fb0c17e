//go:build riscv64

package virtio

// fenceWW orders this hart's prior writes (the descriptor table and
// avail ring entries) before the write that follows it (bumping
// avail.idx), so the device never observes an index pointing at a
// descriptor it hasn't been filled in yet.
func fenceWW()
