//go:build !riscv64

package main

// Booted is a host-build-only flag. Boot does not set it, so it stays
// false.
var Booted bool
