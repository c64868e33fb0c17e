//go:build riscv64

package mem

import "config"

const vmOffset = config.VMOffset
