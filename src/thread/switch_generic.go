//go:build !riscv64

package thread

// goRuntime backs one thread's simulated execution context when there
// is no real hart to switch on. Each thread gets at most one goroutine,
// started lazily on its first switch-in; resume carries the outgoing
// thread so the receiver can run scheduleTailWrapper for it, mirroring
// the prev argument schedule_tail_wrapper receives on real hardware.
type goRuntime struct {
	resume  chan *Thread
	started bool
}

func newGoRuntime() *goRuntime {
	return &goRuntime{resume: make(chan *Thread, 1)}
}

func switchCtx(from, to *Thread) {
	if to.rt == nil {
		to.rt = newGoRuntime()
	}
	if from.rt == nil {
		from.rt = newGoRuntime()
	}

	if !to.rt.started {
		to.rt.started = true
		go func(prev *Thread) {
			scheduleTailWrapper(prev)
			threadEntryShim(to)
		}(from)
	} else {
		to.rt.resume <- from
	}

	prev := <-from.rt.resume
	scheduleTailWrapper(prev)
}

// threadTrampolineAddr has no meaning without real assembly; the
// generic switchCtx above never dereferences it.
func threadTrampolineAddr() uintptr { return 0 }
