package barrier

import "github.com/chalkan3-sloth/joinbench/internal/tsc"

// pauseSpinLoop spins up to SpinCount iterations emitting a PAUSE hint
// each time, checking for release. It returns the number of iterations
// consumed and whether release was observed within the budget.
func (b *barrier) pauseSpinLoop(colorIn int32) (uint64, bool) {
	for j := uint64(0); j < SpinCount; j++ {
		if colorIn != b.lockColor.Load() {
			return j, true
		}
		pauseHint()
	}
	return SpinCount, false
}

// mwaitxOnce emulates a single MONITOR+MWAITX attempt: it arms on
// lock_color and busy-polls for up to mwaitxCycles ticks (the cycle
// budget MWAITX itself would have been given), returning early if
// release is observed. See SPEC_FULL.md §4.3 for why this cycle-bounded
// poll stands in for the real instruction pair.
func (b *barrier) mwaitxOnce(colorIn int32) bool {
	deadline := tsc.Now() + b.mwaitxCycles
	for tsc.Now() < deadline {
		if colorIn != b.lockColor.Load() {
			return true
		}
	}
	return colorIn != b.lockColor.Load()
}

// mwaitxSpinLoop is the looped counterpart of pauseSpinLoop: up to
// SpinCount MONITOR+MWAITX attempts, one per iteration.
func (b *barrier) mwaitxSpinLoop(colorIn int32) (uint64, bool) {
	for j := uint64(0); j < SpinCount; j++ {
		if b.mwaitxOnce(colorIn) {
			return j, true
		}
	}
	return SpinCount, false
}

// waitWithEscalation runs loop once; if it exhausts its budget without
// observing release, it escalates to the kernel event (join types 1
// and 3).
func (b *barrier) waitWithEscalation(colorIn int32, loop func(int32) (uint64, bool)) (uint64, bool) {
	if colorIn != b.lockColor.Load() {
		return 0, false
	}
	iterations, released := loop(colorIn)
	if released {
		return iterations, false
	}
	b.event.BlockUntilSet()
	return iterations, true
}

// waitRespinOnly never touches a kernel event: if loop exhausts its
// budget, it defends against the late-arriver race by re-checking
// lock_color and, if release still hasn't happened, respinning (join
// types 2 and 4). This loop always terminates because the releaser
// bumps lock_color in bounded time.
func (b *barrier) waitRespinOnly(colorIn int32, loop func(int32) (uint64, bool)) (uint64, bool) {
	var total uint64
	for {
		if colorIn != b.lockColor.Load() {
			return total, false
		}
		iterations, released := loop(colorIn)
		total += iterations
		if released {
			return total, false
		}
	}
}

// waitNoLoopEscalate is join type 5: a single MONITOR+MWAITX attempt,
// escalating to the kernel event if it doesn't observe release.
func (b *barrier) waitNoLoopEscalate(colorIn int32) (uint64, bool) {
	if colorIn != b.lockColor.Load() {
		return 0, false
	}
	if b.mwaitxOnce(colorIn) {
		return 1, false
	}
	b.event.BlockUntilSet()
	return 1, true
}

// waitNoLoopRespin is join type 6: repeated single MONITOR+MWAITX
// attempts with the same late-arriver respin defense as
// waitRespinOnly, but without an inner SpinCount-bounded loop. Unlike
// every other soft-wait variant, it never counts iterations: ground
// truth t_join_mwaitx_noloop_soft_wait_only::join never touches
// totalIterations no matter how many respins occur, in contrast with
// waitNoLoopEscalate's otherwise-identical single-attempt accounting.
func (b *barrier) waitNoLoopRespin(colorIn int32) (uint64, bool) {
	for {
		if colorIn != b.lockColor.Load() {
			return 0, false
		}
		if b.mwaitxOnce(colorIn) {
			return 0, false
		}
	}
}

// waitHardOnly is join type 7: no spin phase at all, an immediate
// kernel wait. Iterations is always 0.
func (b *barrier) waitHardOnly(colorIn int32) (uint64, bool) {
	b.event.BlockUntilSet()
	return 0, true
}
