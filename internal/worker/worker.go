// Package worker drives each thread's private slice of the workload
// against the shared join barrier, classifying every round's wait and
// folding the opaque answer into an accumulator the optimizer can't
// discard.
package worker

import (
	"github.com/chalkan3-sloth/joinbench/internal/barrier"
	"github.com/chalkan3-sloth/joinbench/internal/workload"
)

// Output is the per-worker result, owned exclusively by the worker
// until the coordinator reads it after Barrier.WaitForThreads returns.
type Output struct {
	ThreadID  int
	Answer    uint32
	Processed int

	TotalIterations uint64
	HardWaitCount   int
	SoftWaitCount   int

	HardWaitWakeupTicks uint64
	SoftWaitWakeupTicks uint64
}

// Run executes one item at a time from input, joining the barrier
// after each and restarting it when this thread turns out to be the
// releaser. It returns once all items have been processed and the
// barrier has released the final round.
func Run(b barrier.Barrier, threadID int, input []uint32, out *Output) {
	out.ThreadID = threadID
	count := len(input)

	for i, n := range input {
		answer := workload.FindNextPrimeNumber(n)
		out.Processed++
		out.Answer |= answer

		iterations, wasHardWait := b.Join(i, threadID)
		out.TotalIterations += iterations

		if b.Joined(threadID) {
			b.Restart(threadID, i, out.Processed == count)
			continue
		}

		if wasHardWait {
			out.HardWaitCount++
			out.HardWaitWakeupTicks += b.TicksSinceRestart()
		} else {
			out.SoftWaitCount++
			out.SoftWaitWakeupTicks += b.TicksSinceRestart()
		}
	}
}
